package entity

import (
	"encoding/json"

	"builty/internal/entity/common"
)

// Record is a generic collection row as it travels through the data layer.
// Rows always carry an "id" field once persisted.
type Record map[string]interface{}

// ID extracts the record id, tolerating the numeric types produced by JSON
// decoding and by the SQL drivers.
func (r Record) ID() (int64, bool) {
	raw, ok := r["id"]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge shallow-merges updates onto a copy of the record. The id field of the
// original always wins.
func (r Record) Merge(updates Record) Record {
	out := r.Clone()
	if out == nil {
		out = Record{}
	}
	for k, v := range updates {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

// 业务集合目录。集合名同时充当权限模块名，运行期不可扩展。
const (
	CollectionUsers              = "users"
	CollectionStations           = "stations"
	CollectionDrivers            = "drivers"
	CollectionBiltyTypes         = "bilty_types"
	CollectionExpenses           = "expenses"
	CollectionDieselStations     = "diesel_stations"
	CollectionAccountsCategories = "accounts_categories"
	CollectionItems              = "items"
	CollectionChartOfAccounts    = "chart_of_accounts"
	CollectionBookings           = "bookings"
	CollectionChallans           = "challans"
	CollectionInvoices           = "invoices"
	CollectionPayments           = "payments"
)

var collections = common.StringArray{
	CollectionUsers,
	CollectionStations,
	CollectionDrivers,
	CollectionBiltyTypes,
	CollectionExpenses,
	CollectionDieselStations,
	CollectionAccountsCategories,
	CollectionItems,
	CollectionChartOfAccounts,
	CollectionBookings,
	CollectionChallans,
	CollectionInvoices,
	CollectionPayments,
}

// Collections 返回已知集合目录。
func Collections() common.StringArray {
	out := make(common.StringArray, len(collections))
	copy(out, collections)
	return out
}

// KnownCollection 报告集合名是否在目录中。
func KnownCollection(name string) bool {
	return collections.Contains(name)
}

// ModelFor 返回集合对应的空模型，用于需要具体表结构的 gorm 调用；
// 未知集合返回 nil。
func ModelFor(collection string) interface{} {
	switch collection {
	case CollectionUsers:
		return &DbUser{}
	case CollectionStations:
		return &DbStation{}
	case CollectionDrivers:
		return &DbDriver{}
	case CollectionBiltyTypes:
		return &DbBiltyType{}
	case CollectionExpenses:
		return &DbExpense{}
	case CollectionDieselStations:
		return &DbDieselStation{}
	case CollectionAccountsCategories:
		return &DbAccountCategory{}
	case CollectionItems:
		return &DbItem{}
	case CollectionChartOfAccounts:
		return &DbChartOfAccount{}
	case CollectionBookings:
		return &DbBooking{}
	case CollectionChallans:
		return &DbChallan{}
	case CollectionInvoices:
		return &DbInvoice{}
	case CollectionPayments:
		return &DbPayment{}
	default:
		return nil
	}
}

// MigrationModels 返回数据库后端建表所需的全部模型。
func MigrationModels() []interface{} {
	return []interface{}{
		&DbUser{},
		&DbStation{},
		&DbDriver{},
		&DbBiltyType{},
		&DbExpense{},
		&DbDieselStation{},
		&DbAccountCategory{},
		&DbItem{},
		&DbChartOfAccount{},
		&DbBooking{},
		&DbChallan{},
		&DbInvoice{},
		&DbPayment{},
	}
}
