package dataservice

import "builty/internal/entity"

// StaticSamples 是按集合名索引的静态示例数据。
type StaticSamples map[string][]entity.Record

// Sample 实现 SampleProvider。
func (m StaticSamples) Sample(collection string) ([]entity.Record, bool) {
	records, ok := m[collection]
	if !ok {
		return nil, false
	}
	out := make([]entity.Record, len(records))
	for i, record := range records {
		out[i] = record.Clone()
	}
	return out, true
}

// DefaultSamples returns the built-in sample dataset used when the backend
// is unreachable, so screens stay usable in a degraded state.
func DefaultSamples() StaticSamples {
	return StaticSamples{
		entity.CollectionStations: {
			{"id": int64(1), "code": "LHE", "name": "Lahore"},
			{"id": int64(2), "code": "KHI", "name": "Karachi"},
			{"id": int64(3), "code": "ISL", "name": "Islamabad"},
			{"id": int64(4), "code": "MLT", "name": "Multan"},
			{"id": int64(5), "code": "FSD", "name": "Faisalabad"},
		},
		entity.CollectionBiltyTypes: {
			{"id": int64(1), "code": "TP", "name": "To Pay"},
			{"id": int64(2), "code": "PD", "name": "Paid"},
			{"id": int64(3), "code": "TB", "name": "To Bill"},
		},
		entity.CollectionDrivers: {
			{"id": int64(1), "driver_id": "D-0001", "name": "Muhammad Ali", "type": "D", "joining_date": "2020-01-15", "reference_name": "Ahmed Khan", "nic_no": "35201-1234567-1", "nic_expiry": "2030-01-15", "license_no": "LHE-2020-12345", "license_expiry": "2028-06-20", "is_active": true},
			{"id": int64(2), "driver_id": "D-0002", "name": "Imran Khan", "type": "D", "joining_date": "2021-03-10", "reference_name": "Bilal Ahmed", "nic_no": "35201-7654321-1", "nic_expiry": "2031-03-10", "license_no": "LHE-2021-54321", "license_expiry": "2029-08-15", "is_active": true},
			{"id": int64(3), "driver_id": "C-0001", "name": "Ahmed Hassan", "type": "C", "joining_date": "2022-06-01", "reference_name": "Ali Raza", "nic_no": "35201-1122334-1", "nic_expiry": "2032-06-01", "license_no": "", "license_expiry": "", "is_active": true},
		},
		entity.CollectionExpenses: {
			{"id": int64(1), "code": "EXP01", "name": "Fuel Expense"},
			{"id": int64(2), "code": "EXP02", "name": "Toll Tax"},
			{"id": int64(3), "code": "EXP03", "name": "Loading/Unloading"},
			{"id": int64(4), "code": "EXP04", "name": "Repair & Maintenance"},
		},
		entity.CollectionDieselStations: {
			{"id": int64(1), "code": "01", "name": "PSO LAHORE MAIN", "location": "Lahore", "contact_no": "0300-1234567"},
			{"id": int64(2), "code": "02", "name": "SHELL KARACHI PORT", "location": "Karachi", "contact_no": "0321-7654321"},
			{"id": int64(3), "code": "03", "name": "TOTAL PARCO M2", "location": "Motorway M2", "contact_no": "0333-1111111"},
		},
		entity.CollectionAccountsCategories: {
			{"id": int64(1), "code": "01", "name": "Current Assets", "fs_category": "Balance Sheet"},
			{"id": int64(2), "code": "02", "name": "Fixed Assets", "fs_category": "Balance Sheet"},
			{"id": int64(3), "code": "07", "name": "Revenue", "fs_category": "Profit & Loss"},
			{"id": int64(4), "code": "08", "name": "Operating Expense", "fs_category": "Profit & Loss"},
		},
		entity.CollectionItems: {
			{"id": int64(1), "code": "001", "name": "DIESEL", "unit": "Liters", "rate": 290},
			{"id": int64(2), "code": "002", "name": "ENGINE OIL", "unit": "Liters", "rate": 1500},
			{"id": int64(3), "code": "003", "name": "TYRE", "unit": "Piece", "rate": 25000},
		},
		entity.CollectionChartOfAccounts: {
			{"id": int64(1), "fs_category": "02 - Profit & Loss", "accounts_type": "04 - Income", "accounts_category": "07 - Revenue", "accounts_location": "02 - Karachi", "accounts_sub_category": "045 - Vehicle Revenue", "code": "71-0249", "description": "INCOME TARIQ POTATO", "opening_balance": 0, "current_balance": -244000},
			{"id": int64(2), "fs_category": "01 - Balance Sheet", "accounts_type": "01 - Assets", "accounts_category": "01 - Current Assets", "accounts_location": "01 - Lahore", "accounts_sub_category": "001 - Cash", "code": "11-0001", "description": "CASH IN HAND", "opening_balance": 50000, "current_balance": 125000},
			{"id": int64(3), "fs_category": "02 - Profit & Loss", "accounts_type": "05 - Expense", "accounts_category": "08 - Operating Expense", "accounts_location": "03 - Islamabad", "accounts_sub_category": "050 - Fuel Expense", "code": "81-0050", "description": "DIESEL EXPENSE", "opening_balance": 0, "current_balance": 85000},
		},
	}
}
