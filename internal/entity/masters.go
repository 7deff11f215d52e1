package entity

import "time"

// 基础档案（master data）模型。字段来自后台各档案维护界面；
// 这些模型只用于数据库后端建表和种子数据，运行期读写统一走 Record。

// DbStation 站点档案。
type DbStation struct {
	ID        int64     `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Code      string    `gorm:"column:code;type:varchar(20);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
}

func (DbStation) TableName() string { return CollectionStations }

// DbDriver 司机/清洁工档案。Type 为 D（司机）或 C（清洁工）。
type DbDriver struct {
	ID            int64     `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	DriverID      string    `gorm:"column:driver_id;type:varchar(20);uniqueIndex" json:"driver_id"`
	Name          string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Type          string    `gorm:"column:type;type:varchar(5)" json:"type"`
	JoiningDate   string    `gorm:"column:joining_date;type:varchar(20)" json:"joining_date"`
	ReferenceName string    `gorm:"column:reference_name;type:varchar(255)" json:"reference_name"`
	NicNo         string    `gorm:"column:nic_no;type:varchar(30)" json:"nic_no"`
	NicExpiry     string    `gorm:"column:nic_expiry;type:varchar(20)" json:"nic_expiry"`
	LicenseNo     string    `gorm:"column:license_no;type:varchar(50)" json:"license_no"`
	LicenseExpiry string    `gorm:"column:license_expiry;type:varchar(20)" json:"license_expiry"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (DbDriver) TableName() string { return CollectionDrivers }

// DbBiltyType 运单类型（To Pay / Paid / To Bill）。
type DbBiltyType struct {
	ID        int64     `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Code      string    `gorm:"column:code;type:varchar(10);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"column:name;type:varchar(100);not null" json:"name"`
}

func (DbBiltyType) TableName() string { return CollectionBiltyTypes }

// DbExpense 费用科目。
type DbExpense struct {
	ID        int64     `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Code      string    `gorm:"column:code;type:varchar(20);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
}

func (DbExpense) TableName() string { return CollectionExpenses }

// DbDieselStation 加油站档案。
type DbDieselStation struct {
	ID        int64     `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Code      string    `gorm:"column:code;type:varchar(20);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Location  string    `gorm:"column:location;type:varchar(255)" json:"location"`
	ContactNo string    `gorm:"column:contact_no;type:varchar(30)" json:"contact_no"`
}

func (DbDieselStation) TableName() string { return CollectionDieselStations }

// DbAccountCategory 账务类别。
type DbAccountCategory struct {
	ID         int64     `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Code       string    `gorm:"column:code;type:varchar(20);uniqueIndex;not null" json:"code"`
	Name       string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	FsCategory string    `gorm:"column:fs_category;type:varchar(100)" json:"fs_category"`
}

func (DbAccountCategory) TableName() string { return CollectionAccountsCategories }

// DbItem 货品档案。
type DbItem struct {
	ID        int64     `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Code      string    `gorm:"column:code;type:varchar(20);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Unit      string    `gorm:"column:unit;type:varchar(50)" json:"unit"`
	Rate      float64   `gorm:"column:rate" json:"rate"`
}

func (DbItem) TableName() string { return CollectionItems }

// DbChartOfAccount 会计科目表行。
type DbChartOfAccount struct {
	ID                  int64     `gorm:"primarykey" json:"id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	FsCategory          string    `gorm:"column:fs_category;type:varchar(100)" json:"fs_category"`
	AccountsType        string    `gorm:"column:accounts_type;type:varchar(100)" json:"accounts_type"`
	AccountsCategory    string    `gorm:"column:accounts_category;type:varchar(100)" json:"accounts_category"`
	AccountsLocation    string    `gorm:"column:accounts_location;type:varchar(100)" json:"accounts_location"`
	AccountsSubCategory string    `gorm:"column:accounts_sub_category;type:varchar(100)" json:"accounts_sub_category"`
	Code                string    `gorm:"column:code;type:varchar(20);uniqueIndex;not null" json:"code"`
	Description         string    `gorm:"column:description;type:varchar(255)" json:"description"`
	OpeningBalance      float64   `gorm:"column:opening_balance" json:"opening_balance"`
	CurrentBalance      float64   `gorm:"column:current_balance" json:"current_balance"`
}

func (DbChartOfAccount) TableName() string { return CollectionChartOfAccounts }
