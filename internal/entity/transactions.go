package entity

import (
	"time"

	"builty/internal/entity/common"
)

// 业务单据模型（订车、行程单、发票、收付款）。

// DbBooking 订车单。
type DbBooking struct {
	ID          int64     `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	BiltyNo     string    `gorm:"column:bilty_no;type:varchar(30);uniqueIndex" json:"bilty_no"`
	Date        string    `gorm:"column:date;type:varchar(20)" json:"date"`
	FromStation string    `gorm:"column:from_station;type:varchar(255)" json:"from_station"`
	ToStation   string    `gorm:"column:to_station;type:varchar(255)" json:"to_station"`
	Transporter string    `gorm:"column:transporter;type:varchar(255)" json:"transporter"`
	Vehicle     string    `gorm:"column:vehicle;type:varchar(50)" json:"vehicle"`
	Status      string    `gorm:"column:status;type:varchar(30);index" json:"status"`
	Amount      float64   `gorm:"column:amount" json:"amount"`
}

func (DbBooking) TableName() string { return CollectionBookings }

// DbChallan 行程单（challan/trip）。
type DbChallan struct {
	ID        int64     `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ChallanNo string    `gorm:"column:challan_no;type:varchar(30);uniqueIndex" json:"challan_no"`
	Date      string    `gorm:"column:date;type:varchar(20)" json:"date"`
	Vehicle   string    `gorm:"column:vehicle;type:varchar(50)" json:"vehicle"`
	Driver    string    `gorm:"column:driver;type:varchar(255)" json:"driver"`
	Route     string    `gorm:"column:route;type:varchar(255)" json:"route"`
	Amount    float64   `gorm:"column:amount" json:"amount"`
}

func (DbChallan) TableName() string { return CollectionChallans }

// DbInvoice 发票。ChallanNos 记录并入本发票的行程单号。
type DbInvoice struct {
	ID         int64              `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	InvoiceNo  string             `gorm:"column:invoice_no;type:varchar(30);uniqueIndex" json:"invoice_no"`
	Date       string             `gorm:"column:date;type:varchar(20)" json:"date"`
	Party      string             `gorm:"column:party;type:varchar(255)" json:"party"`
	ChallanNos common.StringArray `gorm:"column:challan_nos;type:text" json:"challan_nos"`
	Amount     float64            `gorm:"column:amount" json:"amount"`
	Status     string             `gorm:"column:status;type:varchar(30);index" json:"status"`
}

func (DbInvoice) TableName() string { return CollectionInvoices }

// DbPayment 收付款凭证。
type DbPayment struct {
	ID        int64     `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	VoucherNo string    `gorm:"column:voucher_no;type:varchar(30);uniqueIndex" json:"voucher_no"`
	Date      string    `gorm:"column:date;type:varchar(20)" json:"date"`
	Party     string    `gorm:"column:party;type:varchar(255)" json:"party"`
	Mode      string    `gorm:"column:mode;type:varchar(30)" json:"mode"`
	Reference string    `gorm:"column:reference;type:varchar(100)" json:"reference"`
	Amount    float64   `gorm:"column:amount" json:"amount"`
}

func (DbPayment) TableName() string { return CollectionPayments }
