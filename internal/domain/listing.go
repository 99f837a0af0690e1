package domain

import (
	"time"
)

// CertificateListing is a fixed-price sell offer for one certificate. Keyed
// by certificate id: a certificate has at most one listing row, and relisting
// replaces the prior state. The market never takes custody; the row records
// intent, and ownership/approval are re-checked at buy time.
type CertificateListing struct {
	CertificateID int64     `gorm:"column:certificate_id;primaryKey" json:"certificate_id"`
	Seller        string    `gorm:"column:seller;not null" json:"seller"`
	Price         int64     `gorm:"column:price;not null" json:"price"`
	Active        bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt     time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (CertificateListing) TableName() string {
	return "CertificateListings"
}

// CreditLotListing is a fixed-price sell offer for a quantity of fungible
// credits. Lot ids come from the market counter and are never reused; a
// seller may hold any number of lots.
type CreditLotListing struct {
	LotID     int64     `gorm:"column:lot_id;primaryKey" json:"lot_id"`
	Seller    string    `gorm:"column:seller;not null" json:"seller"`
	Quantity  int64     `gorm:"column:quantity;not null" json:"quantity"`
	Price     int64     `gorm:"column:price;not null" json:"price"`
	Active    bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (CreditLotListing) TableName() string {
	return "CreditLotListings"
}
