package domain

import (
	"time"
)

// CashAccount is a payment-currency balance in the smallest unit (cents).
// Buys debit the full attached payment here and refund the excess over price;
// a rolled-back buy leaves the balance untouched.
type CashAccount struct {
	Account   string    `gorm:"column:account;primaryKey" json:"account"`
	Balance   int64     `gorm:"column:balance;not null;default:0" json:"balance"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (CashAccount) TableName() string {
	return "CashAccounts"
}
