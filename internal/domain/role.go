package domain

import (
	"time"
)

// RoleGrant gives account a role scoped to one ledger ("registry", "credits",
// "funds"). Existence of the row is the grant; revoking deletes it.
type RoleGrant struct {
	Role      string    `gorm:"column:role;primaryKey" json:"role"`
	Account   string    `gorm:"column:account;primaryKey" json:"account"`
	Ledger    string    `gorm:"column:ledger;primaryKey" json:"ledger"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
}

func (RoleGrant) TableName() string {
	return "RoleGrants"
}
