package domain

import (
	"time"
)

// CreditAccount is one account's fungible credit balance (whole tons).
type CreditAccount struct {
	Account   string    `gorm:"column:account;primaryKey" json:"account"`
	Balance   int64     `gorm:"column:balance;not null;default:0" json:"balance"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (CreditAccount) TableName() string {
	return "CreditAccounts"
}

// CreditAllowance lets spender move up to Amount of owner's credits. The
// amount is absolute (set, not added) and decremented on every TransferFrom.
type CreditAllowance struct {
	Owner     string    `gorm:"column:owner;primaryKey" json:"owner"`
	Spender   string    `gorm:"column:spender;primaryKey" json:"spender"`
	Amount    int64     `gorm:"column:amount;not null;default:0" json:"amount"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (CreditAllowance) TableName() string {
	return "CreditAllowances"
}

// CreditSupply is a singleton row tracking total fungible supply: the sum of
// all mints minus all burns. Kept so conservation can be asserted directly.
type CreditSupply struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	Total     int64     `gorm:"column:total;not null;default:0" json:"total"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (CreditSupply) TableName() string {
	return "CreditSupply"
}

// VerificationRecord holds third-party verification evidence for a
// (project, vintage) pair. Issuance requires a record with a non-empty
// evidence hash. Issued flips to true on first issuance and never back.
type VerificationRecord struct {
	ProjectID    string    `gorm:"column:project_id;primaryKey" json:"project_id"`
	VintageYear  int       `gorm:"column:vintage_year;primaryKey" json:"vintage_year"`
	EvidenceHash string    `gorm:"column:evidence_hash;not null" json:"evidence_hash"`
	Standard     string    `gorm:"column:standard" json:"standard"`
	CreditType   string    `gorm:"column:credit_type" json:"credit_type"`
	Issued       bool      `gorm:"column:issued;not null;default:false" json:"issued"`
	CreatedAt    time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (VerificationRecord) TableName() string {
	return "VerificationRecords"
}

// Issuance records one credit issuance against a verified (project, vintage).
// IDs come from the credits counter.
type Issuance struct {
	ID          int64     `gorm:"column:issuance_id;primaryKey" json:"issuance_id"`
	ProjectID   string    `gorm:"column:project_id;not null" json:"project_id"`
	VintageYear int       `gorm:"column:vintage_year;not null" json:"vintage_year"`
	Recipient   string    `gorm:"column:recipient;not null" json:"recipient"`
	Amount      int64     `gorm:"column:amount;not null" json:"amount"`
	CreatedAt   time.Time `gorm:"column:createdAt" json:"createdAt"`
}

func (Issuance) TableName() string {
	return "Issuances"
}
