package domain

import (
	"time"
)

// Certificate is one non-fungible carbon certificate: a fixed tonnage verified
// for a single project/vintage pair. IDs come from the registry counter and
// are never reused; a converted certificate stays in the table as a retired
// tombstone so its id can never be reissued.
type Certificate struct {
	ID          int64     `gorm:"column:certificate_id;primaryKey" json:"certificate_id"`
	Owner       string    `gorm:"column:owner;index" json:"owner"`
	Approved    *string   `gorm:"column:approved" json:"approved"`
	Quantity    int64     `gorm:"column:quantity;not null" json:"quantity"`
	ProjectID   string    `gorm:"column:project_id;not null" json:"project_id"`
	VintageYear int       `gorm:"column:vintage_year;not null" json:"vintage_year"`
	MetadataURI string    `gorm:"column:metadata_uri" json:"metadata_uri"`
	Retired     bool      `gorm:"column:retired;not null;default:false" json:"retired"`
	CreatedAt   time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Certificate) TableName() string {
	return "Certificates"
}

// OperatorApproval is a blanket approval: operator may move every certificate
// the owner holds. One row per (owner, operator) pair.
type OperatorApproval struct {
	Owner     string    `gorm:"column:owner;primaryKey" json:"owner"`
	Operator  string    `gorm:"column:operator;primaryKey" json:"operator"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
}

func (OperatorApproval) TableName() string {
	return "OperatorApprovals"
}
