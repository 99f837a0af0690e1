package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MarketEvent is the off-chain indexing feed: listing-created, listing-sold,
// listing-canceled, conversion-completed, credits-issued. Rows are written in
// the same transaction as the mutation they describe.
type MarketEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	Type      string         `gorm:"column:type;type:varchar(40);not null;index" json:"type"`
	Actor     string         `gorm:"column:actor" json:"actor"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (MarketEvent) TableName() string {
	return "MarketEvents"
}

// BeforeCreate sets event_id if not already set (DBs without default uuid).
func (e *MarketEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
