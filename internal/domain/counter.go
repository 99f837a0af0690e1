package domain

import (
	"errors"

	"gorm.io/gorm"
)

// Counter is a named monotonic sequence owned by a ledger (certificate ids,
// lot ids, issuance ids). Values are only consumed inside the creating
// transaction, so a rolled-back create rolls the counter back with it and
// successful creates never reuse a value.
type Counter struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value int64  `gorm:"column:value;not null"`
}

func (Counter) TableName() string {
	return "Counters"
}

// NextCounter increments and returns the named sequence within tx. First use
// of a name starts at 1.
func NextCounter(tx *gorm.DB, name string) (int64, error) {
	var ctr Counter
	err := tx.Where("name = ?", name).First(&ctr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctr = Counter{Name: name, Value: 1}
		if err := tx.Create(&ctr).Error; err != nil {
			return 0, err
		}
		return ctr.Value, nil
	}
	if err != nil {
		return 0, err
	}
	ctr.Value++
	if err := tx.Model(&Counter{}).Where("name = ?", name).Update("value", ctr.Value).Error; err != nil {
		return 0, err
	}
	return ctr.Value, nil
}
