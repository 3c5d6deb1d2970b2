package model

import (
	"time"

	"gorm.io/datatypes"
)

// Event is an operator-facing journal entry ("product.add", "lot.consume", …).
// It is not part of the inventory ledger and may be cleared at any time.
type Event struct {
	ID      uint      `gorm:"primaryKey"`
	Ts      time.Time `gorm:"not null;index"`
	Kind    string    `gorm:"not null;index"`
	Payload datatypes.JSON
}
