package models

import (
	"time"

	"github.com/google/uuid"
)

// StockLevel tracks the live unit counter for one ingredient at one location.
// Rows are created lazily on first delivery and never deleted. The schema
// carries CHECK (units_available >= 0) as a last line of defense; the ledger
// guards every decrement before it commits.
type StockLevel struct {
	IngredientID   uuid.UUID `gorm:"column:ingredient_id;type:uuid;primaryKey"`
	LocationID     uuid.UUID `gorm:"column:location_id;type:uuid;primaryKey"`
	UnitsAvailable float64   `gorm:"column:units_available;not null;default:0"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
