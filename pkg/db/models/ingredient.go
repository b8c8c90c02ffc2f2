package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/larderhq/larder-backend/pkg/enums"
)

// Ingredient is catalog reference data. Cost is the current unit cost and
// changes over time; audits capture the value in effect at mutation time.
type Ingredient struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name      string               `gorm:"column:name;not null;uniqueIndex"`
	Unit      enums.IngredientUnit `gorm:"column:unit;type:ingredient_unit_enum;not null"`
	Cost      decimal.Decimal      `gorm:"column:cost;type:numeric(12,4);not null"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
