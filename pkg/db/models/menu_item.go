package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/larderhq/larder-backend/pkg/enums"
)

// Modifier is an optional menu item variation (extra ingredient, allergen note).
type Modifier struct {
	ID     uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name   enums.ModifierName `gorm:"column:name;type:modifier_name_enum;not null"`
	Option string             `gorm:"column:option;not null"`
}

func (m *Modifier) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MenuItem offers a recipe at one location for a price.
type MenuItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RecipeID   uuid.UUID       `gorm:"column:recipe_id;type:uuid;not null"`
	LocationID uuid.UUID       `gorm:"column:location_id;type:uuid;not null;index"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,4);not null"`
	ModifierID *uuid.UUID      `gorm:"column:modifier_id;type:uuid"`
	Recipe     Recipe          `gorm:"foreignKey:RecipeID"`
	Modifier   *Modifier       `gorm:"foreignKey:ModifierID"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
