package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recipe names a dish and the ingredient quantities one sale consumes.
type Recipe struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name        string             `gorm:"column:name;not null;uniqueIndex"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeIngredient is one (ingredient, quantity-per-unit-sold) line of a recipe.
type RecipeIngredient struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	RecipeID     uuid.UUID  `gorm:"column:recipe_id;type:uuid;not null;index"`
	IngredientID uuid.UUID  `gorm:"column:ingredient_id;type:uuid;not null"`
	Quantity     float64    `gorm:"column:quantity;not null"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID"`
}

// TableName keeps the historical table name for recipe lines.
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}
