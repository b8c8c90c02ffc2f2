package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larderhq/larder-backend/pkg/db/models"
	pkgerrors "github.com/larderhq/larder-backend/pkg/errors"
)

// Reader is the read-only catalog surface the ledger depends on. The backing
// store is swappable; the ledger never mutates reference data.
type Reader interface {
	IngredientByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	RecipeByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	MenuItemByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	StaffByID(ctx context.Context, id uuid.UUID) (*models.Staff, error)
	LocationByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
}

// Repository implements Reader on the relational catalog tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) IngredientByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "ingredient not found")
	}
	return &ingredient, nil
}

func (r *Repository) RecipeByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "recipe not found")
	}
	return &recipe, nil
}

func (r *Repository) MenuItemByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).
		Preload("Recipe.Ingredients.Ingredient").
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "menu item not found")
	}
	return &item, nil
}

func (r *Repository) StaffByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).
		Preload("Locations").
		First(&staff, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "staff not found")
	}
	return &staff, nil
}

func (r *Repository) LocationByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).First(&location, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "location not found")
	}
	return &location, nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog lookup")
}
