package stockledger

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/larderhq/larder-backend/pkg/db/models"
	"github.com/larderhq/larder-backend/pkg/errors"
)

// Repository owns the stock_levels counters. All math happens in SQL so two
// concurrent mutations can never read-modify-write past each other.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a stock level repository tied to the provided GORM DB.
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

// AddUnits increments the counter for the ingredient at the location,
// creating the row on first delivery. Returns the resulting level.
func (r *Repository) AddUnits(ctx context.Context, ingredientID, locationID uuid.UUID, units float64) (*models.StockLevel, error) {
	level := models.StockLevel{
		IngredientID:   ingredientID,
		LocationID:     locationID,
		UnitsAvailable: units,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "ingredient_id"}, {Name: "location_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"units_available": gorm.Expr("units_available + excluded.units_available"),
				"updated_at":      time.Now().UTC(),
			}),
		}).
		Create(&level).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "adding stock units")
	}
	return r.level(ctx, ingredientID, locationID)
}

// DeductUnits decrements the counter only when enough stock is available.
// The guard lives in the WHERE clause: zero rows affected means the deduction
// would overdraw the counter, and nothing is written.
func (r *Repository) DeductUnits(ctx context.Context, ingredientID, locationID uuid.UUID, units float64) (*models.StockLevel, error) {
	res := r.db.WithContext(ctx).
		Model(&models.StockLevel{}).
		Where("ingredient_id = ? AND location_id = ? AND units_available >= ?", ingredientID, locationID, units).
		Updates(map[string]any{
			"units_available": gorm.Expr("units_available - ?", units),
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, errors.Wrap(errors.CodeDependency, res.Error, "deducting stock units")
	}
	if res.RowsAffected == 0 {
		available, err := r.Available(ctx, ingredientID, locationID)
		if err != nil {
			return nil, err
		}
		return nil, errors.New(errors.CodeInsufficientStock, "not enough stock to deduct").
			WithDetails(map[string]any{
				"ingredient_id": ingredientID.String(),
				"available":     available,
				"requested":     units,
			})
	}
	return r.level(ctx, ingredientID, locationID)
}

// Available returns the current counter, zero when no stock has ever been
// delivered for the pair.
func (r *Repository) Available(ctx context.Context, ingredientID, locationID uuid.UUID) (float64, error) {
	level, err := r.level(ctx, ingredientID, locationID)
	if err != nil {
		typed := errors.As(err)
		if typed != nil && typed.Code() == errors.CodeNotFound {
			return 0, nil
		}
		return 0, err
	}
	return level.UnitsAvailable, nil
}

func (r *Repository) level(ctx context.Context, ingredientID, locationID uuid.UUID) (*models.StockLevel, error) {
	var level models.StockLevel
	err := r.db.WithContext(ctx).
		First(&level, "ingredient_id = ? AND location_id = ?", ingredientID, locationID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "stock level not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "loading stock level")
	}
	return &level, nil
}
