package reports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/larderhq/larder-backend/pkg/errors"
)

// Repository answers the aggregate queries reports need beyond the audit trail.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a reports repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InventoryValue computes the present value of everything on the shelves at
// the location: SUM(units_available x current ingredient cost). The valuation
// deliberately uses today's cost for all stock, whatever it cost to acquire.
func (r *Repository) InventoryValue(ctx context.Context, locationID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Table("stock_levels").
		Select("SUM(stock_levels.units_available * ingredients.cost)").
		Joins("JOIN ingredients ON ingredients.id = stock_levels.ingredient_id").
		Where("stock_levels.location_id = ?", locationID).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, errors.Wrap(errors.CodeDependency, err, "valuing inventory")
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
