package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/larderhq/larder-backend/pkg/enums"
)

// StockAudit records one immutable stock mutation. UnitsChange is signed:
// positive for deliveries, negative for sales and waste. Cost is
// |units_change| x the ingredient's unit cost at mutation time.
type StockAudit struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	Reason       enums.StockAuditReason `gorm:"column:reason;type:stock_audit_reason_enum;not null"`
	LocationID   uuid.UUID              `gorm:"column:location_id;type:uuid;not null;index:idx_stock_audits_location_created"`
	StaffID      uuid.UUID              `gorm:"column:staff_id;type:uuid;not null"`
	IngredientID uuid.UUID              `gorm:"column:ingredient_id;type:uuid;not null"`
	UnitsChange  float64                `gorm:"column:units_change;not null"`
	Cost         decimal.Decimal        `gorm:"column:cost;type:numeric(12,4);not null"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime;index:idx_stock_audits_location_created"`
}

func (a *StockAudit) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
