package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesAudit records one immutable completed sale. It commits in the same
// transaction as the sale's stock audits, so it exists exactly when they do.
type SalesAudit struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	LocationID uuid.UUID       `gorm:"column:location_id;type:uuid;not null;index:idx_sales_audits_location_created"`
	StaffID    uuid.UUID       `gorm:"column:staff_id;type:uuid;not null"`
	MenuItemID uuid.UUID       `gorm:"column:menu_item_id;type:uuid;not null"`
	SaleAmount decimal.Decimal `gorm:"column:sale_amount;type:numeric(12,4);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime;index:idx_sales_audits_location_created"`
}

func (a *SalesAudit) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
