// Package audit owns the append-only audit trail. Rows are inserted inside
// the same transaction as the stock mutation they describe and are never
// updated or deleted afterwards.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/larderhq/larder-backend/pkg/db/models"
	"github.com/larderhq/larder-backend/pkg/enums"
	"github.com/larderhq/larder-backend/pkg/errors"
	"github.com/larderhq/larder-backend/pkg/pagination"
)

// Repository appends and reads audit rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an audit repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction. Appends must
// run on the same transaction as the stock mutation they record.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// AppendStock writes one stock audit row.
func (r *Repository) AppendStock(ctx context.Context, row *models.StockAudit) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "appending stock audit")
	}
	return nil
}

// AppendSales writes one sales audit row.
func (r *Repository) AppendSales(ctx context.Context, row *models.SalesAudit) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "appending sales audit")
	}
	return nil
}

// StockQuery filters the stock audit trail. From is inclusive, To exclusive.
// Reason narrows to a single mutation kind when set.
type StockQuery struct {
	LocationID uuid.UUID
	From       time.Time
	To         time.Time
	Reason     *enums.StockAuditReason
	Page       pagination.Params
}

// QueryStock returns stock audits in ledger order (oldest first) with a
// cursor for the next page, empty when the trail is exhausted.
func (r *Repository) QueryStock(ctx context.Context, q StockQuery) ([]models.StockAudit, string, error) {
	cursor, err := pagination.ParseCursor(q.Page.Cursor)
	if err != nil {
		return nil, "", errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(q.Page.Limit)
	query := r.db.WithContext(ctx).
		Where("location_id = ?", q.LocationID).
		Where("created_at >= ? AND created_at < ?", q.From, q.To)
	if q.Reason != nil {
		query = query.Where("reason = ?", *q.Reason)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at > ?) OR (created_at = ? AND id > ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.StockAudit
	err = query.
		Order("created_at ASC, id ASC").
		Limit(pagination.LimitWithBuffer(q.Page.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, "", errors.Wrap(errors.CodeDependency, err, "querying stock audits")
	}

	rows, next := trimStockPage(rows, limit)
	return rows, next, nil
}

// SalesQuery filters the sales audit trail. From is inclusive, To exclusive.
type SalesQuery struct {
	LocationID uuid.UUID
	From       time.Time
	To         time.Time
	Page       pagination.Params
}

// QuerySales returns sales audits in ledger order with a next-page cursor.
func (r *Repository) QuerySales(ctx context.Context, q SalesQuery) ([]models.SalesAudit, string, error) {
	cursor, err := pagination.ParseCursor(q.Page.Cursor)
	if err != nil {
		return nil, "", errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(q.Page.Limit)
	query := r.db.WithContext(ctx).
		Where("location_id = ?", q.LocationID).
		Where("created_at >= ? AND created_at < ?", q.From, q.To)
	if cursor != nil {
		query = query.Where(
			"(created_at > ?) OR (created_at = ? AND id > ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.SalesAudit
	err = query.
		Order("created_at ASC, id ASC").
		Limit(pagination.LimitWithBuffer(q.Page.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, "", errors.Wrap(errors.CodeDependency, err, "querying sales audits")
	}

	rows, next := trimSalesPage(rows, limit)
	return rows, next, nil
}

// SumStockCost totals the captured cost of stock audits matching the reason
// within [from, to). Returns zero on an empty window.
func (r *Repository) SumStockCost(ctx context.Context, locationID uuid.UUID, reason enums.StockAuditReason, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.StockAudit{}).
		Select("SUM(cost)").
		Where("location_id = ? AND reason = ?", locationID, reason).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, errors.Wrap(errors.CodeDependency, err, "summing stock audit cost")
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// SumSales totals sale amounts within [from, to). Returns zero on an empty window.
func (r *Repository) SumSales(ctx context.Context, locationID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.SalesAudit{}).
		Select("SUM(sale_amount)").
		Where("location_id = ?", locationID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, errors.Wrap(errors.CodeDependency, err, "summing sales")
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func trimStockPage(rows []models.StockAudit, limit int) ([]models.StockAudit, string) {
	if len(rows) <= limit {
		return rows, ""
	}
	rows = rows[:limit]
	last := rows[len(rows)-1]
	return rows, pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
}

func trimSalesPage(rows []models.SalesAudit, limit int) ([]models.SalesAudit, string) {
	if len(rows) <= limit {
		return rows, ""
	}
	rows = rows[:limit]
	last := rows[len(rows)-1]
	return rows, pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
}
