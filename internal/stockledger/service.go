// Package stockledger implements the stock mutations: deliveries, waste, and
// menu item sales. Every mutation is one transaction pairing the counter
// changes with their audit rows, so the audit trail always explains the
// counters.
package stockledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/larderhq/larder-backend/internal/audit"
	"github.com/larderhq/larder-backend/internal/authz"
	"github.com/larderhq/larder-backend/internal/catalog"
	"github.com/larderhq/larder-backend/pkg/db"
	"github.com/larderhq/larder-backend/pkg/db/models"
	"github.com/larderhq/larder-backend/pkg/enums"
	"github.com/larderhq/larder-backend/pkg/errors"
	"github.com/larderhq/larder-backend/pkg/logger"
	"github.com/larderhq/larder-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service coordinates authorization, catalog lookups, and transactional
// stock math for ledger mutations.
type Service struct {
	db      txRunner
	catalog catalog.Reader
	levels  *Repository
	audits  *audit.Repository
	metrics *metrics.LedgerMetrics
	log     *logger.Logger
}

// NewService wires the ledger service.
func NewService(tx txRunner, reader catalog.Reader, levels *Repository, audits *audit.Repository, m *metrics.LedgerMetrics, log *logger.Logger) *Service {
	return &Service{
		db:      tx,
		catalog: reader,
		levels:  levels,
		audits:  audits,
		metrics: m,
		log:     log,
	}
}

// BatchItem is one (ingredient, units) line of a delivery or waste batch.
type BatchItem struct {
	IngredientID uuid.UUID
	Units        float64
}

// DeliveryInput describes one accepted delivery of one or more ingredients.
type DeliveryInput struct {
	StaffID    uuid.UUID
	LocationID uuid.UUID
	Items      []BatchItem
}

// WasteInput describes recorded spoilage of one or more ingredients.
type WasteInput struct {
	StaffID    uuid.UUID
	LocationID uuid.UUID
	Items      []BatchItem
}

// SaleInput describes one menu item sale. The location is the menu item's.
type SaleInput struct {
	StaffID    uuid.UUID
	MenuItemID uuid.UUID
}

// MutationLine reports one applied counter change and its audit row.
type MutationLine struct {
	AuditID        uuid.UUID       `json:"audit_id"`
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	UnitsChange    float64         `json:"units_change"`
	UnitsAvailable float64         `json:"units_available"`
	Cost           decimal.Decimal `json:"cost"`
}

// BatchResult reports a committed delivery or waste batch.
type BatchResult struct {
	LocationID uuid.UUID      `json:"location_id"`
	Lines      []MutationLine `json:"lines"`
}

// SaleResult reports a committed sale and its per-ingredient deductions.
type SaleResult struct {
	SaleAuditID uuid.UUID       `json:"sale_audit_id"`
	MenuItemID  uuid.UUID       `json:"menu_item_id"`
	LocationID  uuid.UUID       `json:"location_id"`
	SaleAmount  decimal.Decimal `json:"sale_amount"`
	Lines       []MutationLine  `json:"lines"`
}

// batchLine pairs a requested item with its resolved catalog ingredient.
type batchLine struct {
	item BatchItem
	cost decimal.Decimal
}

// RecordDelivery adds units of each ingredient to the location's stock and
// appends one delivery audit per item, valued at current ingredient cost.
// The batch commits whole or not at all.
func (s *Service) RecordDelivery(ctx context.Context, in DeliveryInput) (result *BatchResult, err error) {
	defer s.observe("record_delivery", time.Now(), &err)
	ctx = s.log.WithOperation(s.log.WithStaffID(ctx, in.StaffID.String()), "record_delivery")

	lines, err := s.prepareBatch(ctx, authz.RecordDelivery, in.StaffID, in.LocationID, in.Items)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		levels := s.levels.WithTx(tx)
		audits := s.audits.WithTx(tx)

		batch := &BatchResult{LocationID: in.LocationID}
		for _, line := range lines {
			level, txErr := levels.AddUnits(ctx, line.item.IngredientID, in.LocationID, line.item.Units)
			if txErr != nil {
				return txErr
			}
			row := &models.StockAudit{
				Reason:       enums.StockAuditReasonDelivery,
				LocationID:   in.LocationID,
				StaffID:      in.StaffID,
				IngredientID: line.item.IngredientID,
				UnitsChange:  line.item.Units,
				Cost:         line.cost,
			}
			if txErr = audits.AppendStock(ctx, row); txErr != nil {
				return txErr
			}
			batch.Lines = append(batch.Lines, MutationLine{
				AuditID:        row.ID,
				IngredientID:   line.item.IngredientID,
				UnitsChange:    line.item.Units,
				UnitsAvailable: level.UnitsAvailable,
				Cost:           line.cost,
			})
		}
		result = batch
		return nil
	})
	if err != nil {
		return nil, s.mapTxErr(ctx, err, "recording delivery")
	}

	s.log.Info(ctx, "delivery recorded")
	return result, nil
}

// RecordWaste removes spoiled units of each ingredient from the location's
// stock and appends one waste audit per item. If any item would overdraw its
// counter the whole batch fails with nothing written.
func (s *Service) RecordWaste(ctx context.Context, in WasteInput) (result *BatchResult, err error) {
	defer s.observe("record_waste", time.Now(), &err)
	ctx = s.log.WithOperation(s.log.WithStaffID(ctx, in.StaffID.String()), "record_waste")

	lines, err := s.prepareBatch(ctx, authz.RecordWaste, in.StaffID, in.LocationID, in.Items)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		levels := s.levels.WithTx(tx)
		audits := s.audits.WithTx(tx)

		batch := &BatchResult{LocationID: in.LocationID}
		for _, line := range lines {
			level, txErr := levels.DeductUnits(ctx, line.item.IngredientID, in.LocationID, line.item.Units)
			if txErr != nil {
				return txErr
			}
			row := &models.StockAudit{
				Reason:       enums.StockAuditReasonWaste,
				LocationID:   in.LocationID,
				StaffID:      in.StaffID,
				IngredientID: line.item.IngredientID,
				UnitsChange:  -line.item.Units,
				Cost:         line.cost,
			}
			if txErr = audits.AppendStock(ctx, row); txErr != nil {
				return txErr
			}
			batch.Lines = append(batch.Lines, MutationLine{
				AuditID:        row.ID,
				IngredientID:   line.item.IngredientID,
				UnitsChange:    -line.item.Units,
				UnitsAvailable: level.UnitsAvailable,
				Cost:           line.cost,
			})
		}
		result = batch
		return nil
	})
	if err != nil {
		return nil, s.mapTxErr(ctx, err, "recording waste")
	}

	s.log.Info(ctx, "waste recorded")
	return result, nil
}

// SellMenuItem deducts every recipe ingredient and records the sale. The
// whole sale is one transaction: if any ingredient runs short, no stock
// moves and no sale is recorded.
func (s *Service) SellMenuItem(ctx context.Context, in SaleInput) (result *SaleResult, err error) {
	defer s.observe("sell_menu_item", time.Now(), &err)
	ctx = s.log.WithOperation(s.log.WithStaffID(ctx, in.StaffID.String()), "sell_menu_item")

	item, err := s.catalog.MenuItemByID(ctx, in.MenuItemID)
	if err != nil {
		return nil, err
	}
	staff, err := s.resolveStaff(ctx, in.StaffID)
	if err != nil {
		return nil, err
	}
	if err = authz.SellMenuItem.Check(staff, item.LocationID); err != nil {
		return nil, err
	}

	// Deduct in a stable order so two concurrent sales touching the same
	// ingredients cannot deadlock on row locks.
	recipeLines := make([]models.RecipeIngredient, len(item.Recipe.Ingredients))
	copy(recipeLines, item.Recipe.Ingredients)
	sort.Slice(recipeLines, func(i, j int) bool {
		return recipeLines[i].IngredientID.String() < recipeLines[j].IngredientID.String()
	})

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		levels := s.levels.WithTx(tx)
		audits := s.audits.WithTx(tx)

		sale := &SaleResult{
			MenuItemID: item.ID,
			LocationID: item.LocationID,
			SaleAmount: item.Price,
		}
		for _, line := range recipeLines {
			level, txErr := levels.DeductUnits(ctx, line.IngredientID, item.LocationID, line.Quantity)
			if txErr != nil {
				return txErr
			}
			cost := line.Ingredient.Cost.Mul(decimal.NewFromFloat(line.Quantity))
			row := &models.StockAudit{
				Reason:       enums.StockAuditReasonSale,
				LocationID:   item.LocationID,
				StaffID:      in.StaffID,
				IngredientID: line.IngredientID,
				UnitsChange:  -line.Quantity,
				Cost:         cost,
			}
			if txErr = audits.AppendStock(ctx, row); txErr != nil {
				return txErr
			}
			sale.Lines = append(sale.Lines, MutationLine{
				AuditID:        row.ID,
				IngredientID:   line.IngredientID,
				UnitsChange:    -line.Quantity,
				UnitsAvailable: level.UnitsAvailable,
				Cost:           cost,
			})
		}

		saleRow := &models.SalesAudit{
			LocationID: item.LocationID,
			StaffID:    in.StaffID,
			MenuItemID: item.ID,
			SaleAmount: item.Price,
		}
		if txErr := audits.AppendSales(ctx, saleRow); txErr != nil {
			return txErr
		}
		sale.SaleAuditID = saleRow.ID
		result = sale
		return nil
	})
	if err != nil {
		return nil, s.mapTxErr(ctx, err, "selling menu item")
	}

	s.log.Info(ctx, "menu item sold")
	return result, nil
}

// prepareBatch validates the batch shape, authorizes the staff member, and
// resolves every ingredient in caller order. The first failure aborts the
// remaining items before anything is written.
func (s *Service) prepareBatch(ctx context.Context, capability authz.Capability, staffID, locationID uuid.UUID, items []BatchItem) ([]batchLine, error) {
	if len(items) == 0 {
		return nil, errors.New(errors.CodeValidation, "batch requires at least one item")
	}
	for _, item := range items {
		if item.Units < 0 {
			return nil, errors.New(errors.CodeValidation, "units must not be negative")
		}
	}

	if _, err := s.catalog.LocationByID(ctx, locationID); err != nil {
		return nil, err
	}
	staff, err := s.resolveStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if err := capability.Check(staff, locationID); err != nil {
		return nil, err
	}

	lines := make([]batchLine, 0, len(items))
	for _, item := range items {
		ingredient, err := s.catalog.IngredientByID(ctx, item.IngredientID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, batchLine{
			item: item,
			cost: ingredient.Cost.Mul(decimal.NewFromFloat(item.Units)),
		})
	}
	return lines, nil
}

// resolveStaff looks up the acting staff member. An unknown staff id is an
// authorization failure, not a missing resource: only catalog entities
// (locations, ingredients, menu items) surface as not-found.
func (s *Service) resolveStaff(ctx context.Context, staffID uuid.UUID) (*models.Staff, error) {
	staff, err := s.catalog.StaffByID(ctx, staffID)
	if err != nil {
		if typed := errors.As(err); typed != nil && typed.Code() == errors.CodeNotFound {
			return nil, errors.New(errors.CodeForbidden, "staff member not recognized")
		}
		return nil, err
	}
	return staff, nil
}

// mapTxErr passes coded errors through, converts serialization aborts into
// the retryable conflict code, and wraps everything else as a dependency
// failure.
func (s *Service) mapTxErr(ctx context.Context, err error, action string) error {
	if typed := errors.As(err); typed != nil {
		return typed
	}
	if db.IsSerializationFailure(err) {
		s.log.Warn(ctx, "transaction aborted by concurrent writer")
		return errors.Wrap(errors.CodeConflict, err, action)
	}
	s.log.Error(ctx, action+" failed", err)
	return errors.Wrap(errors.CodeDependency, err, action)
}

func (s *Service) observe(operation string, start time.Time, errp *error) {
	s.metrics.ObserveDuration(operation, time.Since(start))
	if *errp == nil {
		s.metrics.IncSuccess(operation)
		return
	}
	code := string(errors.CodeInternal)
	if typed := errors.As(*errp); typed != nil {
		code = string(typed.Code())
	}
	s.metrics.IncFailure(operation, code)
}
