package reports

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/larderhq/larder-backend/internal/audit"
	"github.com/larderhq/larder-backend/internal/catalog"
	"github.com/larderhq/larder-backend/pkg/db/models"
	"github.com/larderhq/larder-backend/pkg/enums"
	"github.com/larderhq/larder-backend/pkg/errors"
	"github.com/larderhq/larder-backend/pkg/logger"
	"github.com/larderhq/larder-backend/pkg/metrics"
)

type fixture struct {
	db      *gorm.DB
	service *Service

	location models.Location
	manager  models.Staff
	chef     models.Staff
	gin      models.Ingredient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:reports_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Location{},
		&models.Ingredient{},
		&models.Staff{},
		&models.StockLevel{},
		&models.StockAudit{},
		&models.SalesAudit{},
	))

	f := &fixture{db: db}

	f.location = models.Location{Name: "Riverside", Address: "12 Quay St"}
	require.NoError(t, db.Create(&f.location).Error)

	f.manager = models.Staff{Name: "Mara", Role: enums.StaffRoleManager, Locations: []models.Location{f.location}}
	f.chef = models.Staff{Name: "Caro", Role: enums.StaffRoleChef, Locations: []models.Location{f.location}}
	require.NoError(t, db.Create(&f.manager).Error)
	require.NoError(t, db.Create(&f.chef).Error)

	f.gin = models.Ingredient{Name: "gin", Unit: enums.IngredientUnitCentiliter, Cost: decimal.NewFromFloat(2)}
	require.NoError(t, db.Create(&f.gin).Error)

	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	f.service = NewService(
		catalog.NewRepository(db),
		audit.NewRepository(db),
		NewRepository(db),
		metrics.NewLedgerMetrics(nil),
		log,
	)
	return f
}

func (f *fixture) seedStockAudit(t *testing.T, reason enums.StockAuditReason, units, cost float64, at time.Time) models.StockAudit {
	t.Helper()
	row := models.StockAudit{
		Reason:       reason,
		LocationID:   f.location.ID,
		StaffID:      f.chef.ID,
		IngredientID: f.gin.ID,
		UnitsChange:  units,
		Cost:         decimal.NewFromFloat(cost),
		CreatedAt:    at,
	}
	require.NoError(t, f.db.Create(&row).Error)
	return row
}

func (f *fixture) seedSale(t *testing.T, amount float64, at time.Time) {
	t.Helper()
	row := models.SalesAudit{
		LocationID: f.location.ID,
		StaffID:    f.chef.ID,
		MenuItemID: uuid.New(),
		SaleAmount: decimal.NewFromFloat(amount),
		CreatedAt:  at,
	}
	require.NoError(t, f.db.Create(&row).Error)
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestInventoryReportRoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	delivered := f.seedStockAudit(t, enums.StockAuditReasonDelivery, 10, 20, day(10).Add(9*time.Hour))
	wasted := f.seedStockAudit(t, enums.StockAuditReasonWaste, -3, 6, day(11).Add(14*time.Hour))
	// Movements on the end date itself are included.
	sold := f.seedStockAudit(t, enums.StockAuditReasonSale, -2, 4, day(12).Add(23*time.Hour))
	// The day after the end date is not.
	f.seedStockAudit(t, enums.StockAuditReasonDelivery, 5, 10, day(13))

	report, err := f.service.GenerateInventoryReport(ctx, ReportInput{
		StaffID:    f.manager.ID,
		LocationID: f.location.ID,
		StartDate:  day(10),
		EndDate:    day(12),
	})
	require.NoError(t, err)
	require.Len(t, report.Rows, 3)
	assert.Equal(t, "2026-03-10", report.StartDate)
	assert.Equal(t, "2026-03-12", report.EndDate)

	want := []models.StockAudit{delivered, wasted, sold}
	for i, row := range report.Rows {
		assert.Equal(t, want[i].ID, row.AuditID)
		assert.Equal(t, want[i].Reason, row.Reason)
		assert.Equal(t, want[i].UnitsChange, row.UnitsChange)
		assert.True(t, want[i].Cost.Equal(row.Cost), "row %d cost: want %s got %s", i, want[i].Cost, row.Cost)
	}
}

func TestReportsAreManagerOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	in := ReportInput{
		StaffID:    f.chef.ID,
		LocationID: f.location.ID,
		StartDate:  day(1),
		EndDate:    day(2),
	}

	_, err := f.service.GenerateInventoryReport(ctx, in)
	require.Error(t, err)
	assert.Equal(t, errors.CodeForbidden, errors.As(err).Code())

	_, err = f.service.GenerateFinancialSummary(ctx, in)
	require.Error(t, err)
	assert.Equal(t, errors.CodeForbidden, errors.As(err).Code())

	// A manager assigned elsewhere is rejected too.
	other := models.Staff{Name: "Odin", Role: enums.StaffRoleManager}
	require.NoError(t, f.db.Create(&other).Error)
	in.StaffID = other.ID
	_, err = f.service.GenerateInventoryReport(ctx, in)
	require.Error(t, err)
	assert.Equal(t, errors.CodeForbidden, errors.As(err).Code())

	// An unknown requester is forbidden, not not-found.
	in.StaffID = uuid.New()
	_, err = f.service.GenerateInventoryReport(ctx, in)
	require.Error(t, err)
	assert.Equal(t, errors.CodeForbidden, errors.As(err).Code())
}

func TestReportsRejectInvertedDateRange(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.service.GenerateInventoryReport(context.Background(), ReportInput{
		StaffID:    f.manager.ID,
		LocationID: f.location.ID,
		StartDate:  day(5),
		EndDate:    day(2),
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestFinancialSummary(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	f.seedStockAudit(t, enums.StockAuditReasonDelivery, 10, 20, day(10).Add(8*time.Hour))
	f.seedStockAudit(t, enums.StockAuditReasonDelivery, 5, 12.5, day(11).Add(8*time.Hour))
	f.seedStockAudit(t, enums.StockAuditReasonWaste, -3, 6, day(11).Add(15*time.Hour))
	f.seedSale(t, 9.5, day(10).Add(19*time.Hour))
	f.seedSale(t, 12, day(12).Add(20*time.Hour))
	// Out of range.
	f.seedSale(t, 100, day(20))

	// 4 units on the shelf at 2.00 each.
	require.NoError(t, f.db.Create(&models.StockLevel{
		IngredientID:   f.gin.ID,
		LocationID:     f.location.ID,
		UnitsAvailable: 4,
	}).Error)

	summary, err := f.service.GenerateFinancialSummary(ctx, ReportInput{
		StaffID:    f.manager.ID,
		LocationID: f.location.ID,
		StartDate:  day(10),
		EndDate:    day(12),
	})
	require.NoError(t, err)
	assert.True(t, summary.Revenue.Equal(decimal.NewFromFloat(21.5)), "got %s", summary.Revenue)
	assert.True(t, summary.DeliveryCost.Equal(decimal.NewFromFloat(32.5)), "got %s", summary.DeliveryCost)
	assert.True(t, summary.WasteCost.Equal(decimal.NewFromFloat(6)), "got %s", summary.WasteCost)
	assert.True(t, summary.InventoryValue.Equal(decimal.NewFromFloat(8)), "got %s", summary.InventoryValue)
}

func TestFinancialSummaryEmptyWindow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	summary, err := f.service.GenerateFinancialSummary(context.Background(), ReportInput{
		StaffID:    f.manager.ID,
		LocationID: f.location.ID,
		StartDate:  day(1),
		EndDate:    day(1),
	})
	require.NoError(t, err)
	assert.True(t, summary.Revenue.IsZero())
	assert.True(t, summary.DeliveryCost.IsZero())
	assert.True(t, summary.WasteCost.IsZero())
	assert.True(t, summary.InventoryValue.IsZero())
}
