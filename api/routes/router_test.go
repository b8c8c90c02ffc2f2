package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/larderhq/larder-backend/internal/audit"
	"github.com/larderhq/larder-backend/internal/catalog"
	"github.com/larderhq/larder-backend/internal/reports"
	"github.com/larderhq/larder-backend/internal/stockledger"
	"github.com/larderhq/larder-backend/pkg/config"
	"github.com/larderhq/larder-backend/pkg/db/models"
	"github.com/larderhq/larder-backend/pkg/enums"
	pkgerrors "github.com/larderhq/larder-backend/pkg/errors"
	"github.com/larderhq/larder-backend/pkg/logger"
	"github.com/larderhq/larder-backend/pkg/metrics"
	"github.com/larderhq/larder-backend/pkg/types"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

type apiFixture struct {
	db      *gorm.DB
	handler http.Handler

	location models.Location
	chef     models.Staff
	server   models.Staff
	manager  models.Staff
	gin      models.Ingredient
	menuItem models.MenuItem
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	dsn := "file:routes_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Location{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Modifier{},
		&models.MenuItem{},
		&models.Staff{},
		&models.StockLevel{},
		&models.StockAudit{},
		&models.SalesAudit{},
	))

	f := &apiFixture{db: db}

	f.location = models.Location{Name: "Riverside", Address: "12 Quay St"}
	require.NoError(t, db.Create(&f.location).Error)

	f.chef = models.Staff{Name: "Caro", Role: enums.StaffRoleChef, Locations: []models.Location{f.location}}
	f.server = models.Staff{Name: "Sol", Role: enums.StaffRoleFrontOfHouse, Locations: []models.Location{f.location}}
	f.manager = models.Staff{Name: "Mara", Role: enums.StaffRoleManager, Locations: []models.Location{f.location}}
	for _, s := range []*models.Staff{&f.chef, &f.server, &f.manager} {
		require.NoError(t, db.Create(s).Error)
	}

	f.gin = models.Ingredient{Name: "gin", Unit: enums.IngredientUnitCentiliter, Cost: decimal.NewFromFloat(2)}
	require.NoError(t, db.Create(&f.gin).Error)

	recipe := models.Recipe{
		Name:        "gin neat",
		Ingredients: []models.RecipeIngredient{{IngredientID: f.gin.ID, Quantity: 5}},
	}
	require.NoError(t, db.Create(&recipe).Error)
	f.menuItem = models.MenuItem{RecipeID: recipe.ID, LocationID: f.location.ID, Price: decimal.NewFromFloat(7)}
	require.NoError(t, db.Create(&f.menuItem).Error)

	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	reader := catalog.NewRepository(db)
	audits := audit.NewRepository(db)
	m := metrics.NewLedgerMetrics(nil)

	ledger := stockledger.NewService(testTxRunner{db: db}, reader, stockledger.NewRepository(db), audits, m, log)
	reporting := reports.NewService(reader, audits, reports.NewRepository(db), m, log)

	cfg := &config.Config{App: config.AppConfig{Env: "test", Port: "8080"}}
	f.handler = NewRouter(cfg, log, nil, nil, ledger, reporting, nil)
	return f
}

func (f *apiFixture) post(t *testing.T, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func deliveryPayload(f *apiFixture, staffID uuid.UUID, units float64) map[string]any {
	return map[string]any{
		"staff_id":    staffID,
		"location_id": f.location.ID,
		"items": []map[string]any{
			{"ingredient_id": f.gin.ID, "units": units},
		},
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	assert.Equal(t, http.StatusOK, f.get(t, "/health/live").Code)
	assert.Equal(t, http.StatusOK, f.get(t, "/health/ready").Code)
}

func TestStockDeliveryEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	w := f.post(t, "/api/v1/stock/delivery", deliveryPayload(f, f.chef.ID, 10))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var level models.StockLevel
	require.NoError(t, f.db.First(&level, "ingredient_id = ?", f.gin.ID).Error)
	assert.Equal(t, 10.0, level.UnitsAvailable)

	// Managers are not allowed to accept deliveries.
	w = f.post(t, "/api/v1/stock/delivery", deliveryPayload(f, f.manager.ID, 10))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Malformed payloads are rejected up front.
	w = f.post(t, "/api/v1/stock/delivery", map[string]any{"staff_id": f.chef.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStockWasteEndpointInsufficientStock(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	w := f.post(t, "/api/v1/stock/delivery", deliveryPayload(f, f.chef.ID, 5))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.post(t, "/api/v1/stock/waste", deliveryPayload(f, f.chef.ID, 9))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	var envelope types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Equal(t, string(pkgerrors.CodeInsufficientStock), envelope.Error.Code)
}

func TestMenuSellEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	w := f.post(t, "/api/v1/stock/delivery", deliveryPayload(f, f.chef.ID, 20))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	sellPath := fmt.Sprintf("/api/v1/menu/%s/sell", f.menuItem.ID)
	w = f.post(t, sellPath, map[string]any{"staff_id": f.server.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var level models.StockLevel
	require.NoError(t, f.db.First(&level, "ingredient_id = ?", f.gin.ID).Error)
	assert.Equal(t, 15.0, level.UnitsAvailable)

	var sales int64
	require.NoError(t, f.db.Model(&models.SalesAudit{}).Count(&sales).Error)
	assert.Equal(t, int64(1), sales)

	// Chefs cannot sell.
	w = f.post(t, sellPath, map[string]any{"staff_id": f.chef.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A malformed menu id is rejected.
	w = f.post(t, "/api/v1/menu/not-a-uuid/sell", map[string]any{"staff_id": f.server.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportEndpoints(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	w := f.post(t, "/api/v1/stock/delivery", deliveryPayload(f, f.chef.ID, 10))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	base := fmt.Sprintf("staff_id=%s&location_id=%s&start_date=2020-01-01&end_date=2030-01-01", f.manager.ID, f.location.ID)

	w = f.get(t, "/api/v1/reports/inventory?"+base)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.get(t, "/api/v1/reports/financial-summary?"+base)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Reports are manager only.
	chefQuery := fmt.Sprintf("staff_id=%s&location_id=%s&start_date=2020-01-01&end_date=2030-01-01", f.chef.ID, f.location.ID)
	w = f.get(t, "/api/v1/reports/inventory?"+chefQuery)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Inverted ranges are rejected.
	inverted := fmt.Sprintf("staff_id=%s&location_id=%s&start_date=2030-01-01&end_date=2020-01-01", f.manager.ID, f.location.ID)
	w = f.get(t, "/api/v1/reports/financial-summary?"+inverted)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
