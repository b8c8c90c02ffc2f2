package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/larderhq/larder-backend/pkg/db/models"
	"github.com/larderhq/larder-backend/pkg/enums"
	pkgerrors "github.com/larderhq/larder-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Location{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Modifier{},
		&models.MenuItem{},
		&models.Staff{},
	)
	if err != nil {
		t.Fatalf("migrate catalog: %v", err)
	}
	return db
}

func TestStaffByIDPreloadsLocations(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	loc := models.Location{Name: "Riverside", Address: "12 Quay St"}
	if err := db.Create(&loc).Error; err != nil {
		t.Fatalf("seed location: %v", err)
	}
	staff := models.Staff{Name: "Ana", Role: enums.StaffRoleChef, Locations: []models.Location{loc}}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("seed staff: %v", err)
	}

	got, err := repo.StaffByID(ctx, staff.ID)
	if err != nil {
		t.Fatalf("StaffByID: %v", err)
	}
	if got.Role != enums.StaffRoleChef {
		t.Fatalf("unexpected role %s", got.Role)
	}
	if !got.AuthorizedAt(loc.ID) {
		t.Fatalf("expected staff to be authorized at seeded location")
	}
	if got.AuthorizedAt(uuid.New()) {
		t.Fatalf("staff should not be authorized at unknown location")
	}
}

func TestMenuItemByIDPreloadsRecipe(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	gin := models.Ingredient{Name: "gin", Unit: enums.IngredientUnitCentiliter, Cost: decimal.NewFromFloat(0.8)}
	tonic := models.Ingredient{Name: "tonic", Unit: enums.IngredientUnitCentiliter, Cost: decimal.NewFromFloat(0.2)}
	if err := db.Create(&gin).Error; err != nil {
		t.Fatalf("seed gin: %v", err)
	}
	if err := db.Create(&tonic).Error; err != nil {
		t.Fatalf("seed tonic: %v", err)
	}

	recipe := models.Recipe{
		Name: "gin and tonic",
		Ingredients: []models.RecipeIngredient{
			{IngredientID: gin.ID, Quantity: 5},
			{IngredientID: tonic.ID, Quantity: 20},
		},
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("seed recipe: %v", err)
	}

	loc := models.Location{Name: "Riverside", Address: "12 Quay St"}
	if err := db.Create(&loc).Error; err != nil {
		t.Fatalf("seed location: %v", err)
	}
	item := models.MenuItem{RecipeID: recipe.ID, LocationID: loc.ID, Price: decimal.NewFromFloat(9.5)}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed menu item: %v", err)
	}

	got, err := repo.MenuItemByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("MenuItemByID: %v", err)
	}
	if len(got.Recipe.Ingredients) != 2 {
		t.Fatalf("expected 2 recipe lines, got %d", len(got.Recipe.Ingredients))
	}
	if !got.Price.Equal(decimal.NewFromFloat(9.5)) {
		t.Fatalf("unexpected price %s", got.Price)
	}
}

func TestLookupsReturnNotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	if _, err := repo.IngredientByID(ctx, uuid.New()); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for ingredient, got %v", err)
	}
	if _, err := repo.LocationByID(ctx, uuid.New()); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for location, got %v", err)
	}
	if _, err := repo.StaffByID(ctx, uuid.New()); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for staff, got %v", err)
	}
}
