package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStockLevelsMigrationGuards(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("migrations", "20250612105000_create_stock_levels.sql"))
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS stock_levels",
		"PRIMARY KEY (ingredient_id, location_id)",
		"CHECK (units_available >= 0)",
		"DROP TABLE IF EXISTS stock_levels",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAuditTrailMigrationShape(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("migrations", "20250612105500_create_audit_trail.sql"))
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE stock_audit_reason_enum AS ENUM ('delivery', 'sale', 'waste')",
		"CREATE TABLE IF NOT EXISTS stock_audits",
		"CREATE TABLE IF NOT EXISTS sales_audits",
		"idx_stock_audits_location_created",
		"idx_sales_audits_location_created",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations should validate: %v", err)
	}
}
