package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readProductsMigration(t *testing.T) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_products_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no products migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestProductsMigrationContainsSchema(t *testing.T) {
	content := readProductsMigration(t)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CONSTRAINT products_price_check CHECK (price >= 0)",
		"CONSTRAINT products_stock_quantity_check CHECK (stock_quantity >= 0)",
		"CREATE TRIGGER products_set_updated_at",
		"ALTER TABLE products ENABLE ROW LEVEL SECURITY",
		"CREATE POLICY products_read ON products",
		"CREATE POLICY products_service_write ON products",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProductsMigrationDownDropsEverything(t *testing.T) {
	content := readProductsMigration(t)

	idx := strings.Index(content, "-- +goose Down")
	if idx < 0 {
		t.Fatal("migration missing Down section")
	}
	down := content[idx:]

	drops := []string{
		"DROP POLICY IF EXISTS products_service_write ON products",
		"DROP POLICY IF EXISTS products_read ON products",
		"DROP TRIGGER IF EXISTS products_set_updated_at ON products",
		"DROP FUNCTION IF EXISTS set_products_updated_at()",
		"DROP TABLE IF EXISTS products",
	}

	for _, sub := range drops {
		if !strings.Contains(down, sub) {
			t.Errorf("down section missing %q", sub)
		}
	}

	// drops must run before the table disappears
	tableDrop := strings.Index(down, "DROP TABLE IF EXISTS products")
	for _, sub := range drops[:4] {
		if pos := strings.Index(down, sub); pos > tableDrop {
			t.Errorf("%q must run before the table drop", sub)
		}
	}
}
