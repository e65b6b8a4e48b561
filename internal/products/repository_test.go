package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&Product{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

func mustCreate(t *testing.T, repo *Repository, name string) *Product {
	t.Helper()
	p, err := repo.Create(context.Background(), &Product{
		Name:          name,
		Price:         decimal.NewFromFloat(12.50),
		StockQuantity: 3,
	})
	if err != nil {
		t.Fatalf("create %q: %v", name, err)
	}
	return p
}

func TestRepositoryCRUDRoundTrip(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	created := mustCreate(t, repo, "TEST_widget_1")
	if created.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("expected BeforeCreate to assign an ID")
	}

	loaded, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if loaded.Name != "TEST_widget_1" {
		t.Fatalf("unexpected name %q", loaded.Name)
	}
	if !loaded.Price.Equal(decimal.NewFromFloat(12.50)) {
		t.Fatalf("unexpected price %s", loaded.Price)
	}

	loaded.StockQuantity = 7
	if _, err := repo.Update(ctx, loaded); err != nil {
		t.Fatalf("update: %v", err)
	}
	reloaded, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.StockQuantity != 7 {
		t.Fatalf("expected stock 7, got %d", reloaded.StockQuantity)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, created.ID); err == nil {
		t.Fatal("expected find after delete to fail")
	}
}

func TestDeleteByNamePrefixOnlyTouchesPrefixedRows(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	mustCreate(t, repo, "TEST_alpha")
	mustCreate(t, repo, "TEST_beta")
	keeper := mustCreate(t, repo, "Production Widget")

	removed, err := repo.DeleteByNamePrefix(ctx, "TEST_")
	if err != nil {
		t.Fatalf("delete by prefix: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 rows removed, got %d", removed)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 surviving row, got %d", count)
	}
	if _, err := repo.FindByID(ctx, keeper.ID); err != nil {
		t.Fatalf("non-prefixed row should survive cleanup: %v", err)
	}
}

func TestListByNamePrefix(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	mustCreate(t, repo, "TEST_one")
	mustCreate(t, repo, "TEST_two")
	mustCreate(t, repo, "other")

	rows, err := repo.ListByNamePrefix(ctx, "TEST_")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestNegativeStockRejectedByCheckConstraint(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	_, err := repo.Create(context.Background(), &Product{
		Name:          "TEST_negative",
		Price:         decimal.NewFromInt(1),
		StockQuantity: -1,
	})
	if err == nil {
		t.Fatal("expected CHECK constraint to reject negative stock")
	}
}
