package checks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	product "github.com/hovergrid/preflight/internal/products"
	"github.com/hovergrid/preflight/pkg/config"
	pkgerrors "github.com/hovergrid/preflight/pkg/errors"
	"github.com/hovergrid/preflight/pkg/redis"
	"github.com/hovergrid/preflight/pkg/supabase"
	"github.com/shopspring/decimal"
)

const productsRunLock = "products"

// ConstraintProber issues inserts that must be rejected by the database
// CHECK constraints, bypassing application-side validation.
type ConstraintProber interface {
	InsertNegativePrice(ctx context.Context, name string) error
	InsertNegativeStock(ctx context.Context, name string) error
}

// AnonGateway is what an untrusted caller can do over REST with the anon key.
type AnonGateway interface {
	ReadProducts(ctx context.Context) (int64, error)
	InsertProduct(ctx context.Context, name string) error
}

// RunLocker serializes products-suite runs against a shared environment.
type RunLocker interface {
	AcquireRunLock(ctx context.Context, name, holder string, ttl time.Duration) error
	ReleaseRunLock(ctx context.Context, name string) error
}

// ProductsDeps carries everything the products suite drives.
type ProductsDeps struct {
	Cfg     *config.Config
	Service product.Service
	Prober  ConstraintProber
	Anon    AnonGateway
	Lock    RunLocker // nil when redis is not configured
}

// ProductsSuite exercises the demo table end to end: service-role CRUD,
// CHECK constraint rejections, anon-side RLS behavior, and TEST_ cleanup.
func ProductsSuite(deps ProductsDeps) Suite {
	cfg := deps.Cfg
	prefix := cfg.Test.NamePrefix
	holder := lockHolder()

	return Suite{
		Name: "products",
		Setup: func(ctx context.Context) error {
			if deps.Lock == nil {
				return nil
			}
			err := deps.Lock.AcquireRunLock(ctx, productsRunLock, holder, cfg.Redis.LockTTL)
			if errors.Is(err, redis.ErrLockHeld) {
				return fmt.Errorf("another products run is in progress: %w", err)
			}
			return err
		},
		Teardown: func(ctx context.Context) error {
			if deps.Lock == nil {
				return nil
			}
			return deps.Lock.ReleaseRunLock(ctx, productsRunLock)
		},
		Checks: []Check{
			{
				Name: "service-crud",
				Run: func(ctx context.Context) (string, error) {
					created, err := deps.Service.Create(ctx, product.NewFixture(prefix))
					if err != nil {
						return "", fmt.Errorf("create: %w", err)
					}

					loaded, err := deps.Service.Get(ctx, created.ID)
					if err != nil {
						return "", fmt.Errorf("read back: %w", err)
					}
					if loaded.Name != created.Name {
						return "", fmt.Errorf("read back returned name %q, created %q", loaded.Name, created.Name)
					}

					updated, err := deps.Service.UpdateStock(ctx, created.ID, loaded.StockQuantity+5)
					if err != nil {
						return "", fmt.Errorf("update stock: %w", err)
					}
					if updated.StockQuantity != loaded.StockQuantity+5 {
						return "", fmt.Errorf("stock update not applied, got %d", updated.StockQuantity)
					}

					if err := deps.Service.Delete(ctx, created.ID); err != nil {
						return "", fmt.Errorf("delete: %w", err)
					}
					if _, err := deps.Service.Get(ctx, created.ID); err == nil {
						return "", fmt.Errorf("product %s still readable after delete", created.ID)
					}
					return "create/read/update/delete round trip ok", nil
				},
			},
			{
				Name: "constraint-negative-price",
				Run: func(ctx context.Context) (string, error) {
					err := deps.Prober.InsertNegativePrice(ctx, product.TestName(prefix, "neg_price"))
					return expectConstraint(err, "negative price")
				},
			},
			{
				Name: "constraint-negative-stock",
				Run: func(ctx context.Context) (string, error) {
					err := deps.Prober.InsertNegativeStock(ctx, product.TestName(prefix, "neg_stock"))
					return expectConstraint(err, "negative stock")
				},
			},
			{
				Name: "anon-read",
				Run: func(ctx context.Context) (string, error) {
					count, err := deps.Anon.ReadProducts(ctx)
					if err != nil {
						return "", fmt.Errorf("anon read failed: %w", err)
					}
					return fmt.Sprintf("anon key can read (%d rows visible)", count), nil
				},
			},
			{
				Name: "anon-write-denied",
				Run: func(ctx context.Context) (string, error) {
					err := deps.Anon.InsertProduct(ctx, product.TestName(prefix, "anon_write"))
					if err == nil {
						return "", pkgerrors.New(pkgerrors.CodePolicy, "anon insert unexpectedly succeeded; RLS write policy is missing")
					}
					return fmt.Sprintf("anon insert rejected as expected (%v)", err), nil
				},
			},
			{
				Name: "cleanup",
				Run: func(ctx context.Context) (string, error) {
					removed, err := deps.Service.CleanupTestData(ctx)
					if err != nil {
						return "", fmt.Errorf("cleanup: %w", err)
					}
					return fmt.Sprintf("removed %d %s%% rows", removed, prefix), nil
				},
			},
		},
	}
}

func expectConstraint(err error, what string) (string, error) {
	if err == nil {
		return "", pkgerrors.New(pkgerrors.CodeConstraint, what+" insert unexpectedly succeeded; CHECK constraint is missing")
	}
	if code := pkgerrors.Classify(err); code != pkgerrors.CodeConstraint {
		return "", fmt.Errorf("%s insert failed with %s instead of a constraint violation: %w", what, code, err)
	}
	return what + " rejected by CHECK constraint", nil
}

func lockHolder() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

// DBProber is the concrete ConstraintProber over the service-role repository.
type DBProber struct {
	Repo *product.Repository
}

func (p *DBProber) InsertNegativePrice(ctx context.Context, name string) error {
	_, err := p.Repo.Create(ctx, &product.Product{
		Name:          name,
		Price:         decimal.NewFromInt(-1),
		StockQuantity: 1,
	})
	return err
}

func (p *DBProber) InsertNegativeStock(ctx context.Context, name string) error {
	_, err := p.Repo.Create(ctx, &product.Product{
		Name:          name,
		Price:         decimal.NewFromInt(1),
		StockQuantity: -1,
	})
	return err
}

// RestGateway is the concrete AnonGateway over the PostgREST anon client.
type RestGateway struct {
	Client *supabase.Client
	Table  string
}

func (g *RestGateway) ReadProducts(ctx context.Context) (int64, error) {
	_, count, err := g.Client.From(g.Table).
		Select("id,name,price,stock_quantity", "exact", false).
		Limit(5, "").
		ExecuteWithContext(ctx)
	return count, err
}

func (g *RestGateway) InsertProduct(ctx context.Context, name string) error {
	row := map[string]any{
		"name":           name,
		"description":    "anon write probe",
		"price":          1.00,
		"stock_quantity": 1,
	}
	_, _, err := g.Client.From(g.Table).
		Insert(row, false, "", "representation", "").
		ExecuteWithContext(ctx)
	return err
}
