package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hovergrid/preflight/pkg/config"
	pkgerrors "github.com/hovergrid/preflight/pkg/errors"
	"github.com/shopspring/decimal"
)

// Service exposes the product operations the check suites drive. Validation
// here mirrors the DB CHECK constraints; it never replaces them.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Product, error)
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, quantity int) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CleanupTestData(ctx context.Context) (int64, error)
}

// CreateInput holds the payload for a new product.
type CreateInput struct {
	Name          string `validate:"required,max=200"`
	Description   *string
	Price         decimal.Decimal
	StockQuantity int `validate:"gte=0"`
}

type service struct {
	repo     *Repository
	validate *validator.Validate
	testCfg  config.TestConfig
}

// NewService constructs a product service instance.
func NewService(repo *Repository, testCfg config.TestConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		testCfg:  testCfg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Product, error) {
	input.Name = strings.TrimSpace(input.Name)

	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConstraint, err, "invalid product input")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeConstraint, "price must be >= 0")
	}

	created, err := s.repo.Create(ctx, &Product{
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
	})
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading product %s: %w", id, err)
	}
	return p, nil
}

func (s *service) UpdateStock(ctx context.Context, id uuid.UUID, quantity int) (*Product, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConstraint, "stock_quantity must be >= 0")
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading product %s: %w", id, err)
	}
	p.StockQuantity = quantity

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("updating product %s: %w", id, err)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting product %s: %w", id, err)
	}
	return nil
}

// CleanupTestData removes every row carrying the configured test prefix.
func (s *service) CleanupTestData(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteByNamePrefix(ctx, s.testCfg.NamePrefix)
	if err != nil {
		return 0, fmt.Errorf("cleaning up %s%% rows: %w", s.testCfg.NamePrefix, err)
	}
	return removed, nil
}
