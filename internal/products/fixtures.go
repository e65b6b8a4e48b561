package product

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TestName builds a unique fixture name under the cleanup prefix. Rows named
// this way are fair game for DeleteByNamePrefix.
func TestName(prefix, base string) string {
	return fmt.Sprintf("%s%s_%s", prefix, base, uuid.NewString()[:8])
}

// NewFixture returns a valid throwaway product for the check suites.
func NewFixture(prefix string) CreateInput {
	description := "inserted by the preflight products suite"
	return CreateInput{
		Name:          TestName(prefix, "widget"),
		Description:   &description,
		Price:         decimal.NewFromFloat(9.99),
		StockQuantity: 10,
	}
}
