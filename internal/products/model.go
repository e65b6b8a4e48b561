package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product mirrors the demo products table. Price and stock are guarded by
// DB CHECK constraints; the gorm check tags reproduce them on test databases
// built with AutoMigrate.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null;check:price >= 0" json:"price"`
	StockQuantity int             `gorm:"not null;check:stock_quantity >= 0" json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns an ID client-side so test databases without
// gen_random_uuid() behave like the migrated postgres schema.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
