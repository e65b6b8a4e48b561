package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository holds the direct (service-role) persistence operations for
// products. The TEST_ name prefix is the only discriminator cleanup uses,
// so prefix-scoped operations live here rather than in callers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, p *Product) (*Product, error) {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// FindByID loads a product by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Update saves all fields of an existing product row.
func (r *Repository) Update(ctx context.Context, p *Product) (*Product, error) {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Product{}).Error
}

// ListByNamePrefix returns products whose name starts with prefix, oldest first.
func (r *Repository) ListByNamePrefix(ctx context.Context, prefix string) ([]Product, error) {
	var rows []Product
	err := r.db.WithContext(ctx).
		Where("name LIKE ?", prefix+"%").
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteByNamePrefix removes every product whose name starts with prefix and
// reports how many rows went away.
func (r *Repository) DeleteByNamePrefix(ctx context.Context, prefix string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("name LIKE ?", prefix+"%").
		Delete(&Product{})
	return res.RowsAffected, res.Error
}

// Count returns the number of product rows.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Product{}).Count(&count).Error
	return count, err
}
