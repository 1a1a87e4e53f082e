package transaction

import (
	"context"

	"gorm.io/gorm"

	"github.com/openlims/lims-backend/pkg/db/models"
	"github.com/openlims/lims-backend/pkg/pagination"
)

// Repository persists stock ledger entries.
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

// Create appends one ledger entry.
func (r *Repository) Create(ctx context.Context, entry *models.Transaction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByComponent returns the ledger for a component, newest first, plus the
// total row count for the component.
func (r *Repository) ListByComponent(ctx context.Context, componentID uint, params pagination.Params) ([]models.Transaction, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("component_id = ?", componentID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.Transaction
	err := r.db.WithContext(ctx).
		Where("component_id = ?", componentID).
		Order("created_at DESC, id DESC").
		Limit(params.PerPage).
		Offset(params.Offset()).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
