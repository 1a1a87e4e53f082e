package component

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openlims/lims-backend/pkg/db/models"
	"github.com/openlims/lims-backend/pkg/pagination"
)

// ListFilter narrows the component listing.
type ListFilter struct {
	Category string
	// Query matches name or part number, case-insensitive substring.
	Query    string
	LowStock *bool
}

// Repository exposes persistence for inventory components.
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

// Create inserts the component record.
func (r *Repository) Create(ctx context.Context, c *models.Component) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindByID loads a component by primary key; nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Component, error) {
	var c models.Component
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// FindByIDForUpdate loads a component with a row lock for stock mutation.
// SQLite ignores the locking clause; its writes serialize anyway.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Component, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var c models.Component
	err := query.First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// UpdateQuantity persists the new quantity for the component.
func (r *Repository) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Component{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

// List returns the filtered page, the filtered total, and how many of the
// filtered rows sit at or below their threshold.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Component, int64, int64, error) {
	var total int64
	if err := r.applyFilter(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}

	var lowStock int64
	if err := r.applyFilter(ctx, filter).
		Where("quantity <= low_threshold").
		Count(&lowStock).Error; err != nil {
		return nil, 0, 0, err
	}

	var items []models.Component
	err := r.applyFilter(ctx, filter).
		Order("id ASC").
		Limit(params.PerPage).
		Offset(params.Offset()).
		Find(&items).Error
	if err != nil {
		return nil, 0, 0, err
	}
	return items, total, lowStock, nil
}

// Count returns the number of component rows without filtering.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Component{}).Count(&total).Error
	return total, err
}

func (r *Repository) applyFilter(ctx context.Context, filter ListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Component{})

	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(part_number) LIKE ?", pattern, pattern)
	}
	if filter.LowStock != nil {
		if *filter.LowStock {
			query = query.Where("quantity <= low_threshold")
		} else {
			query = query.Where("quantity > low_threshold")
		}
	}
	return query
}
