package user

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/openlims/lims-backend/pkg/db/models"
)

// Repository exposes persistence for operator accounts.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the user record.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// FindByID loads a user by primary key; nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// FindActiveByUsername loads an active user by username, case-insensitive.
// Returns nil without error when no such user exists.
func (r *Repository) FindActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, nil
	}

	var u models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = ? AND is_active = ?", username, true).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
