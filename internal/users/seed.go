package user

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/openlims/lims-backend/pkg/config"
	"github.com/openlims/lims-backend/pkg/db"
	"github.com/openlims/lims-backend/pkg/db/models"
	"github.com/openlims/lims-backend/pkg/logger"
	"github.com/openlims/lims-backend/pkg/security"
)

// SeedAdmin provisions the bootstrap admin account so stored-credential
// logins work out of the box. It is a no-op when no admin password is
// configured or the username is already taken.
func SeedAdmin(ctx context.Context, conn *gorm.DB, admin config.AdminConfig, pw config.PasswordConfig, logg *logger.Logger) error {
	username := strings.TrimSpace(admin.Username)
	if username == "" || admin.Password == "" {
		return nil
	}

	repo := NewRepository(conn)
	existing, err := repo.FindActiveByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("looking up admin user: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := security.HashPassword(admin.Password, pw)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	record := models.User{
		Username:     username,
		Email:        strings.TrimSpace(admin.Email),
		PasswordHash: hash,
		Role:         "admin",
		IsActive:     true,
	}
	if err := repo.Create(ctx, &record); err != nil {
		// A deactivated account with the same username keeps its state.
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return fmt.Errorf("creating admin user: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "username", username), "users.admin_seeded")
	}
	return nil
}
