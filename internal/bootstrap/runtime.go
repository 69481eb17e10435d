// Package bootstrap wires up runtime dependencies and first-run state.
package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"

	"quorum/internal/cache"
	"quorum/internal/config"
	"quorum/internal/database"
	"quorum/internal/middleware"
	"quorum/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis and ensures first-run state.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// May yield a nil client if Redis is unreachable; callers degrade.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := EnsureAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	return db, r, nil
}

// EnsureAdmin seeds the configured administrator account when the users table
// is empty, so a fresh install always has a moderator. An existing install is
// never touched.
func EnsureAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		username = "admin"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.AdminEmail))
	if email == "" {
		email = "admin@quorum.local"
	}
	password := cfg.AdminPassword
	if password == "" {
		return fmt.Errorf("ADMIN_PASSWORD must be set to bootstrap an empty database")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		IsAdmin:  true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	middleware.Logger.Info("Bootstrap admin account created",
		slog.String("username", username),
		slog.String("email", email),
	)
	return nil
}
