// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"quorum/internal/cache"
	"quorum/internal/models"
	"quorum/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	Stats(ctx context.Context, userID uint) (*models.ProfileStats, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return duplicateUserError(err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// PostgreSQL unique violation SQLSTATE 23505
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// Fallback for drivers that do not expose SQLSTATE (sqlite in tests)
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// duplicateUserError classifies a unique violation on the users table by the
// column named in the driver error.
func duplicateUserError(err error) *models.AppError {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "username"):
		return models.NewConflictError("Username already taken")
	case strings.Contains(msg, "email"):
		return models.NewConflictError("Email already registered")
	default:
		return models.NewConflictError("User already exists")
	}
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return duplicateUserError(err)
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// Delete removes the user and cascades through every row the account owns:
// its posts (with their comments and likes), its comments elsewhere, and the
// likes it gave. A single transaction so no partial cascade is observable.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	span, ctx := observability.NewSpan(ctx, "repository.user.delete")
	defer span.End()

	var postIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("user_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}

		commentQuery := tx.Model(&models.Comment{}).Where("user_id = ?", id)
		if len(postIDs) > 0 {
			commentQuery = tx.Model(&models.Comment{}).Where("user_id = ? OR post_id IN ?", id, postIDs)
		}
		var commentIDs []uint
		if err := commentQuery.Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetTypePost, postIDs).
				Delete(&models.Like{}).Error; err != nil {
				return err
			}
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetTypeComment, commentIDs).
				Delete(&models.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		if len(postIDs) > 0 {
			if err := tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}

		// Hard delete so the username and email become available again; the
		// unique indexes cover soft-deleted rows too.
		return tx.Unscoped().Delete(&models.User{}, id).Error
	})
	if err != nil {
		span.SetError(err)
		return models.NewInternalError(err)
	}

	observability.RecordCascadeDelete("user")
	cache.InvalidateUser(ctx, id)
	// Cached copies of the deleted posts must not outlive the cascade.
	for _, postID := range postIDs {
		cache.InvalidatePost(ctx, postID)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Stats aggregates the profile counters by count queries at read time.
func (r *userRepository) Stats(ctx context.Context, userID uint) (*models.ProfileStats, error) {
	var stats models.ProfileStats

	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ?", userID).Count(&stats.TotalPosts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("user_id = ?", userID).Count(&stats.TotalComments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).Count(&stats.TotalLikesGiven).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return &stats, nil
}
