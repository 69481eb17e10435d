// Package repository implements the data access layer for the application.
package repository

import (
	"context"

	"quorum/internal/cache"
	"quorum/internal/models"
	"quorum/internal/observability"

	"gorm.io/gorm"
)

// LikeRepository defines persistence operations for likes on posts and comments.
type LikeRepository interface {
	Toggle(ctx context.Context, userID uint, targetType string, targetID uint) (liked bool, count int64, err error)
	IsLiked(ctx context.Context, userID uint, targetType string, targetID uint) (bool, error)
	CountForTarget(ctx context.Context, targetType string, targetID uint) (int64, error)
	ListUsers(ctx context.Context, targetType string, targetID uint) ([]models.User, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle flips the like state for (user, target) and returns the new state
// with the recomputed count. The INSERT attempt doubles as the existence
// check: ON CONFLICT DO NOTHING reports zero affected rows when the like
// already exists, in which case we delete it instead. Everything runs in one
// transaction so concurrent toggles never leave a duplicate or a stale count.
func (r *likeRepository) Toggle(ctx context.Context, userID uint, targetType string, targetID uint) (bool, int64, error) {
	span, ctx := observability.NewSpan(ctx, "repository.like.toggle")
	defer span.End()

	var liked bool
	var count int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`INSERT INTO likes (user_id, target_type, target_id, created_at)
			 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT (user_id, target_type, target_id) DO NOTHING`,
			userID, targetType, targetID,
		)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// Already liked: remove the existing row.
			if err := tx.Where("user_id = ? AND target_type = ? AND target_id = ?",
				userID, targetType, targetID).Delete(&models.Like{}).Error; err != nil {
				return err
			}
			liked = false
		} else {
			liked = true
		}

		return tx.Model(&models.Like{}).
			Where("target_type = ? AND target_id = ?", targetType, targetID).
			Count(&count).Error
	})
	if err != nil {
		span.SetError(err)
		return false, 0, models.NewInternalError(err)
	}

	observability.RecordLikeToggle(targetType, liked)
	if targetType == models.TargetTypePost {
		cache.InvalidatePost(ctx, targetID)
	}
	return liked, count, nil
}

func (r *likeRepository) IsLiked(ctx context.Context, userID uint, targetType string, targetID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *likeRepository) CountForTarget(ctx context.Context, targetType string, targetID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// ListUsers returns the users who liked the target, most recent first.
func (r *likeRepository) ListUsers(ctx context.Context, targetType string, targetID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.id, users.username, users.email, users.is_admin, users.created_at, users.updated_at").
		Joins("JOIN likes ON likes.user_id = users.id").
		Where("likes.target_type = ? AND likes.target_id = ?", targetType, targetID).
		Order("likes.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
