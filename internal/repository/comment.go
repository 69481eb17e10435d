// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"quorum/internal/cache"
	"quorum/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, currentUserID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// applyCommentDetails adds subqueries to fetch the like count and liked status
// in a single query, mirroring the post read path.
func (r *commentRepository) applyCommentDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "comments.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.target_type = 'comment' AND likes.target_id = comments.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.target_type = 'comment' AND likes.target_id = comments.id AND likes.user_id = ?) as liked",
			currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	// The cached post carries comments_count.
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.applyCommentDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListByPost returns the post's comments oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, currentUserID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the comment and its likes in one transaction.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	var postIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Comment{}).Where("id = ?", id).Pluck("post_id", &postIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetTypeComment, id).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	// The cached post carries comments_count.
	for _, postID := range postIDs {
		cache.InvalidatePost(ctx, postID)
	}
	return nil
}
