// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"quorum/internal/cache"
	"quorum/internal/models"
	"quorum/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
	Search(ctx context.Context, query string, limit int, currentUserID uint) ([]*models.Post, error)
	SearchCount(ctx context.Context, query string) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.target_type = 'post' AND likes.target_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.target_type = 'post' AND likes.target_id = posts.id AND likes.user_id = ?) as liked",
			currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post

	fetch := func() error {
		if err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
			Preload("User").
			First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	}

	var err error
	if currentUserID == 0 {
		// Anonymous reads share one cache entry; liked is always false for them.
		err = cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "repository.post.list")
	defer span.End()

	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Search matches the query as a case-insensitive substring of the title or
// content. LOWER/LIKE instead of ILIKE so the same statement runs on the
// sqlite test database.
func (r *postRepository) Search(ctx context.Context, query string, limit int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	like := "%" + query + "%"
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(content) LIKE LOWER(?)", like, like).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) SearchCount(ctx context.Context, query string) (int64, error) {
	var count int64
	like := "%" + query + "%"
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(content) LIKE LOWER(?)", like, like).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete removes the post together with its comments and every like that
// references the post or one of those comments. One transaction; a partial
// cascade is never observable.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	span, ctx := observability.NewSpan(ctx, "repository.post.delete")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		if len(commentIDs) > 0 {
			if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetTypeComment, commentIDs).
				Delete(&models.Like{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetTypePost, id).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		span.SetError(err)
		return models.NewInternalError(err)
	}

	observability.RecordCascadeDelete("post")
	cache.InvalidatePost(ctx, id)
	return nil
}
