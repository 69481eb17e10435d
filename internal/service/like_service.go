package service

import (
	"context"

	"quorum/internal/models"
	"quorum/internal/repository"
)

type LikeService struct {
	likeRepo    repository.LikeRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

// ToggleResult is the new like state after a toggle.
type ToggleResult struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

// ToggleLike flips the caller's like on a post or comment. The target must
// exist; the toggle itself is race-free inside the repository.
func (s *LikeService) ToggleLike(ctx context.Context, userID uint, targetType string, targetID uint) (*ToggleResult, error) {
	if err := s.checkTarget(ctx, targetType, targetID); err != nil {
		return nil, err
	}

	liked, count, err := s.likeRepo.Toggle(ctx, userID, targetType, targetID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Liked: liked, Count: count}, nil
}

// UserLiked reports whether the caller currently likes the target.
func (s *LikeService) UserLiked(ctx context.Context, userID uint, targetType string, targetID uint) (bool, error) {
	if err := s.checkTarget(ctx, targetType, targetID); err != nil {
		return false, err
	}
	return s.likeRepo.IsLiked(ctx, userID, targetType, targetID)
}

// ListLikers returns the users who like the target, most recent first.
func (s *LikeService) ListLikers(ctx context.Context, targetType string, targetID uint) ([]models.User, error) {
	if err := s.checkTarget(ctx, targetType, targetID); err != nil {
		return nil, err
	}
	return s.likeRepo.ListUsers(ctx, targetType, targetID)
}

func (s *LikeService) checkTarget(ctx context.Context, targetType string, targetID uint) error {
	switch targetType {
	case models.TargetTypePost:
		_, err := s.postRepo.GetByID(ctx, targetID, 0)
		return err
	case models.TargetTypeComment:
		_, err := s.commentRepo.GetByID(ctx, targetID, 0)
		return err
	default:
		return models.NewValidationError("Invalid like target type")
	}
}
