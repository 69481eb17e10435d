package service

import (
	"context"
	"strings"

	"quorum/internal/authz"
	"quorum/internal/models"
	"quorum/internal/repository"
	"quorum/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		isAdmin:     isAdmin,
	}
}

// CreateComment attaches a comment to an existing post. A missing post is
// NOT_FOUND, not a validation failure.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		return nil, err
	}

	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment := &models.Comment{
		Content: strings.TrimSpace(in.Content),
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID, in.UserID)
}

// ListComments returns the post's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint, currentUserID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID, currentUserID)
}

func (s *CommentService) GetComment(ctx context.Context, id uint, currentUserID uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id, currentUserID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID, in.UserID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.canMutate(ctx, in.UserID, comment.UserID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}

	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment.Content = strings.TrimSpace(in.Content)
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID, in.UserID)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID, in.UserID)
	if err != nil {
		return err
	}

	allowed, err := s.canMutate(ctx, in.UserID, comment.UserID)
	if err != nil {
		return err
	}
	if !allowed {
		return models.NewForbiddenError("You can only delete your own comments")
	}

	return s.commentRepo.Delete(ctx, in.CommentID)
}

func (s *CommentService) canMutate(ctx context.Context, actorID, ownerID uint) (bool, error) {
	if authz.CanMutate(authz.Actor{ID: actorID}, ownerID) {
		return true, nil
	}
	if s.isAdmin == nil {
		return false, nil
	}
	admin, err := s.isAdmin(ctx, actorID)
	if err != nil {
		return false, err
	}
	return authz.CanMutate(authz.Actor{ID: actorID, IsAdmin: admin}, ownerID), nil
}
