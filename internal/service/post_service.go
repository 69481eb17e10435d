package service

import (
	"context"
	"strings"

	"quorum/internal/authz"
	"quorum/internal/models"
	"quorum/internal/repository"
	"quorum/internal/validation"
)

// Search behavior: queries shorter than two characters are rejected, results
// are capped regardless of what the client asks for.
const (
	MinSearchQueryLen = 2
	SearchResultLimit = 50
)

type PostService struct {
	postRepo repository.PostRepository
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
}

type CreatePostInput struct {
	UserID  uint
	Title   string
	Content string
}

type ListPostsInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Title   string
	Content string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// SearchResult carries the capped result page together with the full match
// count and the echoed query.
type SearchResult struct {
	Posts []*models.Post `json:"posts"`
	Total int64          `json:"total"`
	Query string         `json:"query"`
}

func NewPostService(
	postRepo repository.PostRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo: postRepo,
		isAdmin:  isAdmin,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		Title:   strings.TrimSpace(in.Title),
		Content: strings.TrimSpace(in.Content),
		UserID:  in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Re-read so the response carries the author and zeroed counters.
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// ListPosts returns one page of the feed, newest first, with the total for
// pagination math.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, int64, error) {
	posts, err := s.postRepo.List(ctx, in.Limit, in.Offset, in.CurrentUserID)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

func (s *PostService) SearchPosts(ctx context.Context, query string, currentUserID uint) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinSearchQueryLen {
		return nil, models.NewValidationError("Search query must be at least 2 characters")
	}

	posts, err := s.postRepo.Search(ctx, query, SearchResultLimit, currentUserID)
	if err != nil {
		return nil, err
	}
	total, err := s.postRepo.SearchCount(ctx, query)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Posts: posts, Total: total, Query: query}, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.canMutate(ctx, in.UserID, post.UserID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Title != "" {
		if err := validation.ValidatePostTitle(in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Title = strings.TrimSpace(in.Title)
	}
	if in.Content != "" {
		if err := validation.ValidatePostContent(in.Content); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Content = strings.TrimSpace(in.Content)
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, in.PostID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}

	allowed, err := s.canMutate(ctx, in.UserID, post.UserID)
	if err != nil {
		return err
	}
	if !allowed {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	return s.postRepo.Delete(ctx, in.PostID)
}

// canMutate resolves the actor's role lazily: the owner check needs no
// database roundtrip, only the admin override does.
func (s *PostService) canMutate(ctx context.Context, actorID, ownerID uint) (bool, error) {
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
