// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"quorum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TogglePostLike handles POST /api/posts/:id/like
func (s *Server) TogglePostLike(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.likeService.ToggleLike(c.Context(), userID, models.TargetTypePost, postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// ToggleCommentLike handles POST /api/comments/:id/like
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	userID := currentUserID(c)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.likeService.ToggleLike(c.Context(), userID, models.TargetTypeComment, commentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetPostLiked handles GET /api/posts/:id/liked
func (s *Server) GetPostLiked(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.likeService.UserLiked(c.Context(), userID, models.TargetTypePost, postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// GetCommentLiked handles GET /api/comments/:id/liked
func (s *Server) GetCommentLiked(c *fiber.Ctx) error {
	userID := currentUserID(c)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.likeService.UserLiked(c.Context(), userID, models.TargetTypeComment, commentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// GetPostLikers handles GET /api/posts/:id/likes
func (s *Server) GetPostLikers(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.likeService.ListLikers(c.Context(), models.TargetTypePost, postID)
	if err != nil {
		return respondError(c, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(fiber.Map{"users": users, "count": len(users)})
}

// GetCommentLikers handles GET /api/comments/:id/likes
func (s *Server) GetCommentLikers(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.likeService.ListLikers(c.Context(), models.TargetTypeComment, commentID)
	if err != nil {
		return respondError(c, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(fiber.Map{"users": users, "count": len(users)})
}
