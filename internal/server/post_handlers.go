// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"quorum/internal/models"
	"quorum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts?page=&per_page=
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePageQuery(c)
	userID, _ := s.optionalUserID(c)

	posts, total, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Limit:         page.PerPage,
		Offset:        page.Offset(),
		CurrentUserID: userID,
	})
	if err != nil {
		return respondError(c, err)
	}

	if posts == nil {
		posts = []*models.Post{}
	}
	return c.JSON(fiber.Map{
		"posts":       posts,
		"total":       total,
		"page":        page.Page,
		"per_page":    page.PerPage,
		"total_pages": totalPages(total, page.PerPage),
	})
}

// SearchPosts handles GET /api/posts/search?q=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	userID, _ := s.optionalUserID(c)

	result, err := s.postService.SearchPosts(c.Context(), c.Query("q"), userID)
	if err != nil {
		return respondError(c, err)
	}

	if result.Posts == nil {
		result.Posts = []*models.Post{}
	}
	return c.JSON(result)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	post, err := s.postService.GetPost(c.Context(), id, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userIDParam, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePageQuery(c)
	currentUserID, _ := s.optionalUserID(c)

	posts, err := s.postService.GetUserPosts(c.Context(), userIDParam, page.PerPage, page.Offset(), currentUserID)
	if err != nil {
		return respondError(c, err)
	}

	if posts == nil {
		posts = []*models.Post{}
	}
	return c.JSON(posts)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:  userID,
		PostID:  postID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), service.DeletePostInput{
		UserID: userID,
		PostID: postID,
	}); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}
