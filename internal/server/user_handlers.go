// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"quorum/internal/models"
	"quorum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:id/profile. Public: the account,
// its activity counters and its most recent posts.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	currentID, _ := s.optionalUserID(c)

	profile, err := s.userService.GetProfile(c.Context(), id, currentID)
	if err != nil {
		return respondError(c, err)
	}
	if profile.RecentPosts == nil {
		profile.RecentPosts = []*models.Post{}
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:   userID,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyPassword handles PUT /api/users/me/password
func (s *Server) UpdateMyPassword(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.UpdatePassword(c.Context(), service.UpdatePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}
