// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"quorum/internal/models"
	"quorum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminListUsers handles GET /api/admin/users
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	page := parsePageQuery(c)
	users, total, err := s.userService.ListUsers(c.Context(), actor, page.PerPage, page.Offset())
	if err != nil {
		return respondError(c, err)
	}

	if users == nil {
		users = []models.User{}
	}
	return c.JSON(fiber.Map{
		"users":       users,
		"total":       total,
		"page":        page.Page,
		"per_page":    page.PerPage,
		"total_pages": totalPages(total, page.PerPage),
	})
}

// AdminUpdateUser handles PUT /api/admin/users/:id. Currently only the admin
// flag is editable; an admin can never change its own.
func (s *Server) AdminUpdateUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, err := s.actor(c)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	var req struct {
		IsAdmin *bool `json:"is_admin"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.AdminUpdateUser(c.Context(), service.AdminUpdateUserInput{
		Actor:    actor,
		TargetID: targetID,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// AdminDeleteUser handles DELETE /api/admin/users/:id. Deleting an account
// cascades through its posts, comments and likes.
func (s *Server) AdminDeleteUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, err := s.actor(c)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	if err := s.userService.DeleteUser(c.Context(), actor, targetID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
