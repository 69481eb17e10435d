// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"quorum/internal/models"
	"quorum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return respondError(c, models.NewValidationError("Username, email, and password are required"))
	}

	user, err := s.userService.Register(c.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.tokenService.Issue(user)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login. The identifier may be a username or an
// email address.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	user, err := s.userService.Login(c.Context(), identifier, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.tokenService.Issue(user)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Me handles GET /api/auth/me, returning the authenticated account.
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
