package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"quorum/internal/models"
	"quorum/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGetUserProfile(t *testing.T) {
	app := fiber.New()
	mockUsers := new(MockUserRepository)
	mockPosts := new(MockPostRepository)
	s := &Server{userRepo: mockUsers, postRepo: mockPosts}
	s.tokenService = service.NewTokenService("test-secret-that-is-long-enough!")
	s.userService = service.NewUserService(mockUsers, mockPosts)

	app.Get("/users/:id/profile", s.GetUserProfile)

	mockUsers.On("GetByID", mock.Anything, uint(1)).Return(
		&models.User{ID: 1, Username: "testuser"}, nil)
	mockUsers.On("Stats", mock.Anything, uint(1)).Return(
		&models.ProfileStats{TotalPosts: 4, TotalComments: 9, TotalLikesGiven: 2}, nil)
	mockPosts.On("GetByUserID", mock.Anything, uint(1), mock.Anything, 0, uint(0)).Return(
		[]*models.Post{{ID: 8, UserID: 1, Title: "Latest"}}, nil)
	mockUsers.On("GetByID", mock.Anything, uint(42)).Return(
		nil, models.NewNotFoundError("User", 42))

	t.Run("Success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/1/profile", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var profile struct {
			User        models.User         `json:"user"`
			Stats       models.ProfileStats `json:"stats"`
			RecentPosts []models.Post       `json:"recent_posts"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&profile))

		assert.Equal(t, "testuser", profile.User.Username)
		assert.Equal(t, int64(4), profile.Stats.TotalPosts)
		assert.Equal(t, int64(9), profile.Stats.TotalComments)
		assert.Equal(t, int64(2), profile.Stats.TotalLikesGiven)
		assert.Len(t, profile.RecentPosts, 1)
	})

	t.Run("Not Found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/42/profile", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/abc/profile", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdateMyProfile(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		updateErr      error
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           map[string]string{"username": "newname", "email": "new@example.com"},
			expectedStatus: http.StatusOK,
		},
		{
			// A concurrent registration can still take the name; the unique
			// constraint surfaces as a conflict.
			name:           "Username Taken",
			body:           map[string]string{"username": "squatter"},
			updateErr:      models.NewConflictError("Username already taken"),
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Invalid Username",
			body:           map[string]string{"username": "x"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			mockUsers := new(MockUserRepository)
			s := &Server{userRepo: mockUsers}
			s.userService = service.NewUserService(mockUsers, nil)

			app.Use(func(c *fiber.Ctx) error {
				c.Locals("userID", uint(1))
				return c.Next()
			})
			app.Put("/users/me", s.UpdateMyProfile)

			mockUsers.On("GetByID", mock.Anything, uint(1)).Return(
				&models.User{ID: 1, Username: "oldname", Email: "old@example.com"}, nil)
			mockUsers.On("Update", mock.Anything, mock.Anything).Return(tt.updateErr)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPut, "/users/me", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestUpdateMyPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("OldPassword1"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           map[string]string{"old_password": "OldPassword1", "new_password": "NewPassword2"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Wrong Old Password",
			body:           map[string]string{"old_password": "Guess12345", "new_password": "NewPassword2"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Weak New Password",
			body:           map[string]string{"old_password": "OldPassword1", "new_password": "short"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			mockUsers := new(MockUserRepository)
			s := &Server{userRepo: mockUsers}
			s.userService = service.NewUserService(mockUsers, nil)

			app.Use(func(c *fiber.Ctx) error {
				c.Locals("userID", uint(1))
				return c.Next()
			})
			app.Put("/users/me/password", s.UpdateMyPassword)

			mockUsers.On("GetByID", mock.Anything, uint(1)).Return(
				&models.User{ID: 1, Username: "bob", Password: string(hash)}, nil)
			mockUsers.On("Update", mock.Anything, mock.Anything).Return(nil)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPut, "/users/me/password", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
