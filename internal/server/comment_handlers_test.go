package server

import (
	"bytes"
	"context"
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
)

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Comment, error) {
	args := m.Called(ctx, id, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID uint, currentUserID uint) ([]*models.Comment, error) {
	args := m.Called(ctx, postID, currentUserID)
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// newCommentTestServer wires a Server around mocked comment and post
// repositories with a fixed admin answer.
func newCommentTestServer(comments *MockCommentRepository, posts *MockPostRepository, admin bool) *Server {
	s := &Server{commentRepo: comments, postRepo: posts}
	s.commentService = service.NewCommentService(comments, posts, func(ctx context.Context, userID uint) (bool, error) {
		return admin, nil
	})
	return s
}

func TestCreateComment(t *testing.T) {
	tests := []struct {
		name           string
		postID         string
		body           map[string]string
		mockSetup      func(comments *MockCommentRepository, posts *MockPostRepository)
		expectedStatus int
	}{
		{
			name:   "Success",
			postID: "5",
			body:   map[string]string{"content": "Nice write-up."},
			mockSetup: func(comments *MockCommentRepository, posts *MockPostRepository) {
				posts.On("GetByID", mock.Anything, uint(5), uint(0)).Return(
					&models.Post{ID: 5}, nil)
				comments.On("Create", mock.Anything, mock.Anything).Return(nil)
				comments.On("GetByID", mock.Anything, mock.Anything, uint(1)).Return(
					&models.Comment{ID: 1, PostID: 5, Content: "Nice write-up."}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:   "Post Missing",
			postID: "99",
			body:   map[string]string{"content": "Shouting into the void"},
			mockSetup: func(comments *MockCommentRepository, posts *MockPostRepository) {
				posts.On("GetByID", mock.Anything, uint(99), uint(0)).Return(
					nil, models.NewNotFoundError("Post", 99))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "Empty Content",
			postID: "5",
			body:   map[string]string{"content": "   "},
			mockSetup: func(comments *MockCommentRepository, posts *MockPostRepository) {
				posts.On("GetByID", mock.Anything, uint(5), uint(0)).Return(
					&models.Post{ID: 5}, nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			comments := new(MockCommentRepository)
			posts := new(MockPostRepository)
			s := newCommentTestServer(comments, posts, false)

			app.Use(func(c *fiber.Ctx) error {
				c.Locals("userID", uint(1))
				return c.Next()
			})
			app.Post("/posts/:id/comments", s.CreateComment)

			tt.mockSetup(comments, posts)
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/posts/"+tt.postID+"/comments", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestGetComments(t *testing.T) {
	app := fiber.New()
	comments := new(MockCommentRepository)
	posts := new(MockPostRepository)
	s := newCommentTestServer(comments, posts, false)

	app.Get("/posts/:id/comments", s.GetComments)

	posts.On("GetByID", mock.Anything, uint(5), uint(0)).Return(&models.Post{ID: 5}, nil)
	comments.On("ListByPost", mock.Anything, uint(5), uint(0)).Return(
		[]*models.Comment{
			{ID: 1, PostID: 5, Content: "First"},
			{ID: 2, PostID: 5, Content: "Second"},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/posts/5/comments", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "First", list[0].Content)
}

func TestUpdateComment_Ownership(t *testing.T) {
	comment := &models.Comment{ID: 3, PostID: 5, UserID: 1, Content: "Original"}

	t.Run("Non-Owner Forbidden", func(t *testing.T) {
		app := fiber.New()
		comments := new(MockCommentRepository)
		posts := new(MockPostRepository)
		s := newCommentTestServer(comments, posts, false)

		app.Use(func(c *fiber.Ctx) error {
			c.Locals("userID", uint(2))
			return c.Next()
		})
		app.Put("/comments/:id", s.UpdateComment)

		comments.On("GetByID", mock.Anything, uint(3), uint(2)).Return(comment, nil)

		body, _ := json.Marshal(map[string]string{"content": "Hijacked"})
		req := httptest.NewRequest(http.MethodPut, "/comments/3", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		comments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Owner Can Update", func(t *testing.T) {
		app := fiber.New()
		comments := new(MockCommentRepository)
		posts := new(MockPostRepository)
		s := newCommentTestServer(comments, posts, false)

		app.Use(func(c *fiber.Ctx) error {
			c.Locals("userID", uint(1))
			return c.Next()
		})
		app.Put("/comments/:id", s.UpdateComment)

		comments.On("GetByID", mock.Anything, uint(3), uint(1)).Return(comment, nil)
		comments.On("Update", mock.Anything, mock.Anything).Return(nil)

		body, _ := json.Marshal(map[string]string{"content": "Edited"})
		req := httptest.NewRequest(http.MethodPut, "/comments/3", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestDeleteComment_AdminOverride(t *testing.T) {
	app := fiber.New()
	comments := new(MockCommentRepository)
	posts := new(MockPostRepository)
	s := newCommentTestServer(comments, posts, true)

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(9))
		return c.Next()
	})
	app.Delete("/comments/:id", s.DeleteComment)

	comments.On("GetByID", mock.Anything, uint(3), uint(9)).Return(
		&models.Comment{ID: 3, PostID: 5, UserID: 1}, nil)
	comments.On("Delete", mock.Anything, uint(3)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/comments/3", nil)
	resp, _ := app.Test(req)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	comments.AssertCalled(t, "Delete", mock.Anything, uint(3))
}
