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

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	args := m.Called(ctx, id, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	args := m.Called(ctx, userID, limit, offset, currentUserID)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	args := m.Called(ctx, limit, offset, currentUserID)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) Search(ctx context.Context, query string, limit int, currentUserID uint) ([]*models.Post, error) {
	args := m.Called(ctx, query, limit, currentUserID)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) SearchCount(ctx context.Context, query string) (int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// newPostTestServer wires a Server around the mocked post repository. The
// admin lookup is injected so ownership tests can flip it per case.
func newPostTestServer(mockRepo *MockPostRepository, admin bool) *Server {
	s := &Server{postRepo: mockRepo}
	s.postService = service.NewPostService(mockRepo, func(ctx context.Context, userID uint) (bool, error) {
		return admin, nil
	})
	return s
}

func TestCreatePost(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockPostRepository)
	s := newPostTestServer(mockRepo, false)

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		return c.Next()
	})
	app.Post("/posts", s.CreatePost)

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"title":   "New Post",
				"content": "Hello world, this is a post.",
			},
			mockSetup: func() {
				mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
				mockRepo.On("GetByID", mock.Anything, mock.Anything, uint(1)).Return(
					&models.Post{ID: 1, Title: "New Post"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Missing Title",
			body: map[string]string{
				"content": "Orphan content without a title",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Whitespace Content",
			body: map[string]string{
				"title":   "Blank body",
				"content": "     ",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestGetPosts_PaginationEnvelope(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockPostRepository)
	s := newPostTestServer(mockRepo, false)

	app.Get("/posts", s.GetPosts)

	mockRepo.On("List", mock.Anything, 10, 10, uint(0)).Return(
		[]*models.Post{{ID: 11, Title: "Eleventh"}}, nil)
	mockRepo.On("Count", mock.Anything).Return(int64(11), nil)

	req := httptest.NewRequest(http.MethodGet, "/posts?page=2&per_page=10", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Posts      []models.Post `json:"posts"`
		Total      int64         `json:"total"`
		Page       int           `json:"page"`
		PerPage    int           `json:"per_page"`
		TotalPages int64         `json:"total_pages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Len(t, body.Posts, 1)
	assert.Equal(t, int64(11), body.Total)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 10, body.PerPage)
	assert.Equal(t, int64(2), body.TotalPages)
}

func TestGetPosts_EmptyPageIsNotNull(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockPostRepository)
	s := newPostTestServer(mockRepo, false)

	app.Get("/posts", s.GetPosts)

	mockRepo.On("List", mock.Anything, 10, 0, uint(0)).Return([]*models.Post(nil), nil)
	mockRepo.On("Count", mock.Anything).Return(int64(0), nil)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.JSONEq(t, "[]", string(body["posts"]))
}

func TestGetPost(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockPostRepository)
	s := newPostTestServer(mockRepo, false)

	app.Get("/posts/:id", s.GetPost)

	mockRepo.On("GetByID", mock.Anything, uint(5), uint(0)).Return(
		&models.Post{ID: 5, Title: "Found"}, nil)
	mockRepo.On("GetByID", mock.Anything, uint(99), uint(0)).Return(
		nil, models.NewNotFoundError("Post", 99))

	t.Run("Found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts/5", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Not Found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts/99", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestSearchPosts(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockPostRepository)
	s := newPostTestServer(mockRepo, false)

	app.Get("/posts/search", s.SearchPosts)

	mockRepo.On("Search", mock.Anything, "gardening", service.SearchResultLimit, uint(0)).Return(
		[]*models.Post{{ID: 1, Title: "Gardening tips"}}, nil)
	mockRepo.On("SearchCount", mock.Anything, "gardening").Return(int64(1), nil)

	t.Run("Success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts/search?q=gardening", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.SearchResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Len(t, result.Posts, 1)
		assert.Equal(t, int64(1), result.Total)
		assert.Equal(t, "gardening", result.Query)
	})

	t.Run("Query Too Short", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts/search?q=a", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeletePost_Ownership(t *testing.T) {
	post := &models.Post{ID: 3, UserID: 1, Title: "Mine"}

	t.Run("Owner Can Delete", func(t *testing.T) {
		app := fiber.New()
		mockRepo := new(MockPostRepository)
		s := newPostTestServer(mockRepo, false)

		app.Use(func(c *fiber.Ctx) error {
			c.Locals("userID", uint(1))
			return c.Next()
		})
		app.Delete("/posts/:id", s.DeletePost)

		mockRepo.On("GetByID", mock.Anything, uint(3), uint(1)).Return(post, nil)
		mockRepo.On("Delete", mock.Anything, uint(3)).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/posts/3", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockRepo.AssertCalled(t, "Delete", mock.Anything, uint(3))
	})

	t.Run("Non-Owner Forbidden", func(t *testing.T) {
		app := fiber.New()
		mockRepo := new(MockPostRepository)
		s := newPostTestServer(mockRepo, false)

		app.Use(func(c *fiber.Ctx) error {
			c.Locals("userID", uint(2))
			return c.Next()
		})
		app.Delete("/posts/:id", s.DeletePost)

		mockRepo.On("GetByID", mock.Anything, uint(3), uint(2)).Return(post, nil)

		req := httptest.NewRequest(http.MethodDelete, "/posts/3", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, uint(3))
	})

	t.Run("Admin Can Delete", func(t *testing.T) {
		app := fiber.New()
		mockRepo := new(MockPostRepository)
		s := newPostTestServer(mockRepo, true)

		app.Use(func(c *fiber.Ctx) error {
			c.Locals("userID", uint(9))
			return c.Next()
		})
		app.Delete("/posts/:id", s.DeletePost)

		mockRepo.On("GetByID", mock.Anything, uint(3), uint(9)).Return(post, nil)
		mockRepo.On("Delete", mock.Anything, uint(3)).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/posts/3", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestUpdatePost_NotFound(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockPostRepository)
	s := newPostTestServer(mockRepo, false)

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		return c.Next()
	})
	app.Put("/posts/:id", s.UpdatePost)

	mockRepo.On("GetByID", mock.Anything, uint(404), uint(1)).Return(
		nil, models.NewNotFoundError("Post", 404))

	body, _ := json.Marshal(map[string]string{"title": "Renamed"})
	req := httptest.NewRequest(http.MethodPut, "/posts/404", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, _ := app.Test(req)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
