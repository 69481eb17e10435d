package repository

import (
	"context"
	"testing"

	"quorum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_GetByID_Counters(t *testing.T) {
	resetTables(t)
	repo := NewPostRepository(testDB)
	ctx := context.Background()

	author := createTestUser(t)
	reader := createTestUser(t)
	post := createTestPost(t, author.ID)

	createTestComment(t, reader.ID, post.ID)
	createTestComment(t, author.ID, post.ID)
	require.NoError(t, testDB.Create(&models.Like{
		UserID: reader.ID, TargetType: models.TargetTypePost, TargetID: post.ID,
	}).Error)

	t.Run("anonymous reader", func(t *testing.T) {
		got, err := repo.GetByID(ctx, post.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.CommentsCount)
		assert.Equal(t, int64(1), got.LikesCount)
		assert.False(t, got.Liked)
		assert.Equal(t, author.Username, got.User.Username)
	})

	t.Run("reader who liked", func(t *testing.T) {
		got, err := repo.GetByID(ctx, post.ID, reader.ID)
		require.NoError(t, err)
		assert.True(t, got.Liked)
	})

	t.Run("author who did not like", func(t *testing.T) {
		got, err := repo.GetByID(ctx, post.ID, author.ID)
		require.NoError(t, err)
		assert.False(t, got.Liked)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999999, 0)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestPostRepository_List_NewestFirst(t *testing.T) {
	resetTables(t)
	repo := NewPostRepository(testDB)
	ctx := context.Background()

	author := createTestUser(t)
	older := createTestPost(t, author.ID)
	newer := createTestPost(t, author.ID)

	posts, err := repo.List(ctx, 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	t.Run("offset past end returns empty", func(t *testing.T) {
		posts, err := repo.List(ctx, 10, 100, 0)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})
}

func TestPostRepository_Search_CaseInsensitive(t *testing.T) {
	resetTables(t)
	repo := NewPostRepository(testDB)
	ctx := context.Background()

	author := createTestUser(t)

	matching := &models.Post{Title: "Gardening for Beginners", Content: "How to start a garden.", UserID: author.ID}
	require.NoError(t, testDB.Create(matching).Error)
	bodyMatch := &models.Post{Title: "Weekend projects", Content: "I spent Sunday GARDENING out back.", UserID: author.ID}
	require.NoError(t, testDB.Create(bodyMatch).Error)
	unrelated := &models.Post{Title: "Sourdough notes", Content: "Starter feeding schedule.", UserID: author.ID}
	require.NoError(t, testDB.Create(unrelated).Error)

	posts, err := repo.Search(ctx, "gardening", 50, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	// Newest match first.
	assert.Equal(t, bodyMatch.ID, posts[0].ID)
	assert.Equal(t, matching.ID, posts[1].ID)

	total, err := repo.SearchCount(ctx, "gardening")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	none, err := repo.Search(ctx, "zebra", 50, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostRepository_Delete_Cascades(t *testing.T) {
	resetTables(t)
	repo := NewPostRepository(testDB)
	ctx := context.Background()

	author := createTestUser(t)
	reader := createTestUser(t)

	doomed := createTestPost(t, author.ID)
	survivor := createTestPost(t, author.ID)

	doomedComment := createTestComment(t, reader.ID, doomed.ID)
	survivorComment := createTestComment(t, reader.ID, survivor.ID)

	likes := []models.Like{
		{UserID: reader.ID, TargetType: models.TargetTypePost, TargetID: doomed.ID},
		{UserID: reader.ID, TargetType: models.TargetTypeComment, TargetID: doomedComment.ID},
		{UserID: author.ID, TargetType: models.TargetTypeComment, TargetID: survivorComment.ID},
	}
	for i := range likes {
		require.NoError(t, testDB.Create(&likes[i]).Error)
	}

	require.NoError(t, repo.Delete(ctx, doomed.ID))

	_, err := repo.GetByID(ctx, doomed.ID, 0)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	var commentCount int64
	testDB.Model(&models.Comment{}).Where("post_id = ?", doomed.ID).Count(&commentCount)
	assert.Zero(t, commentCount)

	var likeCount int64
	testDB.Model(&models.Like{}).Count(&likeCount)
	assert.Equal(t, int64(1), likeCount, "only the like on the surviving comment remains")

	got, err := repo.GetByID(ctx, survivor.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CommentsCount)
}

func TestPostRepository_GetByUserID(t *testing.T) {
	resetTables(t)
	repo := NewPostRepository(testDB)
	ctx := context.Background()

	author := createTestUser(t)
	other := createTestUser(t)
	createTestPost(t, author.ID)
	createTestPost(t, author.ID)
	createTestPost(t, other.ID)

	posts, err := repo.GetByUserID(ctx, author.ID, 10, 0, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, author.ID, p.UserID)
	}
}
