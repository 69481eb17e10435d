package bootstrap

import (
	"testing"

	"quorum/internal/config"
	"quorum/internal/database"
	"quorum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestEnsureAdmin_SeedsEmptyDatabase(t *testing.T) {
	db := openTestDB(t)
	cfg := &config.Config{
		AdminUsername: "root",
		AdminEmail:    "Root@Example.com",
		AdminPassword: "ChangeMe123",
	}

	require.NoError(t, EnsureAdmin(cfg, db))

	var admin models.User
	require.NoError(t, db.First(&admin).Error)
	assert.Equal(t, "root", admin.Username)
	assert.Equal(t, "root@example.com", admin.Email)
	assert.True(t, admin.IsAdmin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("ChangeMe123")))
}

func TestEnsureAdmin_LeavesExistingUsersAlone(t *testing.T) {
	db := openTestDB(t)
	existing := models.User{Username: "alice", Email: "alice@example.com", Password: "x", IsAdmin: false}
	require.NoError(t, db.Create(&existing).Error)

	cfg := &config.Config{AdminUsername: "root", AdminPassword: "ChangeMe123"}
	require.NoError(t, EnsureAdmin(cfg, db))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureAdmin_RequiresPassword(t *testing.T) {
	db := openTestDB(t)
	cfg := &config.Config{AdminUsername: "root", AdminPassword: ""}

	err := EnsureAdmin(cfg, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD")
}

func TestEnsureAdmin_DefaultsNames(t *testing.T) {
	db := openTestDB(t)
	cfg := &config.Config{AdminPassword: "ChangeMe123"}

	require.NoError(t, EnsureAdmin(cfg, db))

	var admin models.User
	require.NoError(t, db.First(&admin).Error)
	assert.Equal(t, "admin", admin.Username)
	assert.Equal(t, "admin@quorum.local", admin.Email)
}
