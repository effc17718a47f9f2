package users

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/booklend/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_CreateUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.CreateUser("reader", "reader@example.com", "hash")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "reader", user.Username)
	assert.Equal(t, "reader@example.com", user.Email)
	assert.Equal(t, "hash", user.PasswordHash)
}

func TestRepository_CreateUser_DuplicateUsername(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.CreateUser("reader", "reader@example.com", "hash")
	require.NoError(t, err)

	_, err = repo.CreateUser("reader", "other@example.com", "hash")
	assert.Error(t, err)
}

func TestRepository_GetUserByLogin(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.CreateUser("reader", "reader@example.com", "hash")
	require.NoError(t, err)

	byName, err := repo.GetUserByLogin("reader")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := repo.GetUserByLogin("reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestRepository_GetUserByLogin_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetUserByLogin("nobody")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_GetUserByID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.CreateUser("reader", "reader@example.com", "hash")
	require.NoError(t, err)

	user, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader", user.Username)

	_, err = repo.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Exists(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	exists, err := repo.Exists("reader", "reader@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.CreateUser("reader", "reader@example.com", "hash")
	require.NoError(t, err)

	exists, err = repo.Exists("someone", "reader@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRepository_LoginTracking(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.CreateUser("reader", "reader@example.com", "hash")
	require.NoError(t, err)

	lockedUntil := time.Now().Add(time.Hour)
	require.NoError(t, repo.RecordFailedLogin(created.ID, 5, &lockedUntil))

	user, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, user.FailedLoginCount)
	require.NotNil(t, user.LockedUntil)

	require.NoError(t, repo.RecordSuccessfulLogin(created.ID, time.Now()))

	user, err = repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, user.FailedLoginCount)
	assert.Nil(t, user.LockedUntil)
	assert.NotNil(t, user.LastLoginAt)
}

func TestRepository_Count(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = repo.CreateUser("reader", "reader@example.com", "hash")
	require.NoError(t, err)

	count, err = repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
