package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/testutil"
)

func TestUserRepository_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	t.Run("insert new user", func(t *testing.T) {
		user := &model.User{
			TelegramID: 111,
			Username:   "alice",
			FirstName:  "Alice",
		}
		require.NoError(t, repo.Upsert(user))

		got, err := repo.GetByTelegramID(111)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.False(t, got.LastSeen.IsZero())
	})

	t.Run("update existing user by telegram id", func(t *testing.T) {
		require.NoError(t, repo.Upsert(&model.User{
			TelegramID: 111,
			Username:   "alice_renamed",
			FirstName:  "Alice",
		}))

		got, err := repo.GetByTelegramID(111)
		require.NoError(t, err)
		assert.Equal(t, "alice_renamed", got.Username)

		count, err := repo.Count()
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestUserRepository_GetByTelegramID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	_, err := repo.GetByTelegramID(999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_Count(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	testutil.TestUser(t, db, testutil.WithTelegramID(1))
	testutil.TestUser(t, db, testutil.WithTelegramID(2))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
