package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/testutil"
)

func TestMessageRepository_ListByTelegramID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMessageRepository(db)

	for i, text := range []string{"first", "second", "third"} {
		msg := &model.Message{
			TelegramID: 100,
			Text:       text,
			CreatedAt:  time.Now().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.Create(msg))
	}
	require.NoError(t, repo.Create(&model.Message{TelegramID: 200, Text: "other user"}))

	msgs, err := repo.ListByTelegramID(100, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	// 新的在前
	assert.Equal(t, "third", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)
}

func TestMessageRepository_DeleteBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMessageRepository(db)

	old := &model.Message{
		TelegramID: 100,
		Text:       "ancient",
		CreatedAt:  time.Now().AddDate(0, 0, -100),
	}
	require.NoError(t, repo.Create(old))
	require.NoError(t, repo.Create(&model.Message{TelegramID: 100, Text: "recent"}))

	deleted, err := repo.DeleteBefore(time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	msgs, err := repo.ListByTelegramID(100, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "recent", msgs[0].Text)
}
