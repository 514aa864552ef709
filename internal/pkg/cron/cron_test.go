package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/tgbot_go_server/internal/repository"
	"github.com/qs3c/tgbot_go_server/internal/testutil"
)

func TestService_RunNow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	subRepo := repository.NewSubscriptionRepository(db)
	service := NewService(subRepo)

	testutil.TestSubscription(t, db, 100, testutil.WithEndDate(time.Now().Add(-time.Hour)))
	testutil.TestSubscription(t, db, 200, testutil.WithEndDate(time.Now().Add(24*time.Hour)))

	affected, err := service.RunNow()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// 有效订阅不受影响
	_, err = subRepo.GetActiveByUser(200)
	assert.NoError(t, err)
}

func TestService_StartStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	service := NewService(repository.NewSubscriptionRepository(db))

	service.Start()
	service.Stop()
}
