package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/repository"
	"github.com/qs3c/tgbot_go_server/internal/testutil"
)

func setupQuotaService(t *testing.T) (*QuotaService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	usageSvc := NewUsageService(repository.NewUsageRepository(db))
	subSvc := NewSubscriptionService(repository.NewSubscriptionRepository(db), usageSvc)
	service := NewQuotaService(subSvc, usageSvc)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, db, cleanup
}

func TestQuotaService_CheckUsageLimit_FreePlan(t *testing.T) {
	service, _, cleanup := setupQuotaService(t)
	defer cleanup()

	t.Run("fresh user allowed", func(t *testing.T) {
		decision := service.CheckUsageLimit(100, model.ActionImageGenerations)

		assert.True(t, decision.Allowed)
		assert.Equal(t, 1, decision.Remaining)
		assert.Equal(t, 1, decision.Limit)
	})

	t.Run("denied once the limit is reached", func(t *testing.T) {
		service.RecordUsage(100, model.ActionImageGenerations)

		decision := service.CheckUsageLimit(100, model.ActionImageGenerations)
		assert.False(t, decision.Allowed)
		assert.Equal(t, 0, decision.Remaining)
		assert.Equal(t, 1, decision.Limit)
	})

	t.Run("remaining never negative", func(t *testing.T) {
		// 即便历史数据超过上限，remaining 也压到 0
		service.RecordUsage(100, model.ActionImageGenerations)
		service.RecordUsage(100, model.ActionImageGenerations)

		decision := service.CheckUsageLimit(100, model.ActionImageGenerations)
		assert.False(t, decision.Allowed)
		assert.Equal(t, 0, decision.Remaining)
	})
}

func TestQuotaService_CheckUsageLimit_DailyGenerations(t *testing.T) {
	service, _, cleanup := setupQuotaService(t)
	defer cleanup()

	// free 套餐每日 3 次
	for i := 0; i < 3; i++ {
		decision := service.CheckUsageLimit(100, model.ActionDailyGenerations)
		assert.True(t, decision.Allowed, "use %d should be allowed", i+1)
		assert.Equal(t, 3-i, decision.Remaining)
		service.RecordUsage(100, model.ActionDailyGenerations)
	}

	decision := service.CheckUsageLimit(100, model.ActionDailyGenerations)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
}

func TestQuotaService_CheckUsageLimit_ProPlan(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()

	testutil.TestSubscription(t, db, 100, testutil.WithPlan(model.PlanPro, time.Now().AddDate(0, 0, 30)))

	// 大量使用后依旧放行
	testutil.TestUsage(t, db, 100, model.ActionDailyGenerations, 500)

	decision := service.CheckUsageLimit(100, model.ActionDailyGenerations)
	assert.True(t, decision.Allowed)
	assert.Equal(t, model.UnlimitedQuota, decision.Limit)
	assert.Equal(t, model.UnlimitedQuota-500, decision.Remaining)
}

func TestQuotaService_CheckUsageLimit_ExpiredSubscription(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()

	// 到期的 pro 订阅按 free 限额计算
	testutil.TestSubscription(t, db, 100, testutil.WithPlan(model.PlanPro, time.Now().Add(-time.Hour)))
	testutil.TestUsage(t, db, 100, model.ActionDailyGenerations, 3)

	decision := service.CheckUsageLimit(100, model.ActionDailyGenerations)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 3, decision.Limit)
}

func TestQuotaService_CheckUsageLimit_StoreFailureFailsOpen(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()

	// 存储故障时读路径降级：订阅按免费套餐、用量按 0 计，闸门照常放行
	require.NoError(t, db.Migrator().DropTable(&model.Subscription{}))
	require.NoError(t, db.Migrator().DropTable(&model.UsageStat{}))

	decision := service.CheckUsageLimit(100, model.ActionImageGenerations)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Limit)
	assert.Equal(t, 1, decision.Remaining)

	decision = service.CheckUsageLimit(100, model.ActionDailyGenerations)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 3, decision.Limit)
}

func TestQuotaService_UnknownActionHasZeroLimit(t *testing.T) {
	service, _, cleanup := setupQuotaService(t)
	defer cleanup()

	decision := service.CheckUsageLimit(100, model.ActionType("mystery"))
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Limit)
	assert.Equal(t, 0, decision.Remaining)
}
