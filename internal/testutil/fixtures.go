package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/tgbot_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	user := &model.User{
		TelegramID: time.Now().UnixNano() % 1000000000,
		Username:   fmt.Sprintf("testuser_%d", time.Now().UnixNano()%10000),
		FirstName:  "Test",
		LastSeen:   time.Now(),
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithTelegramID 设置 Telegram ID
func WithTelegramID(id int64) func(*model.User) {
	return func(u *model.User) {
		u.TelegramID = id
	}
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// TestSubscription 创建测试订阅，默认 basic 套餐剩 7 天
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	now := time.Now()
	sub := &model.Subscription{
		UserID:        userID,
		PlanID:        model.PlanBasic,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, 7),
		IsActive:      true,
		TransactionID: fmt.Sprintf("tx_%d", time.Now().UnixNano()),
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithPlan 设置套餐与到期时间
func WithPlan(planID string, endDate time.Time) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.PlanID = planID
		s.EndDate = endDate
	}
}

// WithInactive 标记为已注销
func WithInactive() func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.IsActive = false
	}
}

// WithEndDate 设置到期时间
func WithEndDate(endDate time.Time) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.EndDate = endDate
	}
}

// TestUsage 创建今日用量记录
func TestUsage(t *testing.T, db *gorm.DB, userID int64, action model.ActionType, count int) *model.UsageStat {
	t.Helper()

	stat := &model.UsageStat{
		UserID:     userID,
		ActionType: action,
		Count:      count,
	}

	if err := db.Create(stat).Error; err != nil {
		t.Fatalf("Failed to create test usage: %v", err)
	}

	return stat
}
