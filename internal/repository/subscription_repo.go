package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/tgbot_go_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

// GetActiveByUser 查找用户当前激活的订阅
func (r *SubscriptionRepository) GetActiveByUser(userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByUser 返回用户全部订阅记录，新的在前
func (r *SubscriptionRepository) ListByUser(userID int64) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// DeactivateActive 仅注销当前激活的订阅，重复调用无副作用
func (r *SubscriptionRepository) DeactivateActive(userID int64) error {
	return r.db.Model(&model.Subscription{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}

// DeactivateAll 注销用户全部订阅，用于新购时修复可能的多激活异常
func (r *SubscriptionRepository) DeactivateAll(userID int64) error {
	return r.db.Model(&model.Subscription{}).
		Where("user_id = ?", userID).
		Update("is_active", false).Error
}

// DeactivateExpired 批量注销已到期的订阅，返回影响行数
func (r *SubscriptionRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&model.Subscription{}).
		Where("is_active = ? AND end_date <= ?", true, now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
