package service

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/model/dto"
	"github.com/qs3c/tgbot_go_server/internal/repository"
)

// SubscriptionService 订阅生命周期管理。
// 读路径遇到存储错误一律降级为"无订阅/免费套餐"，写路径返回 false，
// 不向调用方抛错（可用性优先于严格计费，这是刻意的设计决策）。
type SubscriptionService struct {
	subRepo  *repository.SubscriptionRepository
	usageSvc *UsageService
}

func NewSubscriptionService(subRepo *repository.SubscriptionRepository, usageSvc *UsageService) *SubscriptionService {
	return &SubscriptionService{
		subRepo:  subRepo,
		usageSvc: usageSvc,
	}
}

// GetActiveSubscription 获取用户当前激活订阅，无记录或查询失败时返回 nil
func (s *SubscriptionService) GetActiveSubscription(userID int64) *model.Subscription {
	sub, err := s.subRepo.GetActiveByUser(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to get subscription for user %d: %v", userID, err)
		}
		return nil
	}
	return sub
}

// IsActive 判断订阅是否仍然有效；已到期的订阅顺带注销。
// 边界约定：end_date 恰好等于当前时刻视为已过期
func (s *SubscriptionService) IsActive(userID int64) bool {
	sub := s.GetActiveSubscription(userID)
	if sub == nil {
		return false
	}

	if !time.Now().Before(sub.EndDate) {
		s.deactivate(userID)
		return false
	}

	return sub.IsActive
}

// GetCurrentPlan 返回用户当前套餐，无有效订阅或套餐 ID 未知时回退到免费版
func (s *SubscriptionService) GetCurrentPlan(userID int64) *model.PlanDefinition {
	sub := s.GetActiveSubscription(userID)
	if sub == nil || !sub.IsActive {
		return model.FreePlan()
	}

	if !time.Now().Before(sub.EndDate) {
		s.deactivate(userID)
		return model.FreePlan()
	}

	if plan := model.GetPlan(sub.PlanID); plan != nil {
		return plan
	}
	// 套餐 ID 与目录不一致（数据漂移），按免费处理
	return model.FreePlan()
}

// CreateSubscription 支付确认后创建订阅。
// 返回 false 表示"已收款但未开通"，调用方须提示用户联系客服
func (s *SubscriptionService) CreateSubscription(userID int64, planID, transactionID string) bool {
	plan := model.GetPlan(planID)
	if plan == nil {
		log.Printf("Plan not found: %s", planID)
		return false
	}

	// 注销该用户全部旧订阅，顺带修复可能存在的多激活行
	if err := s.subRepo.DeactivateAll(userID); err != nil {
		log.Printf("Failed to deactivate old subscriptions for user %d: %v", userID, err)
		return false
	}

	startDate := time.Now()
	endDate := startDate.AddDate(0, 0, plan.Duration)

	sub := &model.Subscription{
		UserID:        userID,
		PlanID:        planID,
		StartDate:     startDate,
		EndDate:       endDate,
		IsActive:      true,
		TransactionID: transactionID,
	}

	if err := s.subRepo.Create(sub); err != nil {
		log.Printf("Failed to create subscription for user %d: %v", userID, err)
		return false
	}

	log.Printf("Subscription created: user=%d, plan=%s, transaction=%s", userID, planID, transactionID)
	return true
}

// GetSubscriptionInfo 汇总订阅展示数据：套餐、剩余天数、今日各动作用量
func (s *SubscriptionService) GetSubscriptionInfo(userID int64) *dto.SubscriptionInfo {
	plan := s.GetCurrentPlan(userID)
	sub := s.GetActiveSubscription(userID)

	info := &dto.SubscriptionInfo{
		PlanID:          plan.ID,
		PlanName:        plan.Name,
		PlanDescription: plan.Description,
		Features:        plan.Features,
	}

	if sub != nil && sub.IsActive && time.Now().Before(sub.EndDate) {
		info.HasSubscription = true
		info.DaysLeft = daysLeft(sub.EndDate)
		info.EndDate = &sub.EndDate
	}

	for _, action := range model.AllActionTypes() {
		limit := plan.Limits.Limit(action)
		used := s.usageSvc.GetTodayUsage(userID, action)
		info.Usage = append(info.Usage, dto.UsagePair{
			Action: string(action),
			Used:   used,
			Limit:  limit,
		})
	}

	return info
}

// deactivate 注销当前激活订阅，幂等
func (s *SubscriptionService) deactivate(userID int64) {
	if err := s.subRepo.DeactivateActive(userID); err != nil {
		log.Printf("Failed to deactivate subscription for user %d: %v", userID, err)
		return
	}
	log.Printf("Subscription deactivated: user=%d", userID)
}

// daysLeft 剩余天数，不足一天按一天计
func daysLeft(endDate time.Time) int {
	remain := time.Until(endDate)
	days := int(remain / (24 * time.Hour))
	if remain%(24*time.Hour) > 0 {
		days++
	}
	return days
}
