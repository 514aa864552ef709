package service

import (
	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/model/dto"
)

// QuotaService 配额闸门：组合当前套餐与今日用量得出放行决策，自身不做任何 I/O。
// 存储故障经由下层的 fail-open 语义自然表现为"放行"
type QuotaService struct {
	subSvc   *SubscriptionService
	usageSvc *UsageService
}

func NewQuotaService(subSvc *SubscriptionService, usageSvc *UsageService) *QuotaService {
	return &QuotaService{
		subSvc:   subSvc,
		usageSvc: usageSvc,
	}
}

// CheckUsageLimit 检查某动作今日是否还可使用
func (s *QuotaService) CheckUsageLimit(userID int64, action model.ActionType) dto.EntitlementDecision {
	plan := s.subSvc.GetCurrentPlan(userID)
	limit := plan.Limits.Limit(action)
	usage := s.usageSvc.GetTodayUsage(userID, action)

	remaining := limit - usage
	if remaining < 0 {
		remaining = 0
	}

	return dto.EntitlementDecision{
		Allowed:   usage < limit,
		Remaining: remaining,
		Limit:     limit,
	}
}

// RecordUsage 放行后记账，仅在 Allowed 为 true 时调用
func (s *QuotaService) RecordUsage(userID int64, action model.ActionType) {
	s.usageSvc.RecordUsage(userID, action)
}
