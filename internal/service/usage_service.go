package service

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/repository"
)

// UsageService 每用户每动作每天的使用计数。
// 读失败按 0 处理（fail-open），写失败只记日志——配额统计故障不能拖垮功能本身
type UsageService struct {
	usageRepo *repository.UsageRepository
}

func NewUsageService(usageRepo *repository.UsageRepository) *UsageService {
	return &UsageService{usageRepo: usageRepo}
}

// GetTodayUsage 今日用量；同一天的重复行按求和口径统计
func (s *UsageService) GetTodayUsage(userID int64, action model.ActionType) int {
	total, err := s.usageRepo.SumToday(userID, action)
	if err != nil {
		log.Printf("Failed to get usage stats for user %d: %v", userID, err)
		return 0
	}
	return total
}

// RecordUsage 记录一次使用：今日已有记录则自增，否则新建。
// 读取与写入之间没有原子性保证，同日并发可能少计或产生重复行，
// 业务上可接受（见 GetTodayUsage 的求和口径）
func (s *UsageService) RecordUsage(userID int64, action model.ActionType) {
	existing, err := s.usageRepo.GetTodayRecord(userID, action)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to read usage record for user %d: %v", userID, err)
			return
		}
		stat := &model.UsageStat{
			UserID:     userID,
			ActionType: action,
			Count:      1,
		}
		if err := s.usageRepo.Create(stat); err != nil {
			log.Printf("Failed to create usage record for user %d: %v", userID, err)
		}
		return
	}

	if err := s.usageRepo.IncrementCount(existing.ID); err != nil {
		log.Printf("Failed to increment usage for user %d: %v", userID, err)
	}
}
