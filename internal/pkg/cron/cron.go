package cron

import (
	"log"
	"time"

	"github.com/qs3c/tgbot_go_server/internal/repository"
)

// Service 周期任务：每日零点批量下线到期订阅
type Service struct {
	subRepo  *repository.SubscriptionRepository
	stopChan chan struct{}
}

func NewService(subRepo *repository.SubscriptionRepository) *Service {
	return &Service{
		subRepo:  subRepo,
		stopChan: make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runExpirySweep()
	log.Println("Cron service started (subscription expiry sweep)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runExpirySweep 每日零点执行到期订阅清扫
func (s *Service) runExpirySweep() {
	now := time.Now()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.sweepExpired()
			timer.Reset(24 * time.Hour)
		}
	}
}

// sweepExpired 下线所有已到期但仍标记为活跃的订阅
func (s *Service) sweepExpired() {
	log.Println("Starting subscription expiry sweep...")
	affected, err := s.subRepo.DeactivateExpired(time.Now())
	if err != nil {
		log.Printf("Failed to sweep expired subscriptions: %v", err)
		return
	}
	log.Printf("Subscription expiry sweep completed, deactivated: %d", affected)
}

// RunNow 立即执行清扫（用于测试或手动触发）
func (s *Service) RunNow() (int64, error) {
	log.Println("Manual expiry sweep triggered...")
	return s.subRepo.DeactivateExpired(time.Now())
}
