package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/tgbot_go_server/internal/pkg/response"
	"github.com/qs3c/tgbot_go_server/internal/repository"
	"github.com/qs3c/tgbot_go_server/internal/service"
)

// SubscriptionHandler 管理后台的订阅与用量查询
type SubscriptionHandler struct {
	subSvc   *service.SubscriptionService
	subRepo  *repository.SubscriptionRepository
	userRepo *repository.UserRepository
	genRepo  *repository.GenerationRepository
}

func NewSubscriptionHandler(
	subSvc *service.SubscriptionService,
	subRepo *repository.SubscriptionRepository,
	userRepo *repository.UserRepository,
	genRepo *repository.GenerationRepository,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		subSvc:   subSvc,
		subRepo:  subRepo,
		userRepo: userRepo,
		genRepo:  genRepo,
	}
}

// GetUserSubscription 查询指定用户的订阅与今日用量
// GET /api/v1/users/:telegram_id/subscription
func (h *SubscriptionHandler) GetUserSubscription(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户 ID")
		return
	}

	response.Success(c, h.subSvc.GetSubscriptionInfo(telegramID))
}

// ListUserSubscriptions 查询指定用户的全部订阅记录
// GET /api/v1/users/:telegram_id/subscriptions
func (h *SubscriptionHandler) ListUserSubscriptions(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户 ID")
		return
	}

	subs, err := h.subRepo.ListByUser(telegramID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, subs)
}

// Stats 运营概览：用户数、任务量
// GET /api/v1/stats
func (h *SubscriptionHandler) Stats(c *gin.Context) {
	userCount, err := h.userRepo.Count()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	queued, _ := h.genRepo.CountByStatus("queued")
	processing, _ := h.genRepo.CountByStatus("processing")
	completed, _ := h.genRepo.CountByStatus("completed")
	failed, _ := h.genRepo.CountByStatus("failed")

	response.Success(c, gin.H{
		"user_count": userCount,
		"jobs": gin.H{
			"queued":     queued,
			"processing": processing,
			"completed":  completed,
			"failed":     failed,
		},
	})
}
