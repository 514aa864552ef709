package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/pkg/response"
)

type PlanHandler struct{}

func NewPlanHandler() *PlanHandler {
	return &PlanHandler{}
}

// List 付费套餐列表
// GET /api/v1/plans
func (h *PlanHandler) List(c *gin.Context) {
	response.Success(c, model.ListPaidPlans())
}
