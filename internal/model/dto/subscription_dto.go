package dto

import (
	"time"
)

// EntitlementDecision 配额检查结果，每次检查即时计算，不落库
type EntitlementDecision struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
	Limit     int  `json:"limit"`
}

// UsagePair 单个动作的今日用量与上限
type UsagePair struct {
	Action string `json:"action"`
	Used   int    `json:"used"`
	Limit  int    `json:"limit"`
}

// SubscriptionInfo 订阅展示数据，调用方据此拼接文案
type SubscriptionInfo struct {
	PlanID          string      `json:"plan_id"`
	PlanName        string      `json:"plan_name"`
	PlanDescription string      `json:"plan_description"`
	Features        []string    `json:"features"`
	HasSubscription bool        `json:"has_subscription"`
	DaysLeft        int         `json:"days_left,omitempty"`
	EndDate         *time.Time  `json:"end_date,omitempty"`
	Usage           []UsagePair `json:"usage"`
}
