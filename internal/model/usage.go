package model

import (
	"time"
)

// ActionType 计费动作类型，封闭枚举，避免随意字符串绕过配额检查
type ActionType string

const (
	ActionDailyGenerations ActionType = "daily_generations"
	ActionImageGenerations ActionType = "image_generations"
	ActionVoiceAnalysis    ActionType = "voice_analysis"
)

// ParseActionType 校验动作类型
func ParseActionType(s string) (ActionType, bool) {
	switch ActionType(s) {
	case ActionDailyGenerations, ActionImageGenerations, ActionVoiceAnalysis:
		return ActionType(s), true
	}
	return "", false
}

// AllActionTypes 全部计费动作，按展示顺序
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionDailyGenerations,
		ActionImageGenerations,
		ActionVoiceAnalysis,
	}
}

// UsageStat 每用户每动作每天一行的使用计数
type UsageStat struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	UserID     int64      `gorm:"not null;index:idx_usage_lookup" json:"user_id"`
	ActionType ActionType `gorm:"size:30;not null;index:idx_usage_lookup" json:"action_type"`
	Count      int        `gorm:"not null;default:1" json:"count"`
	CreatedAt  time.Time  `gorm:"not null;index:idx_usage_lookup" json:"created_at"`
}

func (UsageStat) TableName() string {
	return "usage_stats"
}
