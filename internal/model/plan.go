package model

// 套餐 ID
const (
	PlanFree    = "free"
	PlanBasic   = "basic"
	PlanPro     = "pro"
	PlanPremium = "premium"
)

// UnlimitedQuota 表示实际上不设限的每日配额
const UnlimitedQuota = 999999

// PlanLimits 各计费动作的每日上限
type PlanLimits struct {
	DailyGenerations int `json:"daily_generations"`
	ImageGenerations int `json:"image_generations"`
	VoiceAnalysis    int `json:"voice_analysis"`
}

// Limit 返回指定动作的每日上限
func (l PlanLimits) Limit(action ActionType) int {
	switch action {
	case ActionDailyGenerations:
		return l.DailyGenerations
	case ActionImageGenerations:
		return l.ImageGenerations
	case ActionVoiceAnalysis:
		return l.VoiceAnalysis
	}
	return 0
}

// PlanDefinition 订阅套餐定义，编译期固定，进程内只读
type PlanDefinition struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       int        `json:"price"`    // Telegram Stars
	Duration    int        `json:"duration"` // 天数，0 表示永久
	Features    []string   `json:"features"`
	Limits      PlanLimits `json:"limits"`
}

// plans 按展示顺序排列，free 在首位
var plans = []PlanDefinition{
	{
		ID:          PlanFree,
		Name:        "🆓 免费版",
		Description: "基础功能，适合试用",
		Price:       0,
		Duration:    0,
		Features: []string{
			"✅ 每日 3 次生成",
			"✅ 基础 AI 分析",
		},
		Limits: PlanLimits{
			DailyGenerations: 3,
			ImageGenerations: 1,
			VoiceAnalysis:    2,
		},
	},
	{
		ID:          PlanBasic,
		Name:        "⭐ 基础版",
		Description: "适合日常使用",
		Price:       50,
		Duration:    7,
		Features: []string{
			"✅ 每日 50 次生成",
			"✅ 图片和视频分析",
			"✅ 优先处理",
		},
		Limits: PlanLimits{
			DailyGenerations: 50,
			ImageGenerations: 20,
			VoiceAnalysis:    30,
		},
	},
	{
		ID:          PlanPro,
		Name:        "💎 专业版",
		Description: "面向专业用户",
		Price:       150,
		Duration:    30,
		Features: []string{
			"✅ 无限次生成",
			"✅ 全部 AI 功能",
			"✅ 最高优先级",
			"✅ 专属模型",
		},
		Limits: PlanLimits{
			DailyGenerations: UnlimitedQuota,
			ImageGenerations: UnlimitedQuota,
			VoiceAnalysis:    UnlimitedQuota,
		},
	},
	{
		ID:          PlanPremium,
		Name:        "👑 旗舰版",
		Description: "一年内全部功能",
		Price:       500,
		Duration:    365,
		Features: []string{
			"✅ 无限次生成",
			"✅ 全部 AI 功能",
			"✅ VIP 支持",
			"✅ 新功能抢先体验",
			"✅ 专属提示词",
		},
		Limits: PlanLimits{
			DailyGenerations: UnlimitedQuota,
			ImageGenerations: UnlimitedQuota,
			VoiceAnalysis:    UnlimitedQuota,
		},
	},
}

// GetPlan 按 ID 查找套餐，不存在时返回 nil
func GetPlan(id string) *PlanDefinition {
	for i := range plans {
		if plans[i].ID == id {
			return &plans[i]
		}
	}
	return nil
}

// FreePlan 返回免费套餐
func FreePlan() *PlanDefinition {
	return GetPlan(PlanFree)
}

// ListPaidPlans 返回全部付费套餐，保持展示顺序
func ListPaidPlans() []PlanDefinition {
	result := make([]PlanDefinition, 0, len(plans)-1)
	for _, p := range plans {
		if p.ID != PlanFree {
			result = append(result, p)
		}
	}
	return result
}
