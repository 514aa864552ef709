package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/pkg/telegram"
)

const helpText = `可用命令：
/start - 开始使用
/help - 查看帮助
/profile - 查看个人信息
/subscribe - 查看订阅套餐
/subscription - 查看我的订阅
/imagine <描述> - AI 文生图
/ping - 测试连通性
/status - 查看服务状态

也可以直接发送：
📝 文字 - AI 对话
🖼 图片 - 图片分析（配文字可做图片编辑）
🎤 语音/音频 - 语音分析
🎬 视频 - 视频分析`

func (d *Dispatcher) handleStart(ctx context.Context, msg *telegram.IncomingMessage) {
	name := ""
	if msg.From != nil {
		name = msg.From.FirstName
	}
	text := fmt.Sprintf("你好 %s！👋\n\n我是 AI 助手机器人，可以聊天、生成图片、分析语音和视频。\n\n发送 /help 查看全部功能，发送 /subscribe 了解订阅套餐。", name)
	d.reply(ctx, msg.Chat.ID, text)
}

func (d *Dispatcher) handleHelp(ctx context.Context, msg *telegram.IncomingMessage) {
	d.reply(ctx, msg.Chat.ID, helpText)
}

func (d *Dispatcher) handlePing(ctx context.Context, msg *telegram.IncomingMessage) {
	d.reply(ctx, msg.Chat.ID, "pong 🏓")
}

// handleStatus 服务状态：运行时长、用户数、队列积压
func (d *Dispatcher) handleStatus(ctx context.Context, msg *telegram.IncomingMessage) {
	uptime := time.Since(d.startTime).Round(time.Second)

	userCount, err := d.userRepo.Count()
	if err != nil {
		log.Printf("Failed to count users: %v", err)
	}

	queueLen, err := d.queue.Length(ctx)
	if err != nil {
		log.Printf("Failed to get queue length: %v", err)
	}

	processing, err := d.genRepo.CountByStatus("processing")
	if err != nil {
		log.Printf("Failed to count processing jobs: %v", err)
	}

	text := fmt.Sprintf("📊 服务状态\n\n运行时长：%s\n注册用户：%d\n排队任务：%d\n处理中任务：%d", uptime, userCount, queueLen, processing)
	d.reply(ctx, msg.Chat.ID, text)
}

// handleProfile 个人信息：账号、套餐、今日用量
func (d *Dispatcher) handleProfile(ctx context.Context, msg *telegram.IncomingMessage) {
	if msg.From == nil {
		return
	}

	user, err := d.userSvc.GetUser(msg.From.ID)
	if err != nil {
		log.Printf("Failed to get user %d: %v", msg.From.ID, err)
		d.reply(ctx, msg.Chat.ID, "获取个人信息失败，请稍后再试")
		return
	}

	info := d.subSvc.GetSubscriptionInfo(msg.From.ID)

	text := fmt.Sprintf("👤 个人信息\n\nID：%d\n用户名：@%s\n注册时间：%s\n\n当前套餐：%s\n",
		user.TelegramID, user.Username, user.CreatedAt.Format("2006-01-02"), info.PlanName)

	for _, u := range info.Usage {
		text += fmt.Sprintf("%s：%s\n", actionLabel(u.Action), formatUsage(u.Used, u.Limit))
	}

	d.reply(ctx, msg.Chat.ID, text)
}

// handleText 普通文字走 AI 对话，计入每日生成配额
func (d *Dispatcher) handleText(ctx context.Context, msg *telegram.IncomingMessage) {
	if msg.From == nil {
		return
	}

	if err := d.userSvc.SaveMessage(msg.From.ID, msg.Text); err != nil {
		log.Printf("Failed to save message from %d: %v", msg.From.ID, err)
	}

	if !d.checkAndRecordUsage(ctx, msg.From.ID, msg.Chat.ID, model.ActionDailyGenerations) {
		return
	}

	answer, err := d.ai.Chat(ctx, msg.Text)
	if err != nil {
		log.Printf("AI chat failed for user %d: %v", msg.From.ID, err)
		d.reply(ctx, msg.Chat.ID, "AI 暂时无法回复，请稍后再试")
		return
	}

	d.reply(ctx, msg.Chat.ID, answer)
}

func actionLabel(action string) string {
	switch action {
	case string(model.ActionDailyGenerations):
		return "每日生成"
	case string(model.ActionImageGenerations):
		return "图片生成"
	case string(model.ActionVoiceAnalysis):
		return "语音分析"
	}
	return action
}

func formatUsage(used, limit int) string {
	if limit >= model.UnlimitedQuota {
		return fmt.Sprintf("%d / 无限", used)
	}
	return fmt.Sprintf("%d / %d", used, limit)
}
