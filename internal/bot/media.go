package bot

import (
	"context"
	"fmt"
	"log"

	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/pkg/pubsub"
	"github.com/qs3c/tgbot_go_server/internal/pkg/queue"
	"github.com/qs3c/tgbot_go_server/internal/pkg/telegram"
)

// checkAndRecordUsage 配额闸门：拒绝时提示升级，放行后立即记账。
// 低余量提醒基于记账前的余量判断
func (d *Dispatcher) checkAndRecordUsage(ctx context.Context, userID, chatID int64, action model.ActionType) bool {
	decision := d.quotaSvc.CheckUsageLimit(userID, action)

	if !decision.Allowed {
		d.publishEvent(ctx, &pubsub.BotEvent{
			Type:       pubsub.EventQuotaDenied,
			TelegramID: userID,
			Action:     string(action),
		})
		d.reply(ctx, chatID, fmt.Sprintf("😔 %s的今日配额已用完（上限 %d 次）。\n\n发送 /subscribe 升级套餐，解锁更多配额 ⭐", actionLabel(string(action)), decision.Limit))
		return false
	}

	if decision.Remaining <= 3 && decision.Remaining > 0 && decision.Limit < model.UnlimitedQuota {
		d.reply(ctx, chatID, fmt.Sprintf("⚠️ %s今日还剩 %d 次", actionLabel(string(action)), decision.Remaining))
	}

	d.quotaSvc.RecordUsage(userID, action)
	return true
}

// enqueueJob 创建任务记录并推入队列
func (d *Dispatcher) enqueueJob(ctx context.Context, userID, chatID int64, kind, prompt, fileURL string) {
	job := &model.GenerationJob{
		UserID:  userID,
		ChatID:  chatID,
		Kind:    kind,
		Prompt:  prompt,
		FileURL: fileURL,
		Status:  "queued",
	}
	if err := d.genRepo.Create(job); err != nil {
		log.Printf("Failed to create generation job for user %d: %v", userID, err)
		d.reply(ctx, chatID, "任务创建失败，请稍后再试")
		return
	}

	err := d.queue.Push(ctx, &queue.GenerationMessage{
		JobID:   job.ID,
		UserID:  userID,
		ChatID:  chatID,
		Kind:    kind,
		Prompt:  prompt,
		FileURL: fileURL,
	})
	if err != nil {
		log.Printf("Failed to enqueue job %d: %v", job.ID, err)
		d.reply(ctx, chatID, "任务入队失败，请稍后再试")
		return
	}

	d.publishEvent(ctx, &pubsub.BotEvent{
		Type:       pubsub.EventJobQueued,
		TelegramID: userID,
		JobID:      job.ID,
	})
	d.reply(ctx, chatID, "⏳ 任务已加入队列，完成后会自动发送结果")
}

// handleImagine /imagine 文生图
func (d *Dispatcher) handleImagine(ctx context.Context, msg *telegram.IncomingMessage, prompt string) {
	if msg.From == nil {
		return
	}
	if prompt == "" {
		d.reply(ctx, msg.Chat.ID, "用法：/imagine <图片描述>")
		return
	}

	if !d.checkAndRecordUsage(ctx, msg.From.ID, msg.Chat.ID, model.ActionImageGenerations) {
		return
	}

	d.enqueueJob(ctx, msg.From.ID, msg.Chat.ID, model.GenerationImagine, prompt, "")
}

// handlePhoto 带文字说明时做图片编辑，否则做图片描述
func (d *Dispatcher) handlePhoto(ctx context.Context, msg *telegram.IncomingMessage) {
	if msg.From == nil {
		return
	}

	// 取最大尺寸的那张
	photo := msg.Photo[len(msg.Photo)-1]
	fileURL, err := d.tg.GetFileLink(ctx, photo.FileID)
	if err != nil {
		log.Printf("Failed to get photo link: %v", err)
		d.reply(ctx, msg.Chat.ID, "图片获取失败，请重新发送")
		return
	}

	kind := model.GenerationPhotoDesc
	action := model.ActionDailyGenerations
	if msg.Caption != "" {
		kind = model.GenerationImageEdit
		action = model.ActionImageGenerations
	}

	if !d.checkAndRecordUsage(ctx, msg.From.ID, msg.Chat.ID, action) {
		return
	}

	d.enqueueJob(ctx, msg.From.ID, msg.Chat.ID, kind, msg.Caption, fileURL)
}

// handleVoice 语音转写与分析
func (d *Dispatcher) handleVoice(ctx context.Context, msg *telegram.IncomingMessage) {
	if msg.From == nil {
		return
	}

	fileURL, err := d.tg.GetFileLink(ctx, msg.Voice.FileID)
	if err != nil {
		log.Printf("Failed to get voice link: %v", err)
		d.reply(ctx, msg.Chat.ID, "语音获取失败，请重新发送")
		return
	}

	if !d.checkAndRecordUsage(ctx, msg.From.ID, msg.Chat.ID, model.ActionVoiceAnalysis) {
		return
	}

	d.enqueueJob(ctx, msg.From.ID, msg.Chat.ID, model.GenerationVoiceText, "", fileURL)
}

// handleAudio 音频文件分析
func (d *Dispatcher) handleAudio(ctx context.Context, msg *telegram.IncomingMessage) {
	if msg.From == nil {
		return
	}

	fileURL, err := d.tg.GetFileLink(ctx, msg.Audio.FileID)
	if err != nil {
		log.Printf("Failed to get audio link: %v", err)
		d.reply(ctx, msg.Chat.ID, "音频获取失败，请重新发送")
		return
	}

	if !d.checkAndRecordUsage(ctx, msg.From.ID, msg.Chat.ID, model.ActionVoiceAnalysis) {
		return
	}

	d.enqueueJob(ctx, msg.From.ID, msg.Chat.ID, model.GenerationAudioDesc, msg.Caption, fileURL)
}

// handleVideo 视频内容分析
func (d *Dispatcher) handleVideo(ctx context.Context, msg *telegram.IncomingMessage) {
	if msg.From == nil {
		return
	}

	fileURL, err := d.tg.GetFileLink(ctx, msg.Video.FileID)
	if err != nil {
		log.Printf("Failed to get video link: %v", err)
		d.reply(ctx, msg.Chat.ID, "视频获取失败，请重新发送")
		return
	}

	if !d.checkAndRecordUsage(ctx, msg.From.ID, msg.Chat.ID, model.ActionDailyGenerations) {
		return
	}

	d.enqueueJob(ctx, msg.From.ID, msg.Chat.ID, model.GenerationVideoDesc, msg.Caption, fileURL)
}
