package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/pkg/gemini"
	"github.com/qs3c/tgbot_go_server/internal/pkg/oss"
	"github.com/qs3c/tgbot_go_server/internal/pkg/pubsub"
	"github.com/qs3c/tgbot_go_server/internal/pkg/queue"
	"github.com/qs3c/tgbot_go_server/internal/pkg/telegram"
	"github.com/qs3c/tgbot_go_server/internal/repository"
)

// Processor 生成任务处理器：调用 AI、归档结果并回发给用户
type Processor struct {
	genRepo   *repository.GenerationRepository
	tg        *telegram.Client
	ai        *gemini.Client
	ossClient *oss.Client
	publisher *pubsub.Publisher
}

func NewProcessor(
	genRepo *repository.GenerationRepository,
	tg *telegram.Client,
	ai *gemini.Client,
	ossClient *oss.Client,
	publisher *pubsub.Publisher,
) *Processor {
	return &Processor{
		genRepo:   genRepo,
		tg:        tg,
		ai:        ai,
		ossClient: ossClient,
		publisher: publisher,
	}
}

// Process 处理一条生成任务
func (p *Processor) Process(ctx context.Context, msg *queue.GenerationMessage) error {
	job, err := p.genRepo.GetByID(msg.JobID)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}

	now := time.Now()
	job.Status = "processing"
	job.StartedAt = &now
	if err := p.genRepo.Update(job); err != nil {
		log.Printf("Job %d: failed to mark processing: %v", job.ID, err)
	}

	handleError := func(err error) error {
		job.Status = "failed"
		job.ErrorMessage = err.Error()
		completedAt := time.Now()
		job.CompletedAt = &completedAt
		p.genRepo.Update(job)

		p.publishEvent(ctx, &pubsub.BotEvent{
			Type:       pubsub.EventJobFailed,
			TelegramID: msg.UserID,
			JobID:      job.ID,
			Detail:     err.Error(),
		})
		p.sendText(ctx, msg.ChatID, "❌ 任务处理失败，请稍后再试")
		return err
	}

	log.Printf("Job %d: processing kind=%s user=%d", job.ID, job.Kind, msg.UserID)

	switch job.Kind {
	case model.GenerationImagine:
		err = p.processImagine(ctx, job, msg)
	case model.GenerationImageEdit:
		err = p.processImageEdit(ctx, job, msg)
	case model.GenerationPhotoDesc:
		err = p.processMediaAnalysis(ctx, job, msg, "image/jpeg", "详细描述这张图片的内容")
	case model.GenerationVoiceText:
		err = p.processMediaAnalysis(ctx, job, msg, "audio/ogg", "转写这段语音，并简要总结内容")
	case model.GenerationAudioDesc:
		err = p.processMediaAnalysis(ctx, job, msg, "audio/mpeg", "分析这段音频的内容")
	case model.GenerationVideoDesc:
		err = p.processMediaAnalysis(ctx, job, msg, "video/mp4", "分析这段视频的内容")
	default:
		err = fmt.Errorf("unknown job kind: %s", job.Kind)
	}

	if err != nil {
		return handleError(err)
	}

	job.Status = "completed"
	completedAt := time.Now()
	job.CompletedAt = &completedAt
	if err := p.genRepo.Update(job); err != nil {
		log.Printf("Job %d: failed to mark completed: %v", job.ID, err)
	}

	p.publishEvent(ctx, &pubsub.BotEvent{
		Type:       pubsub.EventJobCompleted,
		TelegramID: msg.UserID,
		JobID:      job.ID,
	})

	elapsed := completedAt.Sub(now).Round(time.Millisecond)
	log.Printf("Job %d: completed in %s", job.ID, elapsed)
	return nil
}

// processImagine 文生图：生成、归档、回发
func (p *Processor) processImagine(ctx context.Context, job *model.GenerationJob, msg *queue.GenerationMessage) error {
	image, err := p.ai.GenerateImage(ctx, job.Prompt)
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}

	p.archiveImage(job, image)

	if err := p.tg.SendPhoto(ctx, msg.ChatID, image, job.Prompt); err != nil {
		return fmt.Errorf("failed to deliver image: %w", err)
	}
	return nil
}

// processImageEdit 图生图：下载原图后按提示词修改
func (p *Processor) processImageEdit(ctx context.Context, job *model.GenerationJob, msg *queue.GenerationMessage) error {
	original, err := p.tg.DownloadFile(ctx, job.FileURL)
	if err != nil {
		return fmt.Errorf("failed to download source image: %w", err)
	}

	edited, err := p.ai.EditImage(ctx, original, "image/jpeg", job.Prompt)
	if err != nil {
		return fmt.Errorf("image edit failed: %w", err)
	}

	p.archiveImage(job, edited)

	if err := p.tg.SendPhoto(ctx, msg.ChatID, edited, job.Prompt); err != nil {
		return fmt.Errorf("failed to deliver image: %w", err)
	}
	return nil
}

// processMediaAnalysis 媒体分析：下载、分析、以文字回发
func (p *Processor) processMediaAnalysis(ctx context.Context, job *model.GenerationJob, msg *queue.GenerationMessage, mimeType, defaultPrompt string) error {
	media, err := p.tg.DownloadFile(ctx, job.FileURL)
	if err != nil {
		return fmt.Errorf("failed to download media: %w", err)
	}

	prompt := job.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}

	answer, err := p.ai.AnalyzeMedia(ctx, media, mimeType, prompt)
	if err != nil {
		return fmt.Errorf("media analysis failed: %w", err)
	}

	p.sendText(ctx, msg.ChatID, answer)
	return nil
}

// archiveImage 归档生成图片到 OSS，未配置 OSS 时跳过，失败不影响交付
func (p *Processor) archiveImage(job *model.GenerationJob, image []byte) {
	if p.ossClient == nil {
		return
	}

	url, err := p.ossClient.UploadGeneration(job.ID, image)
	if err != nil {
		log.Printf("Job %d: failed to archive image: %v", job.ID, err)
		return
	}
	job.ResultURL = url
}

func (p *Processor) sendText(ctx context.Context, chatID int64, text string) {
	if _, err := p.tg.SendMessage(ctx, chatID, text, nil); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (p *Processor) publishEvent(ctx context.Context, event *pubsub.BotEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishEvent(ctx, event); err != nil {
		log.Printf("Failed to publish bot event %s: %v", event.Type, err)
	}
}
