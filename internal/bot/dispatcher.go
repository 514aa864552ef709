package bot

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/qs3c/tgbot_go_server/internal/pkg/gemini"
	"github.com/qs3c/tgbot_go_server/internal/pkg/pubsub"
	"github.com/qs3c/tgbot_go_server/internal/pkg/queue"
	"github.com/qs3c/tgbot_go_server/internal/pkg/telegram"
	"github.com/qs3c/tgbot_go_server/internal/repository"
	"github.com/qs3c/tgbot_go_server/internal/service"
)

// Dispatcher 机器人更新分发器：登记用户、落库消息，再按更新类型路由
type Dispatcher struct {
	tg        *telegram.Client
	ai        *gemini.Client
	userSvc   *service.UserService
	subSvc    *service.SubscriptionService
	quotaSvc  *service.QuotaService
	genRepo   *repository.GenerationRepository
	userRepo  *repository.UserRepository
	queue     *queue.Queue
	publisher *pubsub.Publisher
	startTime time.Time
}

func NewDispatcher(
	tg *telegram.Client,
	ai *gemini.Client,
	userSvc *service.UserService,
	subSvc *service.SubscriptionService,
	quotaSvc *service.QuotaService,
	genRepo *repository.GenerationRepository,
	userRepo *repository.UserRepository,
	q *queue.Queue,
	publisher *pubsub.Publisher,
) *Dispatcher {
	return &Dispatcher{
		tg:        tg,
		ai:        ai,
		userSvc:   userSvc,
		subSvc:    subSvc,
		quotaSvc:  quotaSvc,
		genRepo:   genRepo,
		userRepo:  userRepo,
		queue:     q,
		publisher: publisher,
		startTime: time.Now(),
	}
}

// HandleUpdate 处理单条更新。永远不向 Telegram 返回错误，
// 失败只记日志，避免平台对同一条更新反复重试
func (d *Dispatcher) HandleUpdate(ctx context.Context, update *telegram.Update) {
	d.publishEvent(ctx, &pubsub.BotEvent{Type: pubsub.EventUpdateReceived})

	switch {
	case update.PreCheckoutQuery != nil:
		d.handlePreCheckout(ctx, update.PreCheckoutQuery)
	case update.CallbackQuery != nil:
		d.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		d.handleMessage(ctx, update.Message)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *telegram.IncomingMessage) {
	if msg.From != nil {
		if err := d.userSvc.SaveUser(msg.From.ID, msg.From.Username, msg.From.FirstName); err == nil {
			d.publishEvent(ctx, &pubsub.BotEvent{Type: pubsub.EventMessageSaved, TelegramID: msg.From.ID})
		}
	}

	switch {
	case msg.SuccessfulPayment != nil:
		d.handleSuccessfulPayment(ctx, msg)
	case len(msg.Photo) > 0:
		d.handlePhoto(ctx, msg)
	case msg.Voice != nil:
		d.handleVoice(ctx, msg)
	case msg.Audio != nil:
		d.handleAudio(ctx, msg)
	case msg.Video != nil:
		d.handleVideo(ctx, msg)
	case strings.HasPrefix(msg.Text, "/"):
		d.handleCommand(ctx, msg)
	case msg.Text != "":
		d.handleText(ctx, msg)
	}
}

func (d *Dispatcher) handleCommand(ctx context.Context, msg *telegram.IncomingMessage) {
	command, args := splitCommand(msg.Text)

	switch command {
	case "/start":
		d.handleStart(ctx, msg)
	case "/help":
		d.handleHelp(ctx, msg)
	case "/ping":
		d.handlePing(ctx, msg)
	case "/status":
		d.handleStatus(ctx, msg)
	case "/profile":
		d.handleProfile(ctx, msg)
	case "/subscribe":
		d.showPlans(ctx, msg.Chat.ID)
	case "/subscription":
		d.showMySubscription(ctx, msg)
	case "/imagine":
		d.handleImagine(ctx, msg, args)
	default:
		d.reply(ctx, msg.Chat.ID, "未知命令，发送 /help 查看可用命令")
	}
}

// splitCommand 拆出命令与参数，命令中可能带 @botname 后缀
func splitCommand(text string) (string, string) {
	parts := strings.SplitN(text, " ", 2)
	command := parts[0]
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}

	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}
	return command, args
}

// reply 发送文本回复，失败仅记日志
func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string) {
	if _, err := d.tg.SendMessage(ctx, chatID, text, nil); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (d *Dispatcher) publishEvent(ctx context.Context, event *pubsub.BotEvent) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.PublishEvent(ctx, event); err != nil {
		log.Printf("Failed to publish bot event %s: %v", event.Type, err)
	}
}
