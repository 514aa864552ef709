package main

import (
	"context"
	"fmt"
	"log"

	"github.com/qs3c/tgbot_go_server/config"
	"github.com/qs3c/tgbot_go_server/internal/api"
	"github.com/qs3c/tgbot_go_server/internal/api/handler"
	"github.com/qs3c/tgbot_go_server/internal/bot"
	"github.com/qs3c/tgbot_go_server/internal/database"
	"github.com/qs3c/tgbot_go_server/internal/pkg/cron"
	"github.com/qs3c/tgbot_go_server/internal/pkg/gemini"
	"github.com/qs3c/tgbot_go_server/internal/pkg/geo"
	"github.com/qs3c/tgbot_go_server/internal/pkg/pubsub"
	"github.com/qs3c/tgbot_go_server/internal/pkg/queue"
	"github.com/qs3c/tgbot_go_server/internal/pkg/telegram"
	"github.com/qs3c/tgbot_go_server/internal/pkg/ws"
	"github.com/qs3c/tgbot_go_server/internal/repository"
	"github.com/qs3c/tgbot_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 Queue 和 Pub/Sub
	genQueue := queue.NewQueue(rdb, cfg.Queue.GenerationQueue)
	publisher := pubsub.NewPublisher(rdb)
	subscriber := pubsub.NewSubscriber(rdb)

	// 初始化 WebSocket Hub，把机器人事件转发给管理后台
	wsHub := ws.NewHub()
	go func() {
		err := subscriber.Subscribe(context.Background(), func(event *pubsub.BotEvent) {
			wsHub.Broadcast(&ws.Message{Type: event.Type, Data: event})
		})
		if err != nil && err != context.Canceled {
			log.Printf("Event subscriber stopped: %v", err)
		}
	}()
	log.Println("WebSocket hub started")

	// 初始化外部客户端
	tgClient := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.APIBaseURL)
	aiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.APIBaseURL, cfg.Gemini.TextModel, cfg.Gemini.ImageModel)
	geoRouter := geo.NewRouter(cfg.Geo.ProxyCIDRs)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	genRepo := repository.NewGenerationRepository(db)

	// 初始化 Service
	userService := service.NewUserService(userRepo, messageRepo)
	usageService := service.NewUsageService(usageRepo)
	subscriptionService := service.NewSubscriptionService(subRepo, usageService)
	quotaService := service.NewQuotaService(subscriptionService, usageService)

	// 初始化机器人分发器
	dispatcher := bot.NewDispatcher(
		tgClient,
		aiClient,
		userService,
		subscriptionService,
		quotaService,
		genRepo,
		userRepo,
		genQueue,
		publisher,
	)

	// 初始化 Handler
	webhookHandler := handler.NewWebhookHandler(dispatcher, geoRouter, cfg.Geo.ProxyURL)
	authHandler := handler.NewAuthHandler(cfg)
	planHandler := handler.NewPlanHandler()
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, subRepo, userRepo, genRepo)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins)

	// 启动定时任务：每日下线到期订阅
	cronService := cron.NewService(subRepo)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		webhookHandler,
		authHandler,
		planHandler,
		subscriptionHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
