package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/tgbot_go_server/config"
	"github.com/qs3c/tgbot_go_server/internal/api/handler"
	"github.com/qs3c/tgbot_go_server/internal/api/middleware"
)

type Router struct {
	webhookHandler      *handler.WebhookHandler
	authHandler         *handler.AuthHandler
	planHandler         *handler.PlanHandler
	subscriptionHandler *handler.SubscriptionHandler
	websocketHandler    *handler.WebSocketHandler
	cfg                 *config.Config
}

func NewRouter(
	webhookHandler *handler.WebhookHandler,
	authHandler *handler.AuthHandler,
	planHandler *handler.PlanHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		webhookHandler:      webhookHandler,
		authHandler:         authHandler,
		planHandler:         planHandler,
		subscriptionHandler: subscriptionHandler,
		websocketHandler:    websocketHandler,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	// Telegram 回调入口，带 secret token 校验
	engine.POST("/webhook",
		middleware.WebhookSecret(r.cfg.Telegram.WebhookSecret),
		r.webhookHandler.Handle,
	)

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/login", r.authHandler.Login)
		}

		// 公开接口 - 套餐
		api.GET("/plans", r.planHandler.List)

		// 管理后台接口（需要认证）
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.GET("/stats", r.subscriptionHandler.Stats)
			authenticated.GET("/users/:telegram_id/subscription", r.subscriptionHandler.GetUserSubscription)
			authenticated.GET("/users/:telegram_id/subscriptions", r.subscriptionHandler.ListUserSubscriptions)
		}
	}

	return engine
}
