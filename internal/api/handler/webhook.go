package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/tgbot_go_server/internal/bot"
	"github.com/qs3c/tgbot_go_server/internal/pkg/geo"
	"github.com/qs3c/tgbot_go_server/internal/pkg/telegram"
)

// WebhookHandler Telegram 回调入口
type WebhookHandler struct {
	dispatcher *bot.Dispatcher
	geoRouter  *geo.Router
	proxyURL   string
	httpClient *http.Client
}

func NewWebhookHandler(dispatcher *bot.Dispatcher, geoRouter *geo.Router, proxyURL string) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		geoRouter:  geoRouter,
		proxyURL:   proxyURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Handle 接收更新。无论处理结果如何都返回 {"ok":true}，
// 避免 Telegram 对同一条更新反复重投
// POST /webhook
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("Failed to read webhook body: %v", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	// 命中分流规则的请求原样转发到备用后端
	if h.proxyURL != "" && h.geoRouter != nil {
		ip := geo.ExtractRealIP(c.Request.Header)
		if h.geoRouter.ShouldProxy(ip) {
			h.forward(c.Request.Context(), body, c.GetHeader("X-Telegram-Bot-Api-Secret-Token"))
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}
	}

	var update telegram.Update
	if err := json.Unmarshal(body, &update); err != nil {
		log.Printf("Failed to parse webhook update: %v", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	// 异步处理，立即应答 Telegram
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		h.dispatcher.HandleUpdate(ctx, &update)
	}()

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// forward 将原始更新转发到备用后端，失败仅记日志
func (h *WebhookHandler) forward(ctx context.Context, body []byte, secretToken string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.proxyURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("Failed to build proxy request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if secretToken != "" {
		req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secretToken)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		log.Printf("Failed to proxy webhook update: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Proxy backend returned status %d", resp.StatusCode)
	}
}
