package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/pkg/gemini"
	"github.com/qs3c/tgbot_go_server/internal/pkg/queue"
	"github.com/qs3c/tgbot_go_server/internal/pkg/telegram"
	"github.com/qs3c/tgbot_go_server/internal/repository"
	"github.com/qs3c/tgbot_go_server/internal/service"
	"github.com/qs3c/tgbot_go_server/internal/testutil"
)

// fakeTelegram 记录发往 Bot API 的调用
type fakeTelegram struct {
	mu    sync.Mutex
	calls []apiCall
}

type apiCall struct {
	Method  string
	Payload map[string]interface{}
}

func (f *fakeTelegram) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]

		var payload map[string]interface{}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)

		f.mu.Lock()
		f.calls = append(f.calls, apiCall{Method: method, Payload: payload})
		f.mu.Unlock()

		switch method {
		case "sendMessage":
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":1}}`)
		case "getFile":
			fmt.Fprint(w, `{"ok":true,"result":{"file_path":"photos/file_1.jpg"}}`)
		default:
			fmt.Fprint(w, `{"ok":true,"result":true}`)
		}
	}
}

func (f *fakeTelegram) callsFor(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeTelegram) lastMessageText(t *testing.T) string {
	t.Helper()

	calls := f.callsFor("sendMessage")
	require.NotEmpty(t, calls, "expected at least one sendMessage call")
	text, _ := calls[len(calls)-1].Payload["text"].(string)
	return text
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	fake       *fakeTelegram
	genQueue   *queue.Queue
	subSvc     *service.SubscriptionService
	genRepo    *repository.GenerationRepository
}

func setupDispatcher(t *testing.T) (*dispatcherFixture, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)

	fake := &fakeTelegram{}
	server := httptest.NewServer(fake.handler())

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	genRepo := repository.NewGenerationRepository(db)

	userSvc := service.NewUserService(userRepo, messageRepo)
	usageSvc := service.NewUsageService(usageRepo)
	subSvc := service.NewSubscriptionService(subRepo, usageSvc)
	quotaSvc := service.NewQuotaService(subSvc, usageSvc)

	genQueue := queue.NewQueue(rdb, "test_generation_queue")

	dispatcher := NewDispatcher(
		telegram.NewClient("TESTTOKEN", server.URL),
		gemini.NewClient("key", server.URL, "", ""),
		userSvc,
		subSvc,
		quotaSvc,
		genRepo,
		userRepo,
		genQueue,
		nil, // 不接事件总线
	)

	cleanup := func() {
		server.Close()
		rdb.Close()
		mr.Close()
		testutil.CleanupTestDB(t, db)
	}

	return &dispatcherFixture{
		dispatcher: dispatcher,
		fake:       fake,
		genQueue:   genQueue,
		subSvc:     subSvc,
		genRepo:    genRepo,
	}, cleanup
}

func textUpdate(userID int64, text string) *telegram.Update {
	return &telegram.Update{
		UpdateID: 1,
		Message: &telegram.IncomingMessage{
			MessageID: 1,
			From:      &telegram.TgUser{ID: userID, Username: "tester", FirstName: "Tester"},
			Chat:      telegram.Chat{ID: userID},
			Text:      text,
		},
	}
}

func TestDispatcher_StartCommand(t *testing.T) {
	f, cleanup := setupDispatcher(t)
	defer cleanup()

	f.dispatcher.HandleUpdate(context.Background(), textUpdate(100, "/start"))

	text := f.fake.lastMessageText(t)
	assert.Contains(t, text, "Tester")
	assert.Contains(t, text, "/help")
}

func TestDispatcher_SuccessfulPayment_CreatesSubscription(t *testing.T) {
	f, cleanup := setupDispatcher(t)
	defer cleanup()

	update := &telegram.Update{
		Message: &telegram.IncomingMessage{
			From: &telegram.TgUser{ID: 100, Username: "buyer"},
			Chat: telegram.Chat{ID: 100},
			SuccessfulPayment: &telegram.SuccessfulPayment{
				Currency:                "XTR",
				TotalAmount:             50,
				InvoicePayload:          "sub:basic",
				TelegramPaymentChargeID: "charge_1",
			},
		},
	}

	f.dispatcher.HandleUpdate(context.Background(), update)

	sub := f.subSvc.GetActiveSubscription(100)
	require.NotNil(t, sub)
	assert.Equal(t, model.PlanBasic, sub.PlanID)
	assert.Equal(t, "charge_1", sub.TransactionID)

	assert.Contains(t, f.fake.lastMessageText(t), "订阅成功")
}

func TestDispatcher_PreCheckout(t *testing.T) {
	f, cleanup := setupDispatcher(t)
	defer cleanup()

	t.Run("valid plan approved", func(t *testing.T) {
		update := &telegram.Update{
			PreCheckoutQuery: &telegram.PreCheckoutQuery{
				ID:             "q1",
				From:           &telegram.TgUser{ID: 100},
				Currency:       "XTR",
				TotalAmount:    150,
				InvoicePayload: "sub:pro",
			},
		}

		f.dispatcher.HandleUpdate(context.Background(), update)

		calls := f.fake.callsFor("answerPreCheckoutQuery")
		require.Len(t, calls, 1)
		assert.Equal(t, true, calls[0].Payload["ok"])
	})

	t.Run("wrong amount rejected", func(t *testing.T) {
		update := &telegram.Update{
			PreCheckoutQuery: &telegram.PreCheckoutQuery{
				ID:             "q2",
				From:           &telegram.TgUser{ID: 100},
				Currency:       "XTR",
				TotalAmount:    1,
				InvoicePayload: "sub:pro",
			},
		}

		f.dispatcher.HandleUpdate(context.Background(), update)

		calls := f.fake.callsFor("answerPreCheckoutQuery")
		require.Len(t, calls, 2)
		assert.Equal(t, false, calls[1].Payload["ok"])
	})

	t.Run("unknown plan rejected", func(t *testing.T) {
		update := &telegram.Update{
			PreCheckoutQuery: &telegram.PreCheckoutQuery{
				ID:             "q3",
				From:           &telegram.TgUser{ID: 100},
				Currency:       "XTR",
				TotalAmount:    10,
				InvoicePayload: "sub:enterprise",
			},
		}

		f.dispatcher.HandleUpdate(context.Background(), update)

		calls := f.fake.callsFor("answerPreCheckoutQuery")
		require.Len(t, calls, 3)
		assert.Equal(t, false, calls[2].Payload["ok"])
	})
}

func TestDispatcher_Imagine_QuotaFlow(t *testing.T) {
	f, cleanup := setupDispatcher(t)
	defer cleanup()

	ctx := context.Background()

	// 免费版图片生成每日 1 次：首次放行并带低余量提醒
	f.dispatcher.HandleUpdate(ctx, textUpdate(100, "/imagine a red fox"))

	length, err := f.genQueue.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	queued, err := f.genRepo.CountByStatus("queued")
	require.NoError(t, err)
	assert.Equal(t, int64(1), queued)

	texts := f.fake.callsFor("sendMessage")
	var sawWarning, sawQueued bool
	for _, c := range texts {
		text, _ := c.Payload["text"].(string)
		if strings.Contains(text, "还剩 1 次") {
			sawWarning = true
		}
		if strings.Contains(text, "已加入队列") {
			sawQueued = true
		}
	}
	assert.True(t, sawWarning, "expected low-quota warning before recording")
	assert.True(t, sawQueued)

	// 第二次超限：拒绝且不再入队
	f.dispatcher.HandleUpdate(ctx, textUpdate(100, "/imagine another fox"))

	length, err = f.genQueue.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	assert.Contains(t, f.fake.lastMessageText(t), "配额已用完")
}

func TestDispatcher_ImagineWithoutPrompt(t *testing.T) {
	f, cleanup := setupDispatcher(t)
	defer cleanup()

	f.dispatcher.HandleUpdate(context.Background(), textUpdate(100, "/imagine"))

	assert.Contains(t, f.fake.lastMessageText(t), "用法")

	length, err := f.genQueue.Length(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), length)
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	f, cleanup := setupDispatcher(t)
	defer cleanup()

	f.dispatcher.HandleUpdate(context.Background(), textUpdate(100, "/frobnicate"))

	assert.Contains(t, f.fake.lastMessageText(t), "未知命令")
}

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		in      string
		command string
		args    string
	}{
		{"/start", "/start", ""},
		{"/imagine a red fox", "/imagine", "a red fox"},
		{"/help@my_test_bot", "/help", ""},
		{"/imagine@my_test_bot  spaced  ", "/imagine", "spaced"},
	}

	for _, tc := range cases {
		command, args := splitCommand(tc.in)
		assert.Equal(t, tc.command, command, "input %q", tc.in)
		assert.Equal(t, tc.args, args, "input %q", tc.in)
	}
}
