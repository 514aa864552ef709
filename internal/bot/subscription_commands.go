package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/pkg/pubsub"
	"github.com/qs3c/tgbot_go_server/internal/pkg/telegram"
)

// 发票 payload 前缀，支付回执按它还原套餐 ID
const invoicePayloadPrefix = "sub:"

// showPlans 列出付费套餐，点按钮发起支付
func (d *Dispatcher) showPlans(ctx context.Context, chatID int64) {
	text := "⭐ 订阅套餐\n\n"
	var rows [][]telegram.InlineKeyboardButton

	for _, plan := range model.ListPaidPlans() {
		text += fmt.Sprintf("%s - %d Stars / %d 天\n%s\n", plan.Name, plan.Price, plan.Duration, plan.Description)
		for _, f := range plan.Features {
			text += f + "\n"
		}
		text += "\n"

		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         fmt.Sprintf("%s (%d ⭐)", plan.Name, plan.Price),
			CallbackData: invoicePayloadPrefix + plan.ID,
		}})
	}

	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
	if _, err := d.tg.SendMessage(ctx, chatID, text, markup); err != nil {
		log.Printf("Failed to send plans to chat %d: %v", chatID, err)
	}
}

// handleCallback 套餐按钮回调：发送 Stars 发票
func (d *Dispatcher) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	if err := d.tg.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		log.Printf("Failed to answer callback query: %v", err)
	}

	if !strings.HasPrefix(cb.Data, invoicePayloadPrefix) || cb.Message == nil {
		return
	}

	planID := strings.TrimPrefix(cb.Data, invoicePayloadPrefix)
	plan := model.GetPlan(planID)
	if plan == nil || plan.Price <= 0 {
		d.reply(ctx, cb.Message.Chat.ID, "该套餐不存在或已下架")
		return
	}

	err := d.tg.SendInvoice(ctx, cb.Message.Chat.ID,
		plan.Name,
		fmt.Sprintf("%s，有效期 %d 天", plan.Description, plan.Duration),
		invoicePayloadPrefix+plan.ID,
		plan.Price,
	)
	if err != nil {
		log.Printf("Failed to send invoice for plan %s: %v", planID, err)
		d.reply(ctx, cb.Message.Chat.ID, "发起支付失败，请稍后再试")
	}
}

// handlePreCheckout 预结账校验：套餐存在且金额一致才放行
func (d *Dispatcher) handlePreCheckout(ctx context.Context, query *telegram.PreCheckoutQuery) {
	planID := strings.TrimPrefix(query.InvoicePayload, invoicePayloadPrefix)
	plan := model.GetPlan(planID)

	if plan == nil || plan.Price <= 0 {
		if err := d.tg.AnswerPreCheckoutQuery(ctx, query.ID, false, "套餐不存在"); err != nil {
			log.Printf("Failed to reject pre-checkout: %v", err)
		}
		return
	}

	if query.Currency != "XTR" || query.TotalAmount != plan.Price {
		if err := d.tg.AnswerPreCheckoutQuery(ctx, query.ID, false, "支付金额不正确"); err != nil {
			log.Printf("Failed to reject pre-checkout: %v", err)
		}
		return
	}

	if err := d.tg.AnswerPreCheckoutQuery(ctx, query.ID, true, ""); err != nil {
		log.Printf("Failed to approve pre-checkout: %v", err)
	}
}

// handleSuccessfulPayment 收款回执：开通订阅。
// 开通失败时用户已付款，必须明确告知联系客服
func (d *Dispatcher) handleSuccessfulPayment(ctx context.Context, msg *telegram.IncomingMessage) {
	if msg.From == nil {
		return
	}
	payment := msg.SuccessfulPayment

	log.Printf("Payment received: user=%d, payload=%s, amount=%d %s, charge=%s",
		msg.From.ID, payment.InvoicePayload, payment.TotalAmount, payment.Currency, payment.TelegramPaymentChargeID)
	d.publishEvent(ctx, &pubsub.BotEvent{
		Type:       pubsub.EventPaymentReceived,
		TelegramID: msg.From.ID,
		Detail:     payment.InvoicePayload,
	})

	planID := strings.TrimPrefix(payment.InvoicePayload, invoicePayloadPrefix)

	if !d.subSvc.CreateSubscription(msg.From.ID, planID, payment.TelegramPaymentChargeID) {
		d.reply(ctx, msg.Chat.ID, "⚠️ 已收到付款，但订阅开通失败，请联系客服处理")
		return
	}

	plan := model.GetPlan(planID)
	d.publishEvent(ctx, &pubsub.BotEvent{
		Type:       pubsub.EventSubscribed,
		TelegramID: msg.From.ID,
		PlanID:     planID,
	})
	d.reply(ctx, msg.Chat.ID, fmt.Sprintf("🎉 订阅成功！已开通 %s，有效期 %d 天。\n\n发送 /subscription 查看订阅详情。", plan.Name, plan.Duration))
}

// showMySubscription 展示当前订阅与今日用量
func (d *Dispatcher) showMySubscription(ctx context.Context, msg *telegram.IncomingMessage) {
	if msg.From == nil {
		return
	}

	info := d.subSvc.GetSubscriptionInfo(msg.From.ID)

	var text string
	if info.HasSubscription {
		text = fmt.Sprintf("💎 我的订阅\n\n套餐：%s\n剩余：%d 天\n到期：%s\n\n今日用量：\n",
			info.PlanName, info.DaysLeft, info.EndDate.Format("2006-01-02 15:04"))
	} else {
		text = fmt.Sprintf("当前使用 %s\n\n今日用量：\n", info.PlanName)
	}

	for _, u := range info.Usage {
		text += fmt.Sprintf("%s：%s\n", actionLabel(u.Action), formatUsage(u.Used, u.Limit))
	}

	if !info.HasSubscription {
		text += "\n发送 /subscribe 升级套餐，解锁更多配额 ⭐"
	}

	d.reply(ctx, msg.Chat.ID, text)
}
