package telegram

// Update Bot API 推送的更新，仅保留用到的字段
type Update struct {
	UpdateID         int64             `json:"update_id"`
	Message          *IncomingMessage  `json:"message,omitempty"`
	CallbackQuery    *CallbackQuery    `json:"callback_query,omitempty"`
	PreCheckoutQuery *PreCheckoutQuery `json:"pre_checkout_query,omitempty"`
}

type IncomingMessage struct {
	MessageID         int64              `json:"message_id"`
	From              *TgUser            `json:"from,omitempty"`
	Chat              Chat               `json:"chat"`
	Text              string             `json:"text,omitempty"`
	Caption           string             `json:"caption,omitempty"`
	Photo             []PhotoSize        `json:"photo,omitempty"`
	Voice             *FileRef           `json:"voice,omitempty"`
	Audio             *FileRef           `json:"audio,omitempty"`
	Video             *FileRef           `json:"video,omitempty"`
	SuccessfulPayment *SuccessfulPayment `json:"successful_payment,omitempty"`
}

type TgUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type FileRef struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration,omitempty"`
}

type CallbackQuery struct {
	ID      string           `json:"id"`
	From    *TgUser          `json:"from"`
	Message *IncomingMessage `json:"message,omitempty"`
	Data    string           `json:"data,omitempty"`
}

type PreCheckoutQuery struct {
	ID             string  `json:"id"`
	From           *TgUser `json:"from"`
	Currency       string  `json:"currency"`
	TotalAmount    int     `json:"total_amount"`
	InvoicePayload string  `json:"invoice_payload"`
}

type SuccessfulPayment struct {
	Currency                string `json:"currency"`
	TotalAmount             int    `json:"total_amount"`
	InvoicePayload          string `json:"invoice_payload"`
	TelegramPaymentChargeID string `json:"telegram_payment_charge_id"`
}

// InlineKeyboardMarkup 内联按钮
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}

// LabeledPrice 发票价格项
type LabeledPrice struct {
	Label  string `json:"label"`
	Amount int    `json:"amount"`
}
