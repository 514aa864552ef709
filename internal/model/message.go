package model

import (
	"time"
)

// Message 保存的纯文本消息
type Message struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	TelegramID int64     `gorm:"not null;index" json:"telegram_id"`
	Text       string    `gorm:"type:text" json:"text"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
