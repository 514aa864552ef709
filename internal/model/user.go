package model

import (
	"time"
)

// User Telegram 用户，首次收到更新时 upsert
type User struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	TelegramID int64     `gorm:"not null;uniqueIndex" json:"telegram_id"`
	Username   string    `gorm:"size:100" json:"username"`
	FirstName  string    `gorm:"size:100" json:"first_name"`
	LastSeen   time.Time `json:"last_seen"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
