package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/tgbot_go_server/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(msg *model.Message) error {
	return r.db.Create(msg).Error
}

// ListByTelegramID 返回某用户最近的消息
func (r *MessageRepository) ListByTelegramID(telegramID int64, limit int) ([]model.Message, error) {
	var msgs []model.Message
	err := r.db.Where("telegram_id = ?", telegramID).
		Order("created_at DESC").Limit(limit).Find(&msgs).Error
	return msgs, err
}

// DeleteBefore 删除某时间点之前的消息，返回删除行数
func (r *MessageRepository) DeleteBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&model.Message{})
	return result.RowsAffected, result.Error
}
