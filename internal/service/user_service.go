package service

import (
	"log"

	"github.com/qs3c/tgbot_go_server/internal/model"
	"github.com/qs3c/tgbot_go_server/internal/repository"
)

type UserService struct {
	userRepo    *repository.UserRepository
	messageRepo *repository.MessageRepository
}

func NewUserService(userRepo *repository.UserRepository, messageRepo *repository.MessageRepository) *UserService {
	return &UserService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
	}
}

// SaveUser 收到任意更新时登记用户并刷新 last_seen
func (s *UserService) SaveUser(telegramID int64, username, firstName string) error {
	user := &model.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
	}
	if err := s.userRepo.Upsert(user); err != nil {
		log.Printf("Failed to save user %d: %v", telegramID, err)
		return err
	}
	return nil
}

// GetUser 按 telegram_id 查询用户
func (s *UserService) GetUser(telegramID int64) (*model.User, error) {
	return s.userRepo.GetByTelegramID(telegramID)
}

// SaveMessage 保存纯文本消息
func (s *UserService) SaveMessage(telegramID int64, text string) error {
	msg := &model.Message{
		TelegramID: telegramID,
		Text:       text,
	}
	if err := s.messageRepo.Create(msg); err != nil {
		log.Printf("Failed to save message from %d: %v", telegramID, err)
		return err
	}
	return nil
}
