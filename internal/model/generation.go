package model

import (
	"time"
)

// 生成任务类型
const (
	GenerationImagine   = "imagine"    // 文生图
	GenerationImageEdit = "image_edit" // 图片编辑
	GenerationPhotoDesc = "photo_desc" // 图片描述
	GenerationVoiceText = "voice_text" // 语音转写
	GenerationAudioDesc = "audio_desc" // 音频分析
	GenerationVideoDesc = "video_desc" // 视频分析
)

// GenerationJob AI 生成任务，由 worker 异步处理
type GenerationJob struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	UserID       int64      `gorm:"not null;index" json:"user_id"`
	ChatID       int64      `gorm:"not null" json:"chat_id"`
	Kind         string     `gorm:"size:20;not null" json:"kind"`
	Prompt       string     `gorm:"type:text" json:"prompt"`
	FileURL      string     `gorm:"size:500" json:"file_url,omitempty"`
	Status       string     `gorm:"size:20;default:queued;index" json:"status"` // queued, processing, completed, failed
	ResultURL    string     `gorm:"size:500" json:"result_url,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (GenerationJob) TableName() string {
	return "generation_jobs"
}
