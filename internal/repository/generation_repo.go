package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/tgbot_go_server/internal/model"
)

type GenerationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

func (r *GenerationRepository) Create(job *model.GenerationJob) error {
	return r.db.Create(job).Error
}

func (r *GenerationRepository) GetByID(id int64) (*model.GenerationJob, error) {
	var job model.GenerationJob
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *GenerationRepository) Update(job *model.GenerationJob) error {
	return r.db.Save(job).Error
}

// CountByStatus 按状态统计任务数
func (r *GenerationRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&model.GenerationJob{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
