package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/tgbot_go_server/internal/model"
)

type UsageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// TodayStart 本进程时区的当日零点（已知简化：不按用户时区）
func TodayStart() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// GetTodayRecord 查找今日首条记录，用于自增；无记录时返回 gorm.ErrRecordNotFound
func (r *UsageRepository) GetTodayRecord(userID int64, action model.ActionType) (*model.UsageStat, error) {
	var stat model.UsageStat
	err := r.db.Where("user_id = ? AND action_type = ? AND created_at >= ?", userID, action, TodayStart()).
		Order("created_at ASC").First(&stat).Error
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

// SumToday 今日用量合计。并发下同一天可能出现重复行，这里按求和口径统计
func (r *UsageRepository) SumToday(userID int64, action model.ActionType) (int, error) {
	var total int64
	err := r.db.Model(&model.UsageStat{}).
		Where("user_id = ? AND action_type = ? AND created_at >= ?", userID, action, TodayStart()).
		Select("COALESCE(SUM(count), 0)").Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *UsageRepository) Create(stat *model.UsageStat) error {
	return r.db.Create(stat).Error
}

// IncrementCount 按行 ID 自增计数
func (r *UsageRepository) IncrementCount(id int64) error {
	return r.db.Model(&model.UsageStat{}).Where("id = ?", id).
		Update("count", gorm.Expr("count + 1")).Error
}

// DeleteBefore 删除某时间点之前的记录，返回删除行数
func (r *UsageRepository) DeleteBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&model.UsageStat{})
	return result.RowsAffected, result.Error
}
