package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/renteduse/roster-request-flow/internal/model"
)

// ShiftRepository 班次数据访问接口
type ShiftRepository interface {
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	ListByUser(ctx context.Context, userID string) ([]model.Shift, error)
	ListUpcoming(ctx context.Context, userID string, from time.Time) ([]model.Shift, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]model.Shift, error)
	HasOnDate(ctx context.Context, userID string, date time.Time) (bool, error)
}

// shiftRepo ShiftRepository 的 GORM 实现
type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo 创建 ShiftRepository 实例
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Where("shift_id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) ListByUser(ctx context.Context, userID string) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("shift_date ASC, start_time ASC").
		Find(&shifts).Error
	if err != nil {
		return nil, err
	}
	return shifts, nil
}

func (r *shiftRepo) ListUpcoming(ctx context.Context, userID string, from time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND shift_date >= ?", userID, from).
		Order("shift_date ASC, start_time ASC").
		Find(&shifts).Error
	if err != nil {
		return nil, err
	}
	return shifts, nil
}

func (r *shiftRepo) ListInRange(ctx context.Context, from, to time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("shift_date >= ? AND shift_date <= ?", from, to).
		Order("shift_date ASC, start_time ASC").
		Find(&shifts).Error
	if err != nil {
		return nil, err
	}
	return shifts, nil
}

func (r *shiftRepo) HasOnDate(ctx context.Context, userID string, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("user_id = ? AND shift_date = ?", userID, date).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
