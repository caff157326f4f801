package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/renteduse/roster-request-flow/internal/model"
	pkgerrors "github.com/renteduse/roster-request-flow/pkg/errors"
)

// SwapRequestRepository 换班申请数据访问接口
//
// 状态转移一律走乐观锁（version 条件更新）：
// 两个并发操作同一条申请时只有一个能命中旧版本行，
// 落败方得到 ErrOptimisticLock，由 Service 层翻译为状态错误
type SwapRequestRepository interface {
	Create(ctx context.Context, req *model.SwapRequest) error
	GetByID(ctx context.Context, id string) (*model.SwapRequest, error)
	UpdateStatus(ctx context.Context, req *model.SwapRequest) error
	ApproveAndReassign(ctx context.Context, req *model.SwapRequest, shift *model.Shift, newOwnerID string) error
	ListOpenExcluding(ctx context.Context, userID string) ([]model.SwapRequest, error)
	ListPending(ctx context.Context) ([]model.SwapRequest, error)
	ListByParticipant(ctx context.Context, userID string) ([]model.SwapRequest, error)
	ExistsActiveForShift(ctx context.Context, shiftID string) (bool, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]model.SwapRequest, error)
}

// swapRequestRepo SwapRequestRepository 的 GORM 实现
type swapRequestRepo struct {
	db *gorm.DB
}

// NewSwapRequestRepo 创建 SwapRequestRepository 实例
func NewSwapRequestRepo(db *gorm.DB) SwapRequestRepository {
	return &swapRequestRepo{db: db}
}

func (r *swapRequestRepo) Create(ctx context.Context, req *model.SwapRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *swapRequestRepo) GetByID(ctx context.Context, id string) (*model.SwapRequest, error) {
	var req model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Requester").
		Preload("Volunteer").
		Where("swap_request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// statusUpdateColumns 状态转移涉及的列
func statusUpdateColumns(req *model.SwapRequest, oldVersion int) map[string]interface{} {
	return map[string]interface{}{
		"status":        req.Status,
		"volunteer_id":  req.VolunteerID,
		"decided_by":    req.DecidedBy,
		"decided_at":    req.DecidedAt,
		"reject_reason": req.RejectReason,
		"updated_by":    req.UpdatedBy,
		"version":       oldVersion + 1,
	}
}

func (r *swapRequestRepo) UpdateStatus(ctx context.Context, req *model.SwapRequest) error {
	oldVersion := req.Version
	result := r.db.WithContext(ctx).
		Model(&model.SwapRequest{}).
		Where("swap_request_id = ? AND version = ?", req.SwapRequestID, oldVersion).
		Updates(statusUpdateColumns(req, oldVersion))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version = oldVersion + 1
	return nil
}

// ApproveAndReassign 在单个事务内完成批准转移：
// 申请状态置为 approved，同时班次归属转移给志愿者。
// 任何一步失败整体回滚，外界不会观察到半完成状态
func (r *swapRequestRepo) ApproveAndReassign(ctx context.Context, req *model.SwapRequest, shift *model.Shift, newOwnerID string) error {
	reqVersion := req.Version
	shiftVersion := shift.Version

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.SwapRequest{}).
			Where("swap_request_id = ? AND version = ?", req.SwapRequestID, reqVersion).
			Updates(statusUpdateColumns(req, reqVersion))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}

		result = tx.Model(&model.Shift{}).
			Where("shift_id = ? AND version = ?", shift.ShiftID, shiftVersion).
			Updates(map[string]interface{}{
				"user_id":    newOwnerID,
				"updated_by": req.UpdatedBy,
				"version":    shiftVersion + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		return nil
	})
	if err != nil {
		return err
	}

	req.Version = reqVersion + 1
	shift.UserID = newOwnerID
	shift.Version = shiftVersion + 1
	return nil
}

func (r *swapRequestRepo) ListOpenExcluding(ctx context.Context, userID string) ([]model.SwapRequest, error) {
	var reqs []model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Requester").
		Where("status = ? AND requester_id <> ?", model.SwapStatusOpen, userID).
		Order("created_at ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *swapRequestRepo) ListPending(ctx context.Context) ([]model.SwapRequest, error) {
	var reqs []model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Requester").
		Preload("Volunteer").
		Where("status = ?", model.SwapStatusPendingApproval).
		Order("created_at ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *swapRequestRepo) ListByParticipant(ctx context.Context, userID string) ([]model.SwapRequest, error) {
	var reqs []model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Requester").
		Preload("Volunteer").
		Where("requester_id = ? OR volunteer_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *swapRequestRepo) ExistsActiveForShift(ctx context.Context, shiftID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SwapRequest{}).
		Where("shift_id = ? AND status IN ?", shiftID, model.ActiveSwapStatuses()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *swapRequestRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]model.SwapRequest, error) {
	var reqs []model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}
