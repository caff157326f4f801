package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/renteduse/roster-request-flow/internal/dto"
	"github.com/renteduse/roster-request-flow/internal/model"
	"github.com/renteduse/roster-request-flow/internal/repository"
)

var ErrNotificationNotFound = errors.New("通知不存在")

// NotificationService 通知业务接口
type NotificationService interface {
	List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	// PushSwapEvent 写入换班事件通知。
	// 最大努力投递：失败仅记录日志，不影响触发它的业务操作
	PushSwapEvent(ctx context.Context, userID, eventType, title, content, swapRequestID string)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	notifications, total, err := s.repo.Notification.ListByUser(
		ctx, userID, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		resp := dto.NotificationResponse{
			ID:        n.NotificationID,
			Type:      n.Type,
			Title:     n.Title,
			Content:   n.Content,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}
		if n.RelatedType != nil {
			resp.RelatedType = *n.RelatedType
		}
		if n.RelatedID != nil {
			resp.RelatedID = *n.RelatedID
		}
		result = append(result, resp)
	}
	return result, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.Notification.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		s.logger.Error("标记通知已读失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.Notification.MarkAllRead(ctx, userID); err != nil {
		s.logger.Error("标记全部已读失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *notificationService) PushSwapEvent(ctx context.Context, userID, eventType, title, content, swapRequestID string) {
	relatedType := model.RelatedTypeSwapRequest
	n := &model.Notification{
		UserID:      userID,
		Type:        eventType,
		Title:       title,
		Content:     content,
		RelatedType: &relatedType,
		RelatedID:   &swapRequestID,
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Error("写入通知失败",
			zap.String("user_id", userID),
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}
