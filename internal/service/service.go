package service

import (
	"go.uber.org/zap"

	"github.com/renteduse/roster-request-flow/config"
	"github.com/renteduse/roster-request-flow/internal/repository"
	"github.com/renteduse/roster-request-flow/pkg/jwt"
	"github.com/renteduse/roster-request-flow/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Shift        ShiftService
	Swap         SwapService
	Notification NotificationService
	Analytics    AnalyticsService
	Export       ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	notificationSvc := NewNotificationService(repo, logger)
	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Shift:        NewShiftService(repo, logger),
		Swap:         NewSwapService(repo, notificationSvc, logger),
		Notification: notificationSvc,
		Analytics:    NewAnalyticsService(repo, logger),
		Export:       NewExportService(repo, logger),
	}
}
