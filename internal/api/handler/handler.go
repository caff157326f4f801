package handler

import "github.com/renteduse/roster-request-flow/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Shift        *ShiftHandler
	Swap         *SwapHandler
	Notification *NotificationHandler
	Analytics    *AnalyticsHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Shift:        NewShiftHandler(svc.Shift),
		Swap:         NewSwapHandler(svc.Swap),
		Notification: NewNotificationHandler(svc.Notification),
		Analytics:    NewAnalyticsHandler(svc.Analytics),
		Export:       NewExportHandler(svc.Export),
	}
}
