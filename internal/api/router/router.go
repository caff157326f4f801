package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/renteduse/roster-request-flow/config"
	"github.com/renteduse/roster-request-flow/internal/api/handler"
	"github.com/renteduse/roster-request-flow/internal/api/middleware"
	"github.com/renteduse/roster-request-flow/internal/model"
	"github.com/renteduse/roster-request-flow/pkg/jwt"
	"github.com/renteduse/roster-request-flow/pkg/redis"
)

const (
	maxBodyBytes   = 1 << 20 // 1MB
	loginRateLimit = 10      // 每窗口最多登录尝试次数
	loginRateWin   = time.Minute
)

// Setup 组装全部路由与中间件
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// ── 公开路由 ──
	auth := v1.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimit(rdb, loginRateLimit, loginRateWin), h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}

	// ── 登录后路由 ──
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		authorized.POST("/auth/logout", h.Auth.Logout)
		authorized.GET("/auth/me", h.Auth.GetCurrentUser)
		authorized.PUT("/auth/password", h.Auth.ChangePassword)

		shifts := authorized.Group("/shifts")
		{
			shifts.GET("/me", h.Shift.ListMyShifts)
			shifts.GET("/me/upcoming", h.Shift.ListUpcomingShifts)
			shifts.GET("/me/calendar.ics", h.Shift.Calendar)
		}

		swaps := authorized.Group("/swaps")
		{
			swaps.POST("", h.Swap.Create)
			swaps.GET("/board", h.Swap.ListBoard)
			swaps.GET("/history", h.Swap.History)
			swaps.GET("/pending", middleware.RoleAuth(model.RoleManager), h.Swap.ListPending)
			swaps.GET("/:id", h.Swap.GetByID)
			swaps.GET("/:id/conflict", h.Swap.CheckConflict)
			swaps.POST("/:id/volunteer", h.Swap.Volunteer)
			swaps.POST("/:id/approve", middleware.RoleAuth(model.RoleManager), h.Swap.Approve)
			swaps.POST("/:id/reject", middleware.RoleAuth(model.RoleManager), h.Swap.Reject)
			swaps.POST("/:id/cancel", h.Swap.Cancel)
		}

		notifications := authorized.Group("/notifications")
		{
			notifications.GET("", h.Notification.List)
			notifications.PUT("/read-all", h.Notification.MarkAllRead)
			notifications.PUT("/:id/read", h.Notification.MarkRead)
		}

		analytics := authorized.Group("/analytics")
		analytics.Use(middleware.RoleAuth(model.RoleManager))
		{
			analytics.GET("/summary", h.Analytics.Summary)
		}

		export := authorized.Group("/export")
		export.Use(middleware.RoleAuth(model.RoleManager))
		{
			export.GET("/schedule", h.Export.ExportSchedule)
		}
	}

	return r
}
