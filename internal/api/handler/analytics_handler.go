package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/renteduse/roster-request-flow/internal/dto"
	"github.com/renteduse/roster-request-flow/internal/service"
	"github.com/renteduse/roster-request-flow/pkg/response"
)

// AnalyticsHandler 换班统计模块 HTTP 处理器
type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

// NewAnalyticsHandler 创建 AnalyticsHandler
func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// Summary 换班统计摘要（店长）
// GET /api/v1/analytics/summary
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	var req dto.AnalyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.analyticsSvc.Summary(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
