package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/renteduse/roster-request-flow/internal/dto"
	"github.com/renteduse/roster-request-flow/internal/service"
	"github.com/renteduse/roster-request-flow/pkg/response"
)

// ShiftHandler 班次模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// ListMyShifts 我的全部班次
// GET /api/v1/shifts/me
func (h *ShiftHandler) ListMyShifts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.shiftSvc.ListMyShifts(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListUpcomingShifts 我的未来班次（按日期、开始时间升序）
// GET /api/v1/shifts/me/upcoming
func (h *ShiftHandler) ListUpcomingShifts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpcomingShiftsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.shiftSvc.ListUpcomingShifts(c.Request.Context(), userID, req.From)
	if err != nil {
		if errors.Is(err, service.ErrShiftDateInvalid) {
			response.BadRequest(c, 12001, "日期格式无效")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Calendar 我的班次 iCalendar 订阅
// GET /api/v1/shifts/me/calendar.ics
func (h *ShiftHandler) Calendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ics, err := h.shiftSvc.BuildCalendar(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shifts.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}
