package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/renteduse/roster-request-flow/internal/dto"
	"github.com/renteduse/roster-request-flow/internal/service"
	"github.com/renteduse/roster-request-flow/pkg/response"
)

// SwapHandler 换班申请模块 HTTP 处理器
type SwapHandler struct {
	swapSvc service.SwapService
}

// NewSwapHandler 创建 SwapHandler
func NewSwapHandler(swapSvc service.SwapService) *SwapHandler {
	return &SwapHandler{swapSvc: swapSvc}
}

// writeSwapError 统一映射换班业务错误
func writeSwapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSwapNotFound):
		response.NotFound(c, 13001, "换班申请不存在")
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 12002, "班次不存在")
	case errors.Is(err, service.ErrShiftNotOwned):
		response.Forbidden(c, 13002, "只能为自己的班次发起换班申请")
	case errors.Is(err, service.ErrSwapInvalidState):
		response.Conflict(c, 13003, "当前状态不允许该操作")
	case errors.Is(err, service.ErrSwapUnauthorized):
		response.Forbidden(c, 13004, "无权执行该操作")
	case errors.Is(err, service.ErrSelfVolunteer):
		response.BadRequest(c, 13005, "不能认领自己发起的换班申请")
	case errors.Is(err, service.ErrDuplicateSwap):
		response.Conflict(c, 13006, "该班次已存在未完结的换班申请")
	case errors.Is(err, service.ErrShiftConflict):
		response.Conflict(c, 13007, "当天已有班次，存在排班冲突")
	case errors.Is(err, service.ErrSwapNoVolunteer):
		response.Conflict(c, 13008, "换班申请缺少志愿者")
	default:
		response.InternalError(c)
	}
}

// Create 发起换班申请
// POST /api/v1/swaps
func (h *SwapHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.swapSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		writeSwapError(c, err)
		return
	}

	response.Created(c, result)
}

// GetByID 换班申请详情
// GET /api/v1/swaps/:id
func (h *SwapHandler) GetByID(c *gin.Context) {
	result, err := h.swapSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// ListBoard 换班看板（不含自己发起的开放申请）
// GET /api/v1/swaps/board
func (h *SwapHandler) ListBoard(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.ListBoard(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListPending 待审批列表（店长）
// GET /api/v1/swaps/pending
func (h *SwapHandler) ListPending(c *gin.Context) {
	result, err := h.swapSvc.ListPending(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// History 我的换班历史（发起 / 认领两栏）
// GET /api/v1/swaps/history
func (h *SwapHandler) History(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.History(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Volunteer 认领换班申请
// POST /api/v1/swaps/:id/volunteer
func (h *SwapHandler) Volunteer(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Volunteer(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// Approve 批准换班申请（店长）
// POST /api/v1/swaps/:id/approve
func (h *SwapHandler) Approve(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Approve(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		writeSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// Reject 驳回换班申请（店长）
// POST /api/v1/swaps/:id/reject
func (h *SwapHandler) Reject(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.RejectSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.swapSvc.Reject(c.Request.Context(), c.Param("id"), &req, userID, role)
	if err != nil {
		writeSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// Cancel 撤回换班申请（仅发起人）
// POST /api/v1/swaps/:id/cancel
func (h *SwapHandler) Cancel(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Cancel(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// CheckConflict 检查认领当日是否已有班次
// GET /api/v1/swaps/:id/conflict
func (h *SwapHandler) CheckConflict(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.CheckConflict(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeSwapError(c, err)
		return
	}

	response.OK(c, result)
}
