package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/renteduse/roster-request-flow/internal/dto"
	"github.com/renteduse/roster-request-flow/internal/service"
	"github.com/renteduse/roster-request-flow/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, 11001, "邮箱或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	jti, expiresAt, ok := MustGetTokenInfo(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, expiresAt, userID); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenInvalid):
			response.Error(c, http.StatusUnauthorized, 11002, "refresh token 无效")
		case errors.Is(err, service.ErrUserNotFound):
			response.Error(c, http.StatusUnauthorized, 11004, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// GetCurrentUser 当前登录用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 11004, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrWrongOldPassword):
			response.BadRequest(c, 11003, "原密码不正确")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 11004, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}
