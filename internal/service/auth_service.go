package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/renteduse/roster-request-flow/config"
	"github.com/renteduse/roster-request-flow/internal/dto"
	"github.com/renteduse/roster-request-flow/internal/model"
	"github.com/renteduse/roster-request-flow/internal/repository"
	"github.com/renteduse/roster-request-flow/pkg/jwt"
	"github.com/renteduse/roster-request-flow/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials  = errors.New("邮箱或密码错误")
	ErrUserNotFound        = errors.New("用户不存在")
	ErrWrongOldPassword    = errors.New("原密码不正确")
	ErrRefreshTokenInvalid = errors.New("refresh token 无效")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time, userID string) error
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserDetailResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client // 可为 nil（降级：登出仅为无状态操作）
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token 对
	return s.issueTokens(user, req.RememberMe)
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time, userID string) error {
	if s.rdb == nil {
		s.logger.Warn("Redis 不可用，登出未写入黑名单", zap.String("user_id", userID))
		return nil
	}
	if err := s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("写入 Token 黑名单失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	if claims.TokenType != "refresh" {
		return nil, ErrRefreshTokenInvalid
	}

	// 黑名单中的 refresh token 不可续签
	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("检查 Token 黑名单失败", zap.Error(err))
		} else if blacklisted {
			return nil, ErrRefreshTokenInvalid
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	return s.issueTokens(user, claims.RememberMe)
}

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	return &dto.UserDetailResponse{
		ID:         user.UserID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Department: departmentLabel(user),
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongOldPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("生成密码哈希失败", zap.Error(err))
		return err
	}

	user.PasswordHash = string(hash)
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新密码失败", zap.Error(err))
		return err
	}
	return nil
}

// issueTokens 为用户签发 access/refresh Token 对
func (s *authService) issueTokens(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	dept := departmentLabel(user)

	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, dept)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, dept, rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User:         toUserResponse(user),
	}, nil
}

// departmentLabel 取部门标签（可为空）
func departmentLabel(user *model.User) string {
	if user.Department == nil {
		return ""
	}
	return *user.Department
}

// toUserResponse 模型转响应 DTO
func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         user.UserID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Department: departmentLabel(user),
	}
}
