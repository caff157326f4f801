package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/renteduse/roster-request-flow/config"
	"github.com/renteduse/roster-request-flow/internal/dto"
	"github.com/renteduse/roster-request-flow/internal/model"
	"github.com/renteduse/roster-request-flow/pkg/jwt"
)

func setupTestAuthService(t *testing.T) (AuthService, *mockRepos, *jwt.Manager) {
	t.Helper()

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-tests",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 168 * time.Hour,
		},
	}

	repo, mocks := newMockRepository()

	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	mocks.user.add(&model.User{
		UserID:       "user-1",
		Name:         "张三",
		Email:        "zhangsan@example.com",
		PasswordHash: string(hash),
		Role:         model.RoleStaff,
		Department:   strPtr("前厅"),
	})

	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop())
	return svc, mocks, jwtMgr
}

func TestAuthLogin(t *testing.T) {
	svc, _, jwtMgr := setupTestAuthService(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "123456",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("期望返回 Token 对")
	}
	if resp.User.ID != "user-1" || resp.User.Department != "前厅" {
		t.Errorf("用户信息不正确: %+v", resp.User)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("解析 AccessToken 失败: %v", err)
	}
	if claims.UserID != "user-1" || claims.TokenType != "access" {
		t.Errorf("Claims 不正确: %+v", claims)
	}
}

func TestAuthLogin_密码错误(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际=%v", err)
	}
}

func TestAuthLogin_邮箱不存在(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "123456",
	})
	// 不泄露邮箱是否注册：与密码错误返回同一错误
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际=%v", err)
	}
}

func TestAuthRefreshToken(t *testing.T) {
	svc, _, jwtMgr := setupTestAuthService(t)

	refreshToken, err := jwtMgr.GenerateRefreshToken("user-1", model.RoleStaff, "前厅", false)
	if err != nil {
		t.Fatalf("生成 RefreshToken 失败: %v", err)
	}

	resp, err := svc.RefreshToken(context.Background(), refreshToken)
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("期望返回新的 AccessToken")
	}
}

func TestAuthRefreshToken_用AccessToken刷新(t *testing.T) {
	svc, _, jwtMgr := setupTestAuthService(t)

	accessToken, err := jwtMgr.GenerateAccessToken("user-1", model.RoleStaff, "前厅")
	if err != nil {
		t.Fatalf("生成 AccessToken 失败: %v", err)
	}

	_, err = svc.RefreshToken(context.Background(), accessToken)
	if !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Errorf("期望 ErrRefreshTokenInvalid，实际=%v", err)
	}
}

func TestAuthRefreshToken_非法Token(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	_, err := svc.RefreshToken(context.Background(), "not-a-jwt")
	if !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Errorf("期望 ErrRefreshTokenInvalid，实际=%v", err)
	}
}

func TestAuthGetCurrentUser(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	resp, err := svc.GetCurrentUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if resp.Email != "zhangsan@example.com" || resp.Role != model.RoleStaff {
		t.Errorf("用户信息不正确: %+v", resp)
	}

	if _, err := svc.GetCurrentUser(context.Background(), "user-missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际=%v", err)
	}
}

func TestAuthChangePassword(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "user-1", &dto.ChangePasswordRequest{
		OldPassword: "123456",
		NewPassword: "new-password-1",
	})
	if err != nil {
		t.Fatalf("修改密码失败: %v", err)
	}

	// 旧密码登录应失败，新密码应成功
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "zhangsan@example.com", Password: "123456"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码应失效，实际=%v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "zhangsan@example.com", Password: "new-password-1"}); err != nil {
		t.Errorf("新密码登录失败: %v", err)
	}
}

func TestAuthChangePassword_原密码错误(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	err := svc.ChangePassword(context.Background(), "user-1", &dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "new-password-1",
	})
	if !errors.Is(err, ErrWrongOldPassword) {
		t.Errorf("期望 ErrWrongOldPassword，实际=%v", err)
	}
}

func TestAuthLogout_Redis不可用时降级(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	// rdb 为 nil 时登出直接成功，不写黑名单
	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour), "user-1"); err != nil {
		t.Errorf("降级登出不应失败: %v", err)
	}
}
