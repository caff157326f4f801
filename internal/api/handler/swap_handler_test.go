package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/renteduse/roster-request-flow/internal/dto"
	"github.com/renteduse/roster-request-flow/internal/service"
	"github.com/renteduse/roster-request-flow/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockSwapService 按预设返回值响应的桩实现
type mockSwapService struct {
	resp *dto.SwapRequestResponse
	err  error
}

func (m *mockSwapService) Create(context.Context, *dto.CreateSwapRequest, string) (*dto.SwapRequestResponse, error) {
	return m.resp, m.err
}
func (m *mockSwapService) Volunteer(context.Context, string, string) (*dto.SwapRequestResponse, error) {
	return m.resp, m.err
}
func (m *mockSwapService) Approve(context.Context, string, string, string) (*dto.SwapRequestResponse, error) {
	return m.resp, m.err
}
func (m *mockSwapService) Reject(context.Context, string, *dto.RejectSwapRequest, string, string) (*dto.SwapRequestResponse, error) {
	return m.resp, m.err
}
func (m *mockSwapService) Cancel(context.Context, string, string) (*dto.SwapRequestResponse, error) {
	return m.resp, m.err
}
func (m *mockSwapService) GetByID(context.Context, string) (*dto.SwapRequestResponse, error) {
	return m.resp, m.err
}
func (m *mockSwapService) ListBoard(context.Context, string) ([]dto.BoardEntryResponse, error) {
	return nil, m.err
}
func (m *mockSwapService) ListPending(context.Context) ([]dto.SwapRequestResponse, error) {
	return nil, m.err
}
func (m *mockSwapService) History(context.Context, string) (*dto.SwapHistoryResponse, error) {
	return nil, m.err
}
func (m *mockSwapService) CheckConflict(context.Context, string, string) (*dto.ConflictCheckResponse, error) {
	return &dto.ConflictCheckResponse{}, m.err
}

// fakeAuth 注入已认证用户上下文，替代 JWT 中间件
func fakeAuth(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func setupSwapRouter(svc service.SwapService, userID, role string) *gin.Engine {
	h := NewSwapHandler(svc)
	r := gin.New()
	g := r.Group("/api/v1/swaps", fakeAuth(userID, role))
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/volunteer", h.Volunteer)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/cancel", h.Cancel)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("序列化请求体失败: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v, body=%s", err, w.Body.String())
	}
	return w, resp
}

func TestSwapHandlerCreate(t *testing.T) {
	svc := &mockSwapService{resp: &dto.SwapRequestResponse{ID: "swap-1", Status: "open"}}
	r := setupSwapRouter(svc, "staff-1", "staff")

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/swaps", dto.CreateSwapRequest{
		ShiftID: "4f8b7cbe-9f4d-4c43-9a9a-3a2b1c0d9e8f",
		Reason:  "家里有事",
	})
	if w.Code != http.StatusCreated {
		t.Errorf("期望 201，实际=%d", w.Code)
	}
	if resp.Code != 0 {
		t.Errorf("期望业务码 0，实际=%d", resp.Code)
	}
}

func TestSwapHandlerCreate_参数校验(t *testing.T) {
	svc := &mockSwapService{}
	r := setupSwapRouter(svc, "staff-1", "staff")

	// shift_id 不是 UUID，reason 缺失
	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/swaps", map[string]string{"shift_id": "nope"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
	if resp.Code != 10001 {
		t.Errorf("期望业务码 10001，实际=%d", resp.Code)
	}
}

func TestSwapHandlerVolunteer_状态错误(t *testing.T) {
	svc := &mockSwapService{err: service.ErrSwapInvalidState}
	r := setupSwapRouter(svc, "staff-2", "staff")

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/swaps/swap-1/volunteer", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("期望 409，实际=%d", w.Code)
	}
	if resp.Code != 13003 {
		t.Errorf("期望业务码 13003，实际=%d", resp.Code)
	}
}

func TestSwapHandlerApprove_无权限(t *testing.T) {
	svc := &mockSwapService{err: service.ErrSwapUnauthorized}
	r := setupSwapRouter(svc, "staff-2", "staff")

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/swaps/swap-1/approve", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("期望 403，实际=%d", w.Code)
	}
	if resp.Code != 13004 {
		t.Errorf("期望业务码 13004，实际=%d", resp.Code)
	}
}

func TestSwapHandlerGetByID_不存在(t *testing.T) {
	svc := &mockSwapService{err: service.ErrSwapNotFound}
	r := setupSwapRouter(svc, "staff-1", "staff")

	w, resp := doRequest(t, r, http.MethodGet, "/api/v1/swaps/swap-missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际=%d", w.Code)
	}
	if resp.Code != 13001 {
		t.Errorf("期望业务码 13001，实际=%d", resp.Code)
	}
}

func TestSwapHandler_未认证(t *testing.T) {
	svc := &mockSwapService{resp: &dto.SwapRequestResponse{}}
	h := NewSwapHandler(svc)
	r := gin.New()
	// 不挂 fakeAuth：上下文缺少 user_id
	r.POST("/api/v1/swaps/:id/cancel", h.Cancel)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/swaps/swap-1/cancel", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际=%d", w.Code)
	}
	if resp.Code != 10002 {
		t.Errorf("期望业务码 10002，实际=%d", resp.Code)
	}
}
