package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/renteduse/roster-request-flow/internal/model"
	"github.com/renteduse/roster-request-flow/internal/repository"
	pkgerrors "github.com/renteduse/roster-request-flow/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// 内存 Mock Repository（测试专用）
//
// 状态转移严格模拟乐观锁语义：
// 版本不匹配时返回 ErrOptimisticLock，与 GORM 实现行为一致
// ═══════════════════════════════════════════════════════════

// ── mockUserRepo ──

type mockUserRepo struct {
	users map[string]*model.User // user_id → user
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(u *model.User) *model.User {
	if u.Version == 0 {
		u.Version = 1
	}
	m.users[u.UserID] = u
	return u
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

// ── mockShiftRepo ──

type mockShiftRepo struct {
	shifts map[string]*model.Shift
	users  *mockUserRepo
}

func newMockShiftRepo(users *mockUserRepo) *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift), users: users}
}

func (m *mockShiftRepo) add(s *model.Shift) *model.Shift {
	if s.Version == 0 {
		s.Version = 1
	}
	m.shifts[s.ShiftID] = s
	return s
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	s, ok := m.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func sortShifts(shifts []model.Shift) {
	sort.Slice(shifts, func(i, j int) bool {
		if !shifts[i].ShiftDate.Equal(shifts[j].ShiftDate) {
			return shifts[i].ShiftDate.Before(shifts[j].ShiftDate)
		}
		return shifts[i].StartTime < shifts[j].StartTime
	})
}

func (m *mockShiftRepo) ListByUser(_ context.Context, userID string) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.UserID == userID {
			result = append(result, *s)
		}
	}
	sortShifts(result)
	return result, nil
}

func (m *mockShiftRepo) ListUpcoming(_ context.Context, userID string, from time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.UserID == userID && !s.ShiftDate.Before(from) {
			result = append(result, *s)
		}
	}
	sortShifts(result)
	return result, nil
}

func (m *mockShiftRepo) ListInRange(_ context.Context, from, to time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.ShiftDate.Before(from) || s.ShiftDate.After(to) {
			continue
		}
		cp := *s
		if owner, ok := m.users.users[s.UserID]; ok {
			ownerCp := *owner
			cp.Owner = &ownerCp
		}
		result = append(result, cp)
	}
	sortShifts(result)
	return result, nil
}

func (m *mockShiftRepo) HasOnDate(_ context.Context, userID string, date time.Time) (bool, error) {
	for _, s := range m.shifts {
		if s.UserID == userID && s.SameDay(date) {
			return true, nil
		}
	}
	return false, nil
}

// ── mockSwapRepo ──

type mockSwapRepo struct {
	swaps  map[string]*model.SwapRequest
	shifts *mockShiftRepo
	users  *mockUserRepo
	seq    int

	// staleReads > 0 时 GetByID 返回落后一个版本的副本，
	// 模拟读取后被并发写入者抢先提交的场景
	staleReads int
}

func newMockSwapRepo(shifts *mockShiftRepo, users *mockUserRepo) *mockSwapRepo {
	return &mockSwapRepo{
		swaps:  make(map[string]*model.SwapRequest),
		shifts: shifts,
		users:  users,
	}
}

func (m *mockSwapRepo) add(r *model.SwapRequest) *model.SwapRequest {
	if r.SwapRequestID == "" {
		m.seq++
		r.SwapRequestID = fmt.Sprintf("swap-%04d", m.seq)
	}
	if r.Version == 0 {
		r.Version = 1
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.UpdatedAt = r.CreatedAt
	m.swaps[r.SwapRequestID] = r
	return r
}

func (m *mockSwapRepo) Create(_ context.Context, req *model.SwapRequest) error {
	// 模拟部分唯一索引：同一班次最多一条活跃申请
	for _, existing := range m.swaps {
		if existing.ShiftID == req.ShiftID && !existing.IsTerminal() {
			return gorm.ErrDuplicatedKey
		}
	}
	m.add(req)
	return nil
}

// preload 填充关联对象，模拟 GORM Preload
func (m *mockSwapRepo) preload(r *model.SwapRequest) {
	if s, ok := m.shifts.shifts[r.ShiftID]; ok {
		cp := *s
		r.Shift = &cp
	}
	if u, ok := m.users.users[r.RequesterID]; ok {
		cp := *u
		r.Requester = &cp
	}
	if r.VolunteerID != nil {
		if u, ok := m.users.users[*r.VolunteerID]; ok {
			cp := *u
			r.Volunteer = &cp
		}
	}
}

func (m *mockSwapRepo) GetByID(_ context.Context, id string) (*model.SwapRequest, error) {
	stored, ok := m.swaps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *stored
	if m.staleReads > 0 {
		m.staleReads--
		cp.Version--
	}
	m.preload(&cp)
	return &cp, nil
}

func (m *mockSwapRepo) UpdateStatus(_ context.Context, req *model.SwapRequest) error {
	stored, ok := m.swaps[req.SwapRequestID]
	if !ok || stored.Version != req.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = req.Status
	stored.VolunteerID = req.VolunteerID
	stored.DecidedBy = req.DecidedBy
	stored.DecidedAt = req.DecidedAt
	stored.RejectReason = req.RejectReason
	stored.UpdatedBy = req.UpdatedBy
	stored.UpdatedAt = time.Now()
	stored.Version++
	return nil
}

func (m *mockSwapRepo) ApproveAndReassign(ctx context.Context, req *model.SwapRequest, shift *model.Shift, newOwnerID string) error {
	stored, ok := m.swaps[req.SwapRequestID]
	if !ok || stored.Version != req.Version {
		return pkgerrors.ErrOptimisticLock
	}
	// 先检查班次版本，保证两步要么都生效要么都不生效
	storedShift, ok := m.shifts.shifts[shift.ShiftID]
	if !ok || storedShift.Version != shift.Version {
		return pkgerrors.ErrOptimisticLock
	}

	stored.Status = req.Status
	stored.DecidedBy = req.DecidedBy
	stored.DecidedAt = req.DecidedAt
	stored.UpdatedBy = req.UpdatedBy
	stored.UpdatedAt = time.Now()
	stored.Version++

	storedShift.UserID = newOwnerID
	storedShift.Version++
	return nil
}

func (m *mockSwapRepo) ListOpenExcluding(_ context.Context, userID string) ([]model.SwapRequest, error) {
	var result []model.SwapRequest
	for _, r := range m.swaps {
		if r.Status == model.SwapStatusOpen && r.RequesterID != userID {
			cp := *r
			m.preload(&cp)
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockSwapRepo) ListPending(_ context.Context) ([]model.SwapRequest, error) {
	var result []model.SwapRequest
	for _, r := range m.swaps {
		if r.Status == model.SwapStatusPendingApproval {
			cp := *r
			m.preload(&cp)
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockSwapRepo) ListByParticipant(_ context.Context, userID string) ([]model.SwapRequest, error) {
	var result []model.SwapRequest
	for _, r := range m.swaps {
		if r.RequesterID == userID || (r.VolunteerID != nil && *r.VolunteerID == userID) {
			cp := *r
			m.preload(&cp)
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockSwapRepo) ExistsActiveForShift(_ context.Context, shiftID string) (bool, error) {
	for _, r := range m.swaps {
		if r.ShiftID == shiftID && !r.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSwapRepo) ListCreatedSince(_ context.Context, since time.Time) ([]model.SwapRequest, error) {
	var result []model.SwapRequest
	for _, r := range m.swaps {
		if !r.CreatedAt.Before(since) {
			cp := *r
			m.preload(&cp)
			result = append(result, cp)
		}
	}
	return result, nil
}

// ── mockNotificationRepo ──

type mockNotificationRepo struct {
	items      []*model.Notification
	seq        int
	failCreate bool
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if m.failCreate {
		return gorm.ErrInvalidDB
	}
	m.seq++
	if n.NotificationID == "" {
		n.NotificationID = fmt.Sprintf("notif-%04d", m.seq)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.items = append(m.items, n)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var filtered []model.Notification
	for _, n := range m.items {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		filtered = append(filtered, *n)
	}
	// 未读在前，同组内按创建时间倒序
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].IsRead != filtered[j].IsRead {
			return !filtered[i].IsRead
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := int64(len(filtered))
	if offset >= len(filtered) {
		return []model.Notification{}, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	for _, n := range m.items {
		if n.NotificationID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range m.items {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

// byUser 取某用户的全部通知（断言辅助）
func (m *mockNotificationRepo) byUser(userID string) []*model.Notification {
	var result []*model.Notification
	for _, n := range m.items {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result
}

// ── 聚合装配 ──

type mockRepos struct {
	user         *mockUserRepo
	shift        *mockShiftRepo
	swap         *mockSwapRepo
	notification *mockNotificationRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	users := newMockUserRepo()
	shifts := newMockShiftRepo(users)
	swaps := newMockSwapRepo(shifts, users)
	notifications := newMockNotificationRepo()

	repo := &repository.Repository{
		User:         users,
		Shift:        shifts,
		SwapRequest:  swaps,
		Notification: notifications,
	}
	return repo, &mockRepos{
		user:         users,
		shift:        shifts,
		swap:         swaps,
		notification: notifications,
	}
}

// dateOn 构造零点日历日（测试数据辅助）
func dateOn(offsetDays int) time.Time {
	now := time.Now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, offsetDays)
}

func strPtr(s string) *string { return &s }
