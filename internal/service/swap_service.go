package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/renteduse/roster-request-flow/internal/dto"
	"github.com/renteduse/roster-request-flow/internal/model"
	"github.com/renteduse/roster-request-flow/internal/repository"
	pkgerrors "github.com/renteduse/roster-request-flow/pkg/errors"
)

// ── 换班模块业务错误 ──

var (
	ErrSwapNotFound     = errors.New("换班申请不存在")
	ErrShiftNotFound    = errors.New("班次不存在")
	ErrShiftNotOwned    = errors.New("只能为自己的班次发起换班申请")
	ErrSwapInvalidState = errors.New("当前状态不允许该操作")
	ErrSwapUnauthorized = errors.New("无权执行该操作")
	ErrSelfVolunteer    = errors.New("不能认领自己发起的换班申请")
	ErrDuplicateSwap    = errors.New("该班次已存在未完结的换班申请")
	ErrShiftConflict    = errors.New("当天已有班次，认领会导致重复排班")
	ErrSwapNoVolunteer  = errors.New("换班申请缺少志愿者")
)

// SwapService 换班业务接口
//
// 状态机：open → pending_approval → approved | rejected；
// open / pending_approval → cancelled（仅申请人）。
// 终态之间不允许任何转移；所有转移要么整体生效要么失败，
// 并发转移由乐观锁保证最多一个胜者（落败方视为状态错误）
type SwapService interface {
	Create(ctx context.Context, req *dto.CreateSwapRequest, requesterID string) (*dto.SwapRequestResponse, error)
	Volunteer(ctx context.Context, requestID, volunteerID string) (*dto.SwapRequestResponse, error)
	Approve(ctx context.Context, requestID, approverID, approverRole string) (*dto.SwapRequestResponse, error)
	Reject(ctx context.Context, requestID string, req *dto.RejectSwapRequest, approverID, approverRole string) (*dto.SwapRequestResponse, error)
	Cancel(ctx context.Context, requestID, actorID string) (*dto.SwapRequestResponse, error)
	GetByID(ctx context.Context, requestID string) (*dto.SwapRequestResponse, error)
	ListBoard(ctx context.Context, userID string) ([]dto.BoardEntryResponse, error)
	ListPending(ctx context.Context) ([]dto.SwapRequestResponse, error)
	History(ctx context.Context, userID string) (*dto.SwapHistoryResponse, error)
	CheckConflict(ctx context.Context, requestID, userID string) (*dto.ConflictCheckResponse, error)
}

type swapService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewSwapService 创建 SwapService 实例
func NewSwapService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) SwapService {
	return &swapService{repo: repo, notifier: notifier, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// 写操作（状态转移）
// ═══════════════════════════════════════════════════════════

func (s *swapService) Create(ctx context.Context, req *dto.CreateSwapRequest, requesterID string) (*dto.SwapRequestResponse, error) {
	// 1. 班次必须存在且归属申请人
	shift, err := s.repo.Shift.GetByID(ctx, req.ShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, err
	}
	if shift.UserID != requesterID {
		return nil, ErrShiftNotOwned
	}

	// 2. 同一班次最多一条活跃申请
	exists, err := s.repo.SwapRequest.ExistsActiveForShift(ctx, req.ShiftID)
	if err != nil {
		s.logger.Error("查询活跃换班申请失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateSwap
	}

	// 3. 创建（数据库部分唯一索引兜底并发创建）
	swap := &model.SwapRequest{
		RequesterID: requesterID,
		ShiftID:     req.ShiftID,
		Reason:      req.Reason,
		Status:      model.SwapStatusOpen,
	}
	swap.CreatedBy = &requesterID
	if err := s.repo.SwapRequest.Create(ctx, swap); err != nil {
		s.logger.Error("创建换班申请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("换班申请已创建",
		zap.String("swap_request_id", swap.SwapRequestID),
		zap.String("requester_id", requesterID),
		zap.String("shift_id", req.ShiftID),
	)

	resp := toSwapResponse(swap)
	return &resp, nil
}

func (s *swapService) Volunteer(ctx context.Context, requestID, volunteerID string) (*dto.SwapRequestResponse, error) {
	swap, err := s.getSwap(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if swap.Status != model.SwapStatusOpen {
		return nil, ErrSwapInvalidState
	}
	if swap.RequesterID == volunteerID {
		return nil, ErrSelfVolunteer
	}

	// 志愿者当天已有班次则拒绝，避免重复排班
	if swap.Shift != nil {
		conflict, err := s.repo.Shift.HasOnDate(ctx, volunteerID, swap.Shift.ShiftDate)
		if err != nil {
			s.logger.Error("检查班次冲突失败", zap.Error(err))
			return nil, err
		}
		if conflict {
			return nil, ErrShiftConflict
		}
	}

	swap.Status = model.SwapStatusPendingApproval
	swap.VolunteerID = &volunteerID
	swap.UpdatedBy = &volunteerID

	if err := s.repo.SwapRequest.UpdateStatus(ctx, swap); err != nil {
		// 并发认领：另一个志愿者已抢先完成转移
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrSwapInvalidState
		}
		s.logger.Error("更新换班申请失败", zap.Error(err))
		return nil, err
	}

	s.notifier.PushSwapEvent(ctx, swap.RequesterID, model.NotificationTypeSwapVolunteered,
		"换班申请有志愿者了", "你的换班申请已有同事认领，等待经理审批", swap.SwapRequestID)

	s.logger.Info("换班申请已被认领",
		zap.String("swap_request_id", swap.SwapRequestID),
		zap.String("volunteer_id", volunteerID),
	)

	resp := toSwapResponse(swap)
	return &resp, nil
}

func (s *swapService) Approve(ctx context.Context, requestID, approverID, approverRole string) (*dto.SwapRequestResponse, error) {
	if approverRole != model.RoleManager {
		return nil, ErrSwapUnauthorized
	}

	swap, err := s.getSwap(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if swap.Status != model.SwapStatusPendingApproval {
		return nil, ErrSwapInvalidState
	}
	if swap.VolunteerID == nil {
		// pending_approval 必然有志愿者；防御数据异常
		return nil, ErrSwapNoVolunteer
	}

	// 重新读取班次，避免用预加载的过期版本做乐观锁更新
	shift, err := s.repo.Shift.GetByID(ctx, swap.ShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	swap.Status = model.SwapStatusApproved
	swap.DecidedBy = &approverID
	swap.DecidedAt = &now
	swap.UpdatedBy = &approverID

	// 批准与班次归属转移在同一事务内完成
	if err := s.repo.SwapRequest.ApproveAndReassign(ctx, swap, shift, *swap.VolunteerID); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrSwapInvalidState
		}
		s.logger.Error("批准换班申请失败", zap.Error(err))
		return nil, err
	}

	s.notifier.PushSwapEvent(ctx, swap.RequesterID, model.NotificationTypeSwapApproved,
		"换班申请已批准", "你的换班申请已获批准，班次已转移给志愿者", swap.SwapRequestID)
	s.notifier.PushSwapEvent(ctx, *swap.VolunteerID, model.NotificationTypeSwapApproved,
		"换班已批准", "你认领的换班已获批准，该班次现在归你", swap.SwapRequestID)

	s.logger.Info("换班申请已批准",
		zap.String("swap_request_id", swap.SwapRequestID),
		zap.String("approver_id", approverID),
		zap.String("new_owner_id", *swap.VolunteerID),
	)

	resp := toSwapResponse(swap)
	return &resp, nil
}

func (s *swapService) Reject(ctx context.Context, requestID string, req *dto.RejectSwapRequest, approverID, approverRole string) (*dto.SwapRequestResponse, error) {
	if approverRole != model.RoleManager {
		return nil, ErrSwapUnauthorized
	}

	swap, err := s.getSwap(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if swap.Status != model.SwapStatusPendingApproval {
		return nil, ErrSwapInvalidState
	}

	now := time.Now()
	swap.Status = model.SwapStatusRejected
	swap.DecidedBy = &approverID
	swap.DecidedAt = &now
	swap.UpdatedBy = &approverID
	if req != nil {
		swap.RejectReason = req.Reason
	}

	if err := s.repo.SwapRequest.UpdateStatus(ctx, swap); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrSwapInvalidState
		}
		s.logger.Error("驳回换班申请失败", zap.Error(err))
		return nil, err
	}

	s.notifier.PushSwapEvent(ctx, swap.RequesterID, model.NotificationTypeSwapRejected,
		"换班申请被驳回", "你的换班申请未获批准，班次保持不变", swap.SwapRequestID)
	if swap.VolunteerID != nil {
		s.notifier.PushSwapEvent(ctx, *swap.VolunteerID, model.NotificationTypeSwapRejected,
			"换班被驳回", "你认领的换班未获批准", swap.SwapRequestID)
	}

	s.logger.Info("换班申请已驳回",
		zap.String("swap_request_id", swap.SwapRequestID),
		zap.String("approver_id", approverID),
	)

	resp := toSwapResponse(swap)
	return &resp, nil
}

func (s *swapService) Cancel(ctx context.Context, requestID, actorID string) (*dto.SwapRequestResponse, error) {
	swap, err := s.getSwap(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// 仅申请人可撤销
	if swap.RequesterID != actorID {
		return nil, ErrSwapUnauthorized
	}
	// open 可撤销；pending_approval 允许申请人在审批前撤回
	if !swap.CanCancel() {
		return nil, ErrSwapInvalidState
	}

	hadVolunteer := swap.VolunteerID != nil

	swap.Status = model.SwapStatusCancelled
	swap.UpdatedBy = &actorID

	if err := s.repo.SwapRequest.UpdateStatus(ctx, swap); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrSwapInvalidState
		}
		s.logger.Error("撤销换班申请失败", zap.Error(err))
		return nil, err
	}

	if hadVolunteer {
		s.notifier.PushSwapEvent(ctx, *swap.VolunteerID, model.NotificationTypeSwapCancelled,
			"换班申请已撤销", "你认领的换班申请已被申请人撤回", swap.SwapRequestID)
	}

	s.logger.Info("换班申请已撤销",
		zap.String("swap_request_id", swap.SwapRequestID),
		zap.String("actor_id", actorID),
	)

	resp := toSwapResponse(swap)
	return &resp, nil
}

// ═══════════════════════════════════════════════════════════
// 读操作（派生视图，逐次全量计算，无自身状态）
// ═══════════════════════════════════════════════════════════

func (s *swapService) GetByID(ctx context.Context, requestID string) (*dto.SwapRequestResponse, error) {
	swap, err := s.getSwap(ctx, requestID)
	if err != nil {
		return nil, err
	}
	resp := toSwapResponse(swap)
	return &resp, nil
}

// ListBoard 换班看板：open 且非本人发起，带冲突标记
func (s *swapService) ListBoard(ctx context.Context, userID string) ([]dto.BoardEntryResponse, error) {
	reqs, err := s.repo.SwapRequest.ListOpenExcluding(ctx, userID)
	if err != nil {
		s.logger.Error("查询换班看板失败", zap.Error(err))
		return nil, err
	}

	entries := make([]dto.BoardEntryResponse, 0, len(reqs))
	for i := range reqs {
		entry := dto.BoardEntryResponse{SwapRequestResponse: toSwapResponse(&reqs[i])}
		if reqs[i].Shift != nil {
			conflict, err := s.repo.Shift.HasOnDate(ctx, userID, reqs[i].Shift.ShiftDate)
			if err != nil {
				s.logger.Error("检查班次冲突失败", zap.Error(err))
				return nil, err
			}
			entry.Conflict = conflict
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ListPending 审批队列：pending_approval 全量（仅经理可见，由路由鉴权）
func (s *swapService) ListPending(ctx context.Context) ([]dto.SwapRequestResponse, error) {
	reqs, err := s.repo.SwapRequest.ListPending(ctx)
	if err != nil {
		s.logger.Error("查询审批队列失败", zap.Error(err))
		return nil, err
	}
	return toSwapResponses(reqs), nil
}

// History 换班历史：本人发起或认领的申请，按参与方式分组
func (s *swapService) History(ctx context.Context, userID string) (*dto.SwapHistoryResponse, error) {
	reqs, err := s.repo.SwapRequest.ListByParticipant(ctx, userID)
	if err != nil {
		s.logger.Error("查询换班历史失败", zap.Error(err))
		return nil, err
	}

	history := &dto.SwapHistoryResponse{
		Requested:   []dto.SwapRequestResponse{},
		Volunteered: []dto.SwapRequestResponse{},
	}
	for i := range reqs {
		resp := toSwapResponse(&reqs[i])
		if reqs[i].RequesterID == userID {
			history.Requested = append(history.Requested, resp)
		}
		if reqs[i].VolunteerID != nil && *reqs[i].VolunteerID == userID {
			history.Volunteered = append(history.Volunteered, resp)
		}
	}
	return history, nil
}

// CheckConflict 检查用户认领该申请是否与自身班次冲突（同一日历日）
func (s *swapService) CheckConflict(ctx context.Context, requestID, userID string) (*dto.ConflictCheckResponse, error) {
	swap, err := s.getSwap(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if swap.Shift == nil {
		return nil, ErrShiftNotFound
	}

	conflict, err := s.repo.Shift.HasOnDate(ctx, userID, swap.Shift.ShiftDate)
	if err != nil {
		s.logger.Error("检查班次冲突失败", zap.Error(err))
		return nil, err
	}
	return &dto.ConflictCheckResponse{Conflict: conflict}, nil
}

// ── 内部辅助 ──

func (s *swapService) getSwap(ctx context.Context, requestID string) (*model.SwapRequest, error) {
	swap, err := s.repo.SwapRequest.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapNotFound
		}
		s.logger.Error("查询换班申请失败", zap.Error(err))
		return nil, err
	}
	return swap, nil
}

// toSwapResponse 模型转响应 DTO
func toSwapResponse(swap *model.SwapRequest) dto.SwapRequestResponse {
	resp := dto.SwapRequestResponse{
		ID:           swap.SwapRequestID,
		RequesterID:  swap.RequesterID,
		ShiftID:      swap.ShiftID,
		Reason:       swap.Reason,
		Status:       swap.Status,
		RejectReason: swap.RejectReason,
		CreatedAt:    swap.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    swap.UpdatedAt.Format(time.RFC3339),
	}
	if swap.VolunteerID != nil {
		resp.VolunteerID = *swap.VolunteerID
	}
	if swap.DecidedBy != nil {
		resp.DecidedBy = *swap.DecidedBy
	}
	if swap.DecidedAt != nil {
		resp.DecidedAt = swap.DecidedAt.Format(time.RFC3339)
	}
	if swap.Shift != nil {
		shiftResp := toShiftResponse(swap.Shift)
		resp.Shift = &shiftResp
	}
	if swap.Requester != nil {
		userResp := toUserResponse(swap.Requester)
		resp.Requester = &userResp
	}
	if swap.Volunteer != nil {
		userResp := toUserResponse(swap.Volunteer)
		resp.Volunteer = &userResp
	}
	return resp
}

func toSwapResponses(reqs []model.SwapRequest) []dto.SwapRequestResponse {
	result := make([]dto.SwapRequestResponse, 0, len(reqs))
	for i := range reqs {
		result = append(result, toSwapResponse(&reqs[i]))
	}
	return result
}
