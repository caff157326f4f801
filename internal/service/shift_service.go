package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/renteduse/roster-request-flow/internal/dto"
	"github.com/renteduse/roster-request-flow/internal/model"
	"github.com/renteduse/roster-request-flow/internal/repository"
)

// ── 班次模块业务错误 ──

var ErrShiftDateInvalid = errors.New("日期格式无效，应为 YYYY-MM-DD")

// ShiftService 班次业务接口
type ShiftService interface {
	// ListMyShifts 当前用户的全部班次（按日期升序）
	ListMyShifts(ctx context.Context, userID string) ([]dto.ShiftResponse, error)
	// ListUpcomingShifts 当前用户从 from 起的班次（from 为空默认今天）
	ListUpcomingShifts(ctx context.Context, userID string, from string) ([]dto.ShiftResponse, error)
	// BuildCalendar 当前用户班次的 iCalendar 订阅内容
	BuildCalendar(ctx context.Context, userID string) (string, error)
}

type shiftService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(repo *repository.Repository, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, logger: logger}
}

func (s *shiftService) ListMyShifts(ctx context.Context, userID string) ([]dto.ShiftResponse, error) {
	shifts, err := s.repo.Shift.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, err
	}
	return toShiftResponses(shifts), nil
}

func (s *shiftService) ListUpcomingShifts(ctx context.Context, userID string, from string) ([]dto.ShiftResponse, error) {
	asOf := today()
	if from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, ErrShiftDateInvalid
		}
		asOf = parsed
	}

	shifts, err := s.repo.Shift.ListUpcoming(ctx, userID, asOf)
	if err != nil {
		s.logger.Error("查询未来班次失败", zap.Error(err))
		return nil, err
	}
	return toShiftResponses(shifts), nil
}

// BuildCalendar 生成 iCalendar (RFC 5545) 内容，每个班次一个 VEVENT
func (s *shiftService) BuildCalendar(ctx context.Context, userID string) (string, error) {
	shifts, err := s.repo.Shift.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询班次失败", zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//roster-request-flow//shift calendar//EN")

	for _, shift := range shifts {
		start, err := combineDateTime(shift.ShiftDate, shift.StartTime)
		if err != nil {
			s.logger.Warn("班次开始时间格式异常，已跳过",
				zap.String("shift_id", shift.ShiftID),
				zap.String("start_time", shift.StartTime),
			)
			continue
		}
		end, err := combineDateTime(shift.ShiftDate, shift.EndTime)
		if err != nil {
			s.logger.Warn("班次结束时间格式异常，已跳过",
				zap.String("shift_id", shift.ShiftID),
				zap.String("end_time", shift.EndTime),
			)
			continue
		}
		// 跨零点的夜班结束时间落到次日
		if !end.After(start) {
			end = end.AddDate(0, 0, 1)
		}

		event := cal.AddEvent(shift.ShiftID)
		event.SetDtStampTime(time.Now())
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(shift.Role)
		if shift.Location != nil {
			event.SetLocation(*shift.Location)
		}
	}

	return cal.Serialize(), nil
}

// combineDateTime 将日历日与 "HH:MM" 挂钟时间合并为本地时间点
func combineDateTime(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的时间 %q: %w", clock, err)
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, time.Local), nil
}

// today 今天零点（本地时区）
func today() time.Time {
	now := time.Now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// toShiftResponses 模型转响应 DTO（保持查询顺序）
func toShiftResponses(shifts []model.Shift) []dto.ShiftResponse {
	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, toShiftResponse(&shifts[i]))
	}
	return result
}

func toShiftResponse(shift *model.Shift) dto.ShiftResponse {
	resp := dto.ShiftResponse{
		ID:        shift.ShiftID,
		UserID:    shift.UserID,
		Date:      shift.ShiftDate.Format("2006-01-02"),
		StartTime: shift.StartTime,
		EndTime:   shift.EndTime,
		Role:      shift.Role,
	}
	if shift.Location != nil {
		resp.Location = *shift.Location
	}
	if shift.Owner != nil {
		resp.OwnerName = shift.Owner.Name
	}
	return resp
}
