package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/renteduse/roster-request-flow/internal/dto"
	"github.com/renteduse/roster-request-flow/internal/model"
	"github.com/renteduse/roster-request-flow/internal/repository"
)

// defaultAnalyticsDays 默认统计窗口（天）
const defaultAnalyticsDays = 30

// AnalyticsService 换班统计业务接口
type AnalyticsService interface {
	// Summary 统计窗口内的换班概况（仅经理可见，由路由鉴权）
	Summary(ctx context.Context, req *dto.AnalyticsRequest) (*dto.AnalyticsSummaryResponse, error)
}

type analyticsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAnalyticsService 创建 AnalyticsService 实例
func NewAnalyticsService(repo *repository.Repository, logger *zap.Logger) AnalyticsService {
	return &analyticsService{repo: repo, logger: logger}
}

func (s *analyticsService) Summary(ctx context.Context, req *dto.AnalyticsRequest) (*dto.AnalyticsSummaryResponse, error) {
	days := defaultAnalyticsDays
	if req != nil && req.Days > 0 {
		days = req.Days
	}
	since := time.Now().AddDate(0, 0, -days)

	reqs, err := s.repo.SwapRequest.ListCreatedSince(ctx, since)
	if err != nil {
		s.logger.Error("查询统计窗口内换班申请失败", zap.Error(err))
		return nil, err
	}

	summary := &dto.AnalyticsSummaryResponse{
		RequestsByDepartment: make(map[string]int64),
	}

	var approvalTotal time.Duration
	var approvalCount int64
	weekdayCounts := make(map[time.Weekday]int64)

	for i := range reqs {
		r := &reqs[i]
		summary.TotalRequests++

		switch r.Status {
		case model.SwapStatusOpen:
			summary.OpenRequests++
		case model.SwapStatusPendingApproval:
			summary.PendingRequests++
		case model.SwapStatusApproved:
			summary.ApprovedRequests++
		case model.SwapStatusRejected:
			summary.RejectedRequests++
		case model.SwapStatusCancelled:
			summary.CancelledRequests++
		}

		// 平均审批时长：创建到批准
		if r.Status == model.SwapStatusApproved && r.DecidedAt != nil {
			approvalTotal += r.DecidedAt.Sub(r.CreatedAt)
			approvalCount++
		}

		weekdayCounts[r.CreatedAt.Weekday()]++

		dept := "Unassigned"
		if r.Requester != nil && r.Requester.Department != nil && *r.Requester.Department != "" {
			dept = *r.Requester.Department
		}
		summary.RequestsByDepartment[dept]++
	}

	if approvalCount > 0 {
		summary.AvgApprovalHours = approvalTotal.Hours() / float64(approvalCount)
	}
	summary.MostActiveDay = mostActiveWeekday(weekdayCounts)

	return summary, nil
}

// mostActiveWeekday 取计数最高的星期；并列时取一周内较早者，空集返回空串
func mostActiveWeekday(counts map[time.Weekday]int64) string {
	var best time.Weekday
	var bestCount int64
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if counts[wd] > bestCount {
			best = wd
			bestCount = counts[wd]
		}
	}
	if bestCount == 0 {
		return ""
	}
	return best.String()
}
