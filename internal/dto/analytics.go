package dto

// ── 统计模块 DTO ──

// AnalyticsRequest 统计窗口查询参数
type AnalyticsRequest struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"` // 默认 30 天
}

// AnalyticsSummaryResponse 换班统计摘要
type AnalyticsSummaryResponse struct {
	TotalRequests        int64            `json:"total_requests"`
	OpenRequests         int64            `json:"open_requests"`
	PendingRequests      int64            `json:"pending_requests"`
	ApprovedRequests     int64            `json:"approved_requests"`
	RejectedRequests     int64            `json:"rejected_requests"`
	CancelledRequests    int64            `json:"cancelled_requests"`
	AvgApprovalHours     float64          `json:"avg_approval_hours"` // 创建到批准的平均时长（小时）
	MostActiveDay        string           `json:"most_active_day"`    // 按创建时间统计最活跃星期
	RequestsByDepartment map[string]int64 `json:"requests_by_department"`
}
