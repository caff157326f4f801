package dto

// ── 班次模块 DTO ──

// UpcomingShiftsRequest 未来班次查询参数
type UpcomingShiftsRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"` // 起始日期，默认今天
}

// ShiftResponse 班次响应
type ShiftResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	OwnerName string `json:"owner_name,omitempty"`
	Date      string `json:"date"`       // "2006-01-02"
	StartTime string `json:"start_time"` // "HH:MM"
	EndTime   string `json:"end_time"`   // "HH:MM"
	Role      string `json:"role"`
	Location  string `json:"location,omitempty"`
}
