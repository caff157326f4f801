package dto

// ── 换班模块 DTO ──

// CreateSwapRequest 发起换班申请
type CreateSwapRequest struct {
	ShiftID string `json:"shift_id" binding:"required,uuid"`
	Reason  string `json:"reason"   binding:"required,max=500"`
}

// RejectSwapRequest 驳回换班申请（原因可选）
type RejectSwapRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// SwapRequestResponse 换班申请响应
type SwapRequestResponse struct {
	ID           string         `json:"id"`
	RequesterID  string         `json:"requester_id"`
	ShiftID      string         `json:"shift_id"`
	Reason       string         `json:"reason"`
	Status       string         `json:"status"`
	VolunteerID  string         `json:"volunteer_id,omitempty"`
	DecidedBy    string         `json:"decided_by,omitempty"`
	DecidedAt    string         `json:"decided_at,omitempty"`
	RejectReason string         `json:"reject_reason,omitempty"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
	Shift        *ShiftResponse `json:"shift,omitempty"`
	Requester    *UserResponse  `json:"requester,omitempty"`
	Volunteer    *UserResponse  `json:"volunteer,omitempty"`
}

// BoardEntryResponse 换班看板条目
// Conflict 表示当前用户当天已有班次，志愿认领会造成重复排班
type BoardEntryResponse struct {
	SwapRequestResponse
	Conflict bool `json:"conflict"`
}

// SwapHistoryResponse 换班历史（按参与方式分组）
type SwapHistoryResponse struct {
	Requested   []SwapRequestResponse `json:"requested"`   // 我发起的
	Volunteered []SwapRequestResponse `json:"volunteered"` // 我志愿认领的
}

// ConflictCheckResponse 班次冲突检查结果
type ConflictCheckResponse struct {
	Conflict bool `json:"conflict"`
}
