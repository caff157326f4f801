package model

import "time"

// ── 换班申请状态机 ──
//
// open → pending_approval → approved | rejected
// open → cancelled
// pending_approval → cancelled（申请人在审批前撤回）
//
// approved / rejected / cancelled 为终态，不允许再转移

const (
	SwapStatusOpen            = "open"             // 待志愿者认领
	SwapStatusPendingApproval = "pending_approval" // 已有志愿者，待经理审批
	SwapStatusApproved        = "approved"
	SwapStatusRejected        = "rejected"
	SwapStatusCancelled       = "cancelled"
)

// ActiveSwapStatuses 活跃（非终态）状态集合
// 同一班次同时最多存在一条活跃申请
func ActiveSwapStatuses() []string {
	return []string{SwapStatusOpen, SwapStatusPendingApproval}
}

// SwapRequest 换班申请表 — 对应 swap_requests
type SwapRequest struct {
	SwapRequestID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"swap_request_id"`
	RequesterID   string     `gorm:"type:uuid;not null"                             json:"requester_id"`
	ShiftID       string     `gorm:"type:uuid;not null"                             json:"shift_id"`
	Reason        string     `gorm:"type:varchar(500);not null"                     json:"reason"`
	Status        string     `gorm:"type:varchar(20);not null;default:'open'"       json:"status"`
	VolunteerID   *string    `gorm:"type:uuid"                                      json:"volunteer_id,omitempty"`
	DecidedBy     *string    `gorm:"type:uuid"                                      json:"decided_by,omitempty"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
	RejectReason  string     `gorm:"type:varchar(500)"                              json:"reject_reason,omitempty"`
	VersionedModel

	// 关联
	Shift     *Shift `gorm:"foreignKey:ShiftID;references:ShiftID"     json:"shift,omitempty"`
	Requester *User  `gorm:"foreignKey:RequesterID;references:UserID"  json:"requester,omitempty"`
	Volunteer *User  `gorm:"foreignKey:VolunteerID;references:UserID"  json:"volunteer,omitempty"`
}

// TableName 指定表名
func (SwapRequest) TableName() string { return "swap_requests" }

// IsTerminal 是否处于终态
func (r *SwapRequest) IsTerminal() bool {
	switch r.Status {
	case SwapStatusApproved, SwapStatusRejected, SwapStatusCancelled:
		return true
	}
	return false
}

// CanCancel 申请人是否可撤销（open 或审批前的 pending_approval）
func (r *SwapRequest) CanCancel() bool {
	return r.Status == SwapStatusOpen || r.Status == SwapStatusPendingApproval
}
