package model

// ── 用户角色 ──

const (
	RoleStaff   = "staff"   // 普通员工
	RoleManager = "manager" // 经理（可审批换班申请）
)

// User 用户表 — 对应 users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'staff'"      json:"role"` // staff | manager
	Department   *string `gorm:"type:varchar(100)"                              json:"department,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsManager 是否具备审批权限
func (u *User) IsManager() bool { return u.Role == RoleManager }
