package model

import "time"

// Shift 班次表 — 对应 shifts
// 每条记录代表分配给单个用户的一个排班块；
// 换班申请被批准后 user_id 会转移给志愿者
type Shift struct {
	ShiftID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	UserID    string    `gorm:"type:uuid;not null"                             json:"user_id"`
	ShiftDate time.Time `gorm:"type:date;not null;column:shift_date"           json:"shift_date"`
	StartTime string    `gorm:"type:varchar(5);not null"                       json:"start_time"` // "HH:MM" 本地挂钟时间
	EndTime   string    `gorm:"type:varchar(5);not null"                       json:"end_time"`   // "HH:MM" 本地挂钟时间
	Role      string    `gorm:"type:varchar(100);not null"                     json:"role"` // 岗位标签
	Location  *string   `gorm:"type:varchar(200)"                              json:"location,omitempty"`
	VersionedModel

	// 关联
	Owner *User `gorm:"foreignKey:UserID;references:UserID" json:"owner,omitempty"`
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }

// SameDay 判断班次是否落在指定日历日
func (s *Shift) SameDay(date time.Time) bool {
	y1, m1, d1 := s.ShiftDate.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
