package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/renteduse/roster-request-flow/internal/model"
)

// demoPassword 演示账号统一密码（仅用于本地/演示环境）
const demoPassword = "123456"

// SeedDemoData 注入演示数据集（4 名用户、7 个班次、4 条换班申请）
// 仅当 users 表为空时生效，重复启动不会产生重复数据
func SeedDemoData(db *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("检查用户表失败: %w", err)
	}
	if count > 0 {
		logger.Info("用户表非空，跳过演示数据注入")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("生成演示密码哈希失败: %w", err)
	}

	strPtr := func(s string) *string { return &s }
	day := func(offset int) time.Time {
		return time.Now().AddDate(0, 0, offset).Truncate(24 * time.Hour)
	}

	users := []*model.User{
		{Name: "John Staff", Email: "staff@example.com", PasswordHash: string(hash), Role: model.RoleStaff, Department: strPtr("Sales")},
		{Name: "Jane Manager", Email: "manager@example.com", PasswordHash: string(hash), Role: model.RoleManager, Department: strPtr("Sales")},
		{Name: "Bob Coworker", Email: "bob@example.com", PasswordHash: string(hash), Role: model.RoleStaff, Department: strPtr("Customer Service")},
		{Name: "Alice Team Lead", Email: "alice@example.com", PasswordHash: string(hash), Role: model.RoleStaff, Department: strPtr("Operations")},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, u := range users {
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("创建演示用户失败: %w", err)
			}
		}
		john, jane, bob, alice := users[0], users[1], users[2], users[3]
		_ = jane // 经理无班次

		shifts := []*model.Shift{
			{UserID: john.UserID, ShiftDate: day(1), StartTime: "09:00", EndTime: "17:00", Role: "Sales Associate", Location: strPtr("Main Floor")},
			{UserID: john.UserID, ShiftDate: day(2), StartTime: "10:00", EndTime: "18:00", Role: "Sales Associate", Location: strPtr("Electronics Department")},
			{UserID: john.UserID, ShiftDate: day(3), StartTime: "12:00", EndTime: "20:00", Role: "Sales Associate", Location: strPtr("Customer Service Desk")},
			{UserID: bob.UserID, ShiftDate: day(1), StartTime: "08:00", EndTime: "16:00", Role: "Customer Service Rep", Location: strPtr("Customer Service Desk")},
			{UserID: bob.UserID, ShiftDate: day(2), StartTime: "12:00", EndTime: "20:00", Role: "Customer Service Rep", Location: strPtr("Returns Department")},
			{UserID: alice.UserID, ShiftDate: day(1), StartTime: "07:00", EndTime: "15:00", Role: "Operations Specialist", Location: strPtr("Back Office")},
			{UserID: alice.UserID, ShiftDate: day(3), StartTime: "07:00", EndTime: "15:00", Role: "Operations Specialist", Location: strPtr("Warehouse")},
		}
		for _, s := range shifts {
			if err := tx.Create(s).Error; err != nil {
				return fmt.Errorf("创建演示班次失败: %w", err)
			}
		}

		now := time.Now()
		requests := []*model.SwapRequest{
			{
				RequesterID: bob.UserID, ShiftID: shifts[3].ShiftID,
				Reason: "Doctor appointment", Status: model.SwapStatusOpen,
			},
			{
				RequesterID: alice.UserID, ShiftID: shifts[5].ShiftID,
				Reason: "Family event", Status: model.SwapStatusPendingApproval,
				VolunteerID: &john.UserID,
			},
			{
				RequesterID: john.UserID, ShiftID: shifts[1].ShiftID,
				Reason: "Personal appointment", Status: model.SwapStatusApproved,
				VolunteerID: &bob.UserID, DecidedBy: &jane.UserID, DecidedAt: &now,
			},
			{
				RequesterID: bob.UserID, ShiftID: shifts[4].ShiftID,
				Reason: "Transportation issues", Status: model.SwapStatusRejected,
				VolunteerID: &alice.UserID, DecidedBy: &jane.UserID, DecidedAt: &now,
			},
		}
		for _, r := range requests {
			if err := tx.Create(r).Error; err != nil {
				return fmt.Errorf("创建演示换班申请失败: %w", err)
			}
		}

		logger.Info("演示数据注入完成",
			zap.Int("users", len(users)),
			zap.Int("shifts", len(shifts)),
			zap.Int("swap_requests", len(requests)),
		)
		return nil
	})
}
