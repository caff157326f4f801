package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/renteduse/roster-request-flow/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportRangeInvalid = errors.New("导出时间范围无效")
	ErrExportNoShifts     = errors.New("该时间范围内无班次")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// exportDefaultRangeDays 未指定范围时导出未来两周
const exportDefaultRangeDays = 14

// ExportService 导出业务接口
//
// 设计说明：
//   - 排班表按日期升序平铺为一个 Sheet
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportSchedule 导出时间范围内的排班表为 Excel
	// from/to 为 "2006-01-02"，为空时默认今天起两周
	ExportSchedule(ctx context.Context, from, to string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportSchedule(ctx context.Context, from, to string) (*bytes.Buffer, string, error) {
	// 1. 解析时间范围
	start := today()
	end := start.AddDate(0, 0, exportDefaultRangeDays)
	if from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, "", ErrExportRangeInvalid
		}
		start = parsed
	}
	if to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, "", ErrExportRangeInvalid
		}
		end = parsed
	}
	if end.Before(start) {
		return nil, "", ErrExportRangeInvalid
	}

	// 2. 查询班次（含归属人）
	shifts, err := s.repo.Shift.ListInRange(ctx, start, end)
	if err != nil {
		s.logger.Error("查询导出班次失败", zap.Error(err))
		return nil, "", err
	}
	if len(shifts) == 0 {
		return nil, "", ErrExportNoShifts
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "排班表"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"日期", "开始", "结束", "员工", "部门", "岗位", "地点"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			s.logger.Error("写入表头失败", zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}

	for row, shift := range shifts {
		name, dept := "", ""
		if shift.Owner != nil {
			name = shift.Owner.Name
			if shift.Owner.Department != nil {
				dept = *shift.Owner.Department
			}
		}
		location := ""
		if shift.Location != nil {
			location = *shift.Location
		}

		values := []interface{}{
			shift.ShiftDate.Format("2006-01-02"),
			shift.StartTime,
			shift.EndTime,
			name,
			dept,
			shift.Role,
			location,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				s.logger.Error("写入单元格失败", zap.Error(err))
				return nil, "", ErrExportGenerateFail
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "G", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("序列化 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("schedule_%s_%s.xlsx",
		start.Format("20060102"), end.Format("20060102"))
	return buf, filename, nil
}
