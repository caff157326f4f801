package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/renteduse/roster-request-flow/internal/service"
	"github.com/renteduse/roster-request-flow/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 排班导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSchedule 导出排班 Excel（店长）
// GET /api/v1/export/schedule?from=2026-08-01&to=2026-08-14
func (h *ExportHandler) ExportSchedule(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportSchedule(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportRangeInvalid):
			response.BadRequest(c, 15001, "导出时间范围无效")
		case errors.Is(err, service.ErrExportNoShifts):
			response.NotFound(c, 15002, "该时间范围内无班次")
		default:
			response.InternalError(c)
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
