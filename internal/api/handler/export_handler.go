package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/forhay123/haybee-edu-sub009/internal/service"
	"github.com/forhay123/haybee-edu-sub009/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWeeklyPlan 导出学生周学习计划
// GET /api/v1/export/weekly-plan?student_id=xxx&week_number=N
func (h *ExportHandler) ExportWeeklyPlan(c *gin.Context) {
	studentID := c.Query("student_id")
	if studentID == "" {
		response.BadRequest(c, 16001, "student_id 不能为空")
		return
	}
	weekNumber, err := strconv.Atoi(c.Query("week_number"))
	if err != nil || weekNumber < 1 {
		response.BadRequest(c, 16001, "week_number 无效")
		return
	}

	buf, filename, err := h.exportSvc.ExportWeeklyPlan(c.Request.Context(), studentID, weekNumber)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 16101, "学生不存在")
	case errors.Is(err, service.ErrExportNoSchedules):
		response.NotFound(c, 16102, "该周暂无学习安排")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
