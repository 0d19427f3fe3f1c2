package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/forhay123/haybee-edu-sub009/internal/dto"
	"github.com/forhay123/haybee-edu-sub009/internal/service"
	"github.com/forhay123/haybee-edu-sub009/pkg/response"
)

// ScheduleHandler 排课模块 HTTP 处理器
type ScheduleHandler struct {
	generatorSvc service.GeneratorService
	windowSvc    service.WindowService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(generatorSvc service.GeneratorService, windowSvc service.WindowService) *ScheduleHandler {
	return &ScheduleHandler{generatorSvc: generatorSvc, windowSvc: windowSvc}
}

// Generate 生成某周课表（单个学生或批量）
// POST /api/v1/schedules/generate
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	result, err := h.generatorSvc.Generate(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// List 查询学生某日期范围的课表（带派生状态）
// GET /api/v1/schedules
func (h *ScheduleHandler) List(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	result, err := h.windowSvc.ListSchedules(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// Accessibility 测评可访问性检查
// GET /api/v1/schedules/:id/access
func (h *ScheduleHandler) Accessibility(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "课表行ID不能为空")
		return
	}

	result, err := h.windowSvc.Accessibility(c.Request.Context(), id)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// handleScheduleError 统一处理排课模块业务错误
func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoActiveTerm):
		response.BadRequest(c, 11101, "当前没有进行中的学期")
	case errors.Is(err, service.ErrInvalidWeekNumber):
		response.BadRequest(c, 11102, "周次超出学期范围")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 11103, "学生不存在")
	case errors.Is(err, service.ErrNoProcessedTimetable):
		response.BadRequest(c, 11104, "学生没有解析完成的课表")
	case errors.Is(err, service.ErrNoAvailableSlot):
		response.Conflict(c, 11105, "连续假期导致无法安排周六课程")
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 11106, "课表行不存在")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 11107, "日期范围无效")
	default:
		response.InternalError(c)
	}
}
