package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/forhay123/haybee-edu-sub009/internal/dto"
	"github.com/forhay123/haybee-edu-sub009/internal/service"
	pkgerrors "github.com/forhay123/haybee-edu-sub009/pkg/errors"
	"github.com/forhay123/haybee-edu-sub009/pkg/response"
)

// TimetableHandler 课表模块 HTTP 处理器
// 覆盖上传登记、解析回调、ICS 导入、冲突检测与修复
type TimetableHandler struct {
	timetableSvc service.TimetableService
	conflictSvc  service.ConflictService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(timetableSvc service.TimetableService, conflictSvc service.ConflictService) *TimetableHandler {
	return &TimetableHandler{timetableSvc: timetableSvc, conflictSvc: conflictSvc}
}

// Upload 登记课表文件
// POST /api/v1/timetables
func (h *TimetableHandler) Upload(c *gin.Context) {
	var req dto.UploadTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.timetableSvc.Upload(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.Created(c, result)
}

// Get 查询课表
// GET /api/v1/timetables/:id
func (h *TimetableHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "课表ID不能为空")
		return
	}

	result, err := h.timetableSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// ExtractionCallback 外部解析服务回调
// POST /api/v1/timetables/:id/extraction-result
func (h *TimetableHandler) ExtractionCallback(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "课表ID不能为空")
		return
	}

	var req dto.ExtractionResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.timetableSvc.ApplyExtractionResult(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// ImportICS 从 ICS 日历导入课表
// POST /api/v1/timetables/import-ics
func (h *TimetableHandler) ImportICS(c *gin.Context) {
	var req dto.ImportICSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.timetableSvc.ImportICS(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.Created(c, result)
}

// ListConflicts 检测课表冲突
// GET /api/v1/timetables/:id/conflicts
func (h *TimetableHandler) ListConflicts(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "课表ID不能为空")
		return
	}

	conflicts, err := h.conflictSvc.DetectConflicts(c.Request.Context(), id)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, gin.H{"list": conflicts})
}

// ResolveConflict 执行冲突修复动作
// POST /api/v1/timetables/:id/conflicts/resolve
func (h *TimetableHandler) ResolveConflict(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "课表ID不能为空")
		return
	}

	var req dto.ResolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.conflictSvc.Resolve(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// handleTimetableError 统一处理课表模块业务错误
func (h *TimetableHandler) handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimetableNotFound):
		response.NotFound(c, 13101, "课表不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13102, "学生不存在")
	case errors.Is(err, service.ErrTimetableFinalized):
		response.Conflict(c, 13103, "课表已有解析结果，不能重复回填")
	case errors.Is(err, service.ErrTimetableNotProcessed):
		response.BadRequest(c, 13104, "课表尚未解析完成")
	case errors.Is(err, service.ErrICSSourceMissing):
		response.BadRequest(c, 13105, "ICS 导入需要提供 url 或 content 之一")
	case errors.Is(err, service.ErrICSEmpty):
		response.BadRequest(c, 13106, "ICS 中没有可用的课时")
	case errors.Is(err, service.ErrUnknownResolutionAction):
		response.BadRequest(c, 13107, "未知的冲突修复动作")
	case errors.Is(err, service.ErrEntryIndexOutOfRange):
		response.BadRequest(c, 13108, "课时下标超出范围")
	case errors.Is(err, service.ErrInvalidTimeValue):
		response.BadRequest(c, 13109, "无效的时间值")
	case errors.Is(err, service.ErrMergeNotAdjacent):
		response.BadRequest(c, 13110, "合并的两个课时必须同科且相邻")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13111, "课表已被其他操作修改，请重试")
	case errors.Is(err, service.ErrNoActiveTerm):
		response.BadRequest(c, 13112, "当前没有进行中的学期")
	default:
		response.InternalError(c)
	}
}
