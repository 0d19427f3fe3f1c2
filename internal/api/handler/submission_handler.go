package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/forhay123/haybee-edu-sub009/internal/dto"
	"github.com/forhay123/haybee-edu-sub009/internal/service"
	"github.com/forhay123/haybee-edu-sub009/pkg/response"
)

// SubmissionHandler 测评提交模块 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// Submit 提交测评
// POST /api/v1/submissions
//
// 窗口开启前的提交同样返回 201：记录被作废并在响应中附带说明
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req dto.SubmitAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	result, err := h.submissionSvc.Submit(c.Request.Context(), &req, studentID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.Created(c, result)
}

// handleSubmissionError 统一处理提交模块业务错误
func (h *SubmissionHandler) handleSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 12101, "课表行不存在")
	case errors.Is(err, service.ErrNotScheduleOwner):
		response.Forbidden(c, 12102, "只能提交自己的测评")
	case errors.Is(err, service.ErrScheduleNoInstance):
		response.BadRequest(c, 12103, "该课时没有关联的测评实例")
	case errors.Is(err, service.ErrInvalidSubmitTime):
		response.BadRequest(c, 12104, "提交时间格式无效")
	default:
		response.InternalError(c)
	}
}
