package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/forhay123/haybee-edu-sub009/internal/dto"
	"github.com/forhay123/haybee-edu-sub009/internal/service"
	"github.com/forhay123/haybee-edu-sub009/pkg/response"
)

// ArchiveHandler 归档模块 HTTP 处理器
type ArchiveHandler struct {
	archivalSvc service.ArchivalService
}

// NewArchiveHandler 创建 ArchiveHandler
func NewArchiveHandler(archivalSvc service.ArchivalService) *ArchiveHandler {
	return &ArchiveHandler{archivalSvc: archivalSvc}
}

// ArchiveTermWeek 归档某学期某周（或全部周次）
// POST /api/v1/archives
//
// 幂等：重复归档同一周不会产生重复行
func (h *ArchiveHandler) ArchiveTermWeek(c *gin.Context) {
	var req dto.ArchiveTermWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	result, err := h.archivalSvc.ArchiveTermWeek(c.Request.Context(), &req)
	if err != nil {
		h.handleArchiveError(c, err)
		return
	}

	response.OK(c, result)
}

// handleArchiveError 统一处理归档模块业务错误
func (h *ArchiveHandler) handleArchiveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, 15101, "学期不存在")
	case errors.Is(err, service.ErrInvalidWeekNumber):
		response.BadRequest(c, 15102, "周次超出学期范围")
	default:
		response.InternalError(c)
	}
}
