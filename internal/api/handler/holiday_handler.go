package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/forhay123/haybee-edu-sub009/internal/dto"
	"github.com/forhay123/haybee-edu-sub009/internal/service"
	"github.com/forhay123/haybee-edu-sub009/pkg/response"
)

// HolidayHandler 公共假期模块 HTTP 处理器
type HolidayHandler struct {
	holidaySvc service.HolidayService
}

// NewHolidayHandler 创建 HolidayHandler
func NewHolidayHandler(holidaySvc service.HolidayService) *HolidayHandler {
	return &HolidayHandler{holidaySvc: holidaySvc}
}

// Create 创建假期
// POST /api/v1/holidays
func (h *HolidayHandler) Create(c *gin.Context) {
	var req dto.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.holidaySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleHolidayError(c, err)
		return
	}

	response.Created(c, result)
}

// Delete 删除假期
// DELETE /api/v1/holidays/:id
func (h *HolidayHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "假期ID不能为空")
		return
	}

	if err := h.holidaySvc.Delete(c.Request.Context(), id); err != nil {
		h.handleHolidayError(c, err)
		return
	}

	response.OK(c, nil)
}

// List 假期列表
// GET /api/v1/holidays
func (h *HolidayHandler) List(c *gin.Context) {
	holidays, err := h.holidaySvc.List(c.Request.Context())
	if err != nil {
		h.handleHolidayError(c, err)
		return
	}

	response.OK(c, gin.H{"list": holidays})
}

// handleHolidayError 统一处理假期模块业务错误
func (h *HolidayHandler) handleHolidayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHolidayExists):
		response.Conflict(c, 14101, "该日期已存在假期")
	case errors.Is(err, service.ErrHolidayNotFound):
		response.NotFound(c, 14102, "假期不存在")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14103, "日期格式无效")
	default:
		response.InternalError(c)
	}
}
