package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/forhay123/haybee-edu-sub009/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetStudentID 从 Gin 上下文中安全提取 student_id。
// 学生角色的 Token 才携带该声明；其它角色访问学生接口时返回 403。
func MustGetStudentID(c *gin.Context) (string, bool) {
	v, exists := c.Get("student_id")
	if !exists {
		response.Forbidden(c, 10003, "仅学生可访问")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Forbidden(c, 10003, "仅学生可访问")
		return "", false
	}
	return s, true
}
