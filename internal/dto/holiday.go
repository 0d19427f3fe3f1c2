package dto

// ── 公共假期模块 DTO ──

// CreateHolidayRequest 创建假期请求
type CreateHolidayRequest struct {
	HolidayDate    string `json:"holiday_date"     binding:"required"` // "2026-03-08"
	HolidayName    string `json:"holiday_name"     binding:"required,min=2,max=100"`
	IsSchoolClosed *bool  `json:"is_school_closed"` // 缺省为 true
}

// HolidayResponse 假期响应
type HolidayResponse struct {
	ID             string `json:"id"`
	HolidayDate    string `json:"holiday_date"`
	HolidayName    string `json:"holiday_name"`
	IsSchoolClosed bool   `json:"is_school_closed"`
}
