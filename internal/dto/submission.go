package dto

// ── 测评提交模块 DTO ──

// SubmitAssessmentRequest 提交测评请求
// submitted_at 缺省时取服务端当前时间；非空值用于离线补交场景
type SubmitAssessmentRequest struct {
	ScheduleID  string   `json:"schedule_id"  binding:"required,uuid"`
	Score       *float64 `json:"score"        binding:"omitempty,min=0,max=100"`
	SubmittedAt string   `json:"submitted_at" binding:"omitempty"` // RFC3339
}

// SubmissionResponse 提交结果
// 窗口开启前的提交会被作废但仍返回 201：nullified 与 notice 说明原因
type SubmissionResponse struct {
	ID                  string  `json:"id"`
	ScheduleID          string  `json:"schedule_id"`
	SubmittedAt         string  `json:"submitted_at"`
	Score               float64 `json:"score"`
	Nullified           bool    `json:"nullified"`
	NullifiedReason     string  `json:"nullified_reason,omitempty"`
	OriginalSubmittedAt string  `json:"original_submitted_at,omitempty"`
	Notice              string  `json:"notice,omitempty"`
}
