package dto

// ── 课表上传与解析回调 ──

// UploadTimetableRequest 上传课表登记请求
type UploadTimetableRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	FileRef   string `json:"file_ref"   binding:"required,max=500"`
}

// ExtractedPeriod 外部解析服务回传的单条课时
type ExtractedPeriod struct {
	DayOfWeek   int    `json:"day_of_week"  binding:"required,min=1,max=7"`
	StartTime   string `json:"start_time"   binding:"required"` // HH:MM
	EndTime     string `json:"end_time"     binding:"required"`
	SubjectName string `json:"subject_name" binding:"required,max=100"`
}

// ExtractionResultRequest 解析结果回调请求（外部服务契约）
// 低置信度或部分缺失的结果照常接收，由冲突检测兜底
type ExtractionResultRequest struct {
	Status           string            `json:"status"            binding:"required,oneof=COMPLETED FAILED"`
	ConfidenceScore  *float64          `json:"confidence_score"  binding:"omitempty,min=0,max=1"`
	ExtractedPeriods []ExtractedPeriod `json:"extracted_periods" binding:"omitempty,dive"`
	FailureReason    string            `json:"failure_reason"    binding:"omitempty,max=500"`
}

// ImportICSRequest ICS 手动导入请求（解析服务之外的补充通道）
type ImportICSRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	URL       string `json:"url"        binding:"omitempty,url"`
	Content   string `json:"content"    binding:"omitempty"` // 直接提交 ICS 文本
}

// TimetableResponse 课表响应
type TimetableResponse struct {
	ID               string            `json:"id"`
	StudentID        string            `json:"student_id"`
	ProcessingStatus string            `json:"processing_status"`
	ConfidenceScore  *float64          `json:"confidence_score,omitempty"`
	Entries          []ExtractedPeriod `json:"entries,omitempty"`
	FailureReason    string            `json:"failure_reason,omitempty"`
	UploadedAt       string            `json:"uploaded_at"`
}

// ── 冲突检测与修复 ──

// ConflictResponse 单条冲突
type ConflictResponse struct {
	ConflictType string `json:"conflict_type"` // TIME_OVERLAP | DUPLICATE_SUBJECT | INVALID_TIME | MISSING_SUBJECT | SCHEDULE_GAP
	DayOfWeek    int    `json:"day_of_week"`
	Description  string `json:"description"`
	EntryIndexes []int  `json:"entry_indexes,omitempty"` // 涉及的课时在 entries 中的下标
}

// ResolveConflictRequest 冲突修复请求
type ResolveConflictRequest struct {
	DayOfWeek           int    `json:"day_of_week"           binding:"required,min=1,max=7"`
	Action              string `json:"action"                binding:"required,oneof=DELETE_ENTRY EDIT_TIME MERGE_PERIODS SPLIT_PERIOD KEEP_FIRST"`
	EntryIndex          int    `json:"entry_index"           binding:"min=0"`
	SecondEntryIndex    *int   `json:"second_entry_index"    binding:"omitempty,min=0"`
	NewStartTime        string `json:"new_start_time"        binding:"omitempty"` // EDIT_TIME 用
	NewEndTime          string `json:"new_end_time"          binding:"omitempty"`
	SplitTime           string `json:"split_time"            binding:"omitempty"` // SPLIT_PERIOD 用
	RegenerateSchedules bool   `json:"regenerate_schedules"`
}

// ResolveConflictResponse 冲突修复结果
type ResolveConflictResponse struct {
	SchedulesDeleted        int   `json:"schedules_deleted"`
	SchedulesRegenerated    int   `json:"schedules_regenerated"`
	AffectedWeekNumbers     []int `json:"affected_week_numbers,omitempty"`
	RemainingConflictsCount int   `json:"remaining_conflicts_count"`
}
