package dto

// ── 归档模块 DTO ──

// ArchiveTermWeekRequest 归档某学期某周请求
// week_number 为空时归档该学期全部周次
type ArchiveTermWeekRequest struct {
	TermID     string `json:"term_id"     binding:"required,uuid"`
	WeekNumber *int   `json:"week_number" binding:"omitempty,min=1"`
	// 归档完成后是否删除活动表中的行（进度行有提交的保留）
	DeleteAfterArchive bool `json:"delete_after_archive"`
}

// ArchiveResponse 归档结果
type ArchiveResponse struct {
	SchedulesArchived int64 `json:"schedules_archived"`
	ProgressArchived  int64 `json:"progress_archived"`
	SchedulesDeleted  int64 `json:"schedules_deleted"`
}
