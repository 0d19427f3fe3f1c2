package dto

// ── 排课生成模块 DTO ──

// GenerateScheduleRequest 生成某周课表请求
// student_id 为空时对全部活跃个性化学生批量生成
type GenerateScheduleRequest struct {
	WeekNumber int     `json:"week_number" binding:"required,min=1"`
	StudentID  *string `json:"student_id"  binding:"omitempty,uuid"`
}

// FailedStudent 批量生成中被跳过的学生及原因
type FailedStudent struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// GenerateScheduleResponse 生成结果汇总
type GenerateScheduleResponse struct {
	WeekNumber        int             `json:"week_number"`
	StudentsProcessed int             `json:"students_processed"`
	SchedulesCreated  int             `json:"schedules_created"`
	SchedulesUpdated  int             `json:"schedules_updated"`
	MissingTopics     int             `json:"missing_topics"`
	FailedStudents    []FailedStudent `json:"failed_students,omitempty"`
	SaturdayShifted   bool            `json:"saturday_shifted"`            // 周六因假期顺延
	SaturdayDate      string          `json:"saturday_date,omitempty"`     // 实际排课的周六日期
}

// ScheduleListRequest 课表查询请求
type ScheduleListRequest struct {
	StudentID string `form:"student_id" binding:"required,uuid"`
	From      string `form:"from"       binding:"required"` // "2026-03-02"
	To        string `form:"to"         binding:"required"`
}

// ScheduleItemResponse 课表行视图（status 为派生的运行时状态）
type ScheduleItemResponse struct {
	ID                   string `json:"id"`
	StudentID            string `json:"student_id"`
	ScheduledDate        string `json:"scheduled_date"`
	DayOfWeek            int    `json:"day_of_week"`
	PeriodNumber         int    `json:"period_number"`
	StartTime            string `json:"start_time"`
	EndTime              string `json:"end_time"`
	SubjectID            string `json:"subject_id"`
	SubjectName          string `json:"subject_name,omitempty"`
	LessonTopicID        string `json:"lesson_topic_id,omitempty"`
	TopicTitle           string `json:"topic_title,omitempty"`
	AssessmentInstanceID string `json:"assessment_instance_id,omitempty"`
	PeriodSequence       int    `json:"period_sequence"`
	TotalPeriodsForTopic int    `json:"total_periods_for_topic"`
	MissingLessonTopic   bool   `json:"missing_lesson_topic"`
	HasScheduleConflict  bool   `json:"has_schedule_conflict"`
	WindowStart          string `json:"window_start,omitempty"`
	WindowEnd            string `json:"window_end,omitempty"`
	GraceEnd             string `json:"grace_end,omitempty"`
	Status               string `json:"status"` // PENDING | AVAILABLE | COMPLETED | MISSED
	WeekNumber           int    `json:"week_number"`
}

// ScheduleSummary 查询范围内按学生聚合的概览。
// 平均分只计有效提交，作废的提交不参与聚合
type ScheduleSummary struct {
	TotalSchedules    int     `json:"total_schedules"`
	Completed         int     `json:"completed"`
	AverageValidScore float64 `json:"average_valid_score"`
}

// ScheduleListResponse 课表查询结果：行视图 + 聚合概览
type ScheduleListResponse struct {
	Items   []ScheduleItemResponse `json:"items"`
	Summary ScheduleSummary        `json:"summary"`
}

// AccessCheckResponse 测评可访问性检查结果
type AccessCheckResponse struct {
	ScheduleID              string `json:"schedule_id"`
	Status                  string `json:"status"`
	HasPreviousPeriod       bool   `json:"has_previous_period"`
	PreviousPeriodCompleted bool   `json:"previous_period_completed"`
	Accessible              bool   `json:"accessible"`
	Reason                  string `json:"reason,omitempty"`
}
