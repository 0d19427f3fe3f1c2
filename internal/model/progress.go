package model

import "time"

// StudentLessonProgress 学生课时进度 — 对应 student_lesson_progress
// 与 DailySchedule 行一一对应的进度记录；课表行被归档删除后，
// 已有提交的进度行保留（schedule_id 置空）
type StudentLessonProgress struct {
	ProgressID             string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"progress_id"`
	StudentID              string     `gorm:"type:uuid;not null;index"                       json:"student_id"`
	ScheduleID             *string    `gorm:"type:uuid;index"                                json:"schedule_id,omitempty"`
	LessonTopicID          string     `gorm:"type:uuid;not null"                             json:"lesson_topic_id"`
	ScheduledDate          time.Time  `gorm:"type:date;not null"                             json:"scheduled_date"`
	PeriodNumber           int        `gorm:"type:smallint;not null"                         json:"period_number"`
	PeriodSequence         int        `gorm:"type:smallint;not null;default:1"               json:"period_sequence"`
	TotalPeriodsInSequence int        `gorm:"type:smallint;not null;default:1"               json:"total_periods_in_sequence"`
	Completed              bool       `gorm:"not null;default:false"                         json:"completed"`
	CompletedAt            *time.Time `json:"completed_at,omitempty"`
	IncompleteReason       string     `gorm:"type:varchar(50)"                               json:"incomplete_reason,omitempty"`
	AssessmentAccessible   bool       `gorm:"not null;default:false"                         json:"assessment_accessible"`
	SubmissionID           *string    `gorm:"type:uuid"                                      json:"submission_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (StudentLessonProgress) TableName() string { return "student_lesson_progress" }
