package model

import "time"

// ArchivedDailySchedule 归档课表行 — 对应 archived_daily_schedules
// source_schedule_id 唯一，保证同一周重复归档为幂等空操作
type ArchivedDailySchedule struct {
	ArchiveID             string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"archive_id"`
	SourceScheduleID      string     `gorm:"type:uuid;not null;uniqueIndex"                 json:"source_schedule_id"`
	StudentID             string     `gorm:"type:uuid;not null;index"                       json:"student_id"`
	TermID                string     `gorm:"type:uuid;not null"                             json:"term_id"`
	TermWeekNumber        int        `gorm:"type:smallint;not null"                         json:"term_week_number"`
	AcademicYear          string     `gorm:"type:varchar(20);not null"                      json:"academic_year"`
	ScheduledDate         time.Time  `gorm:"type:date;not null"                             json:"scheduled_date"`
	DayOfWeek             int        `gorm:"type:smallint;not null"                         json:"day_of_week"`
	PeriodNumber          int        `gorm:"type:smallint;not null"                         json:"period_number"`
	StartTime             string     `gorm:"type:time;not null"                             json:"start_time"`
	EndTime               string     `gorm:"type:time;not null"                             json:"end_time"`
	SubjectID             string     `gorm:"type:uuid;not null"                             json:"subject_id"`
	LessonTopicID         *string    `gorm:"type:uuid"                                      json:"lesson_topic_id,omitempty"`
	AssessmentInstanceID  *string    `gorm:"type:uuid"                                      json:"assessment_instance_id,omitempty"`
	PeriodSequence        int        `gorm:"type:smallint;not null;default:1"               json:"period_sequence"`
	TotalPeriodsForTopic  int        `gorm:"type:smallint;not null;default:1"               json:"total_periods_for_topic"`
	Completed             bool       `gorm:"not null;default:false"                         json:"completed"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	MarkedIncompleteReason string    `gorm:"type:varchar(50)"                               json:"marked_incomplete_reason,omitempty"`
	ArchivedAt            time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index"       json:"archived_at"`
}

// TableName 指定表名
func (ArchivedDailySchedule) TableName() string { return "archived_daily_schedules" }

// ArchivedStudentLessonProgress 归档进度行 — 对应 archived_student_lesson_progress
type ArchivedStudentLessonProgress struct {
	ArchiveID              string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"archive_id"`
	SourceProgressID       string     `gorm:"type:uuid;not null;uniqueIndex"                 json:"source_progress_id"`
	StudentID              string     `gorm:"type:uuid;not null;index"                       json:"student_id"`
	TermID                 string     `gorm:"type:uuid;not null"                             json:"term_id"`
	TermWeekNumber         int        `gorm:"type:smallint;not null"                         json:"term_week_number"`
	AcademicYear           string     `gorm:"type:varchar(20);not null"                      json:"academic_year"`
	LessonTopicID          string     `gorm:"type:uuid;not null"                             json:"lesson_topic_id"`
	ScheduledDate          time.Time  `gorm:"type:date;not null"                             json:"scheduled_date"`
	PeriodNumber           int        `gorm:"type:smallint;not null"                         json:"period_number"`
	PeriodSequence         int        `gorm:"type:smallint;not null;default:1"               json:"period_sequence"`
	TotalPeriodsInSequence int        `gorm:"type:smallint;not null;default:1"               json:"total_periods_in_sequence"`
	Completed              bool       `gorm:"not null;default:false"                         json:"completed"`
	CompletedAt            *time.Time `json:"completed_at,omitempty"`
	IncompleteReason       string     `gorm:"type:varchar(50)"                               json:"incomplete_reason,omitempty"`
	Score                  *float64   `gorm:"type:numeric(5,2)"                              json:"score,omitempty"`
	ArchivedAt             time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index"       json:"archived_at"`
}

// TableName 指定表名
func (ArchivedStudentLessonProgress) TableName() string { return "archived_student_lesson_progress" }
