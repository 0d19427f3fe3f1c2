package model

import "time"

// 课表来源
const (
	ScheduleSourceClass      = "CLASS"      // 班级统一课表
	ScheduleSourceIndividual = "INDIVIDUAL" // 个性化课表
)

// 生成时状态（运行时状态由窗口时间派生，不落库）
const (
	ScheduleStatusReady      = "READY"       // 主题与测评实例齐备
	ScheduleStatusInProgress = "IN_PROGRESS" // 缺主题，等待人工指派
)

// 主题指派方式
const (
	AssignMethodAutoWeeklyRotation = "AUTO_WEEKLY_ROTATION"
	AssignMethodPendingManual      = "PENDING_MANUAL"
)

// 未完成原因
const (
	IncompleteReasonMissedGrace = "MISSED_GRACE_PERIOD"
)

// DailySchedule 每日课表行 — 对应 daily_schedules
// 一行代表一名学生某日某节次的一次学习安排，携带该节次的测评窗口。
// (student_id, scheduled_date, period_number) 唯一，重复生成走 upsert
type DailySchedule struct {
	ScheduleID            string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	StudentID             string     `gorm:"type:uuid;not null"                             json:"student_id"`
	ScheduledDate         time.Time  `gorm:"type:date;not null"                             json:"scheduled_date"`
	DayOfWeek             int        `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1=周一 … 7=周日
	PeriodNumber          int        `gorm:"type:smallint;not null"                         json:"period_number"`
	StartTime             string     `gorm:"type:time;not null"                             json:"start_time"`
	EndTime               string     `gorm:"type:time;not null"                             json:"end_time"`
	SubjectID             string     `gorm:"type:uuid;not null"                             json:"subject_id"`
	LessonTopicID         *string    `gorm:"type:uuid"                                      json:"lesson_topic_id,omitempty"`
	AssessmentInstanceID  *string    `gorm:"type:uuid"                                      json:"assessment_instance_id,omitempty"`
	PeriodSequence        int        `gorm:"type:smallint;not null;default:1"               json:"period_sequence"`
	TotalPeriodsForTopic  int        `gorm:"type:smallint;not null;default:1"               json:"total_periods_for_topic"`
	ScheduleSource        string     `gorm:"type:varchar(20);not null;default:'INDIVIDUAL'" json:"schedule_source"`
	ScheduleStatus        string     `gorm:"type:varchar(20);not null;default:'READY'"      json:"schedule_status"`
	MissingLessonTopic    bool       `gorm:"not null;default:false"                         json:"missing_lesson_topic"`
	HasScheduleConflict   bool       `gorm:"not null;default:false"                         json:"has_schedule_conflict"`
	ConflictDetails       JSONMap    `gorm:"type:jsonb"                                     json:"conflict_details,omitempty"`
	Completed             bool       `gorm:"not null;default:false"                         json:"completed"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	MarkedIncompleteReason string    `gorm:"type:varchar(50)"                               json:"marked_incomplete_reason,omitempty"`
	AssessmentWindowStart *time.Time `json:"assessment_window_start,omitempty"`
	AssessmentWindowEnd   *time.Time `json:"assessment_window_end,omitempty"`
	GraceEnd              *time.Time `json:"grace_end,omitempty"`
	IndividualTimetableID *string    `gorm:"type:uuid"                                      json:"individual_timetable_id,omitempty"`
	LessonAssignmentMethod string    `gorm:"type:varchar(30)"                               json:"lesson_assignment_method,omitempty"`
	WeekNumber            int        `gorm:"type:smallint;not null"                         json:"week_number"`
	BaseModel

	// 关联
	Student            *StudentProfile     `gorm:"foreignKey:StudentID;references:StudentID"            json:"student,omitempty"`
	Subject            *Subject            `gorm:"foreignKey:SubjectID;references:SubjectID"            json:"subject,omitempty"`
	LessonTopic        *LessonTopic        `gorm:"foreignKey:LessonTopicID;references:LessonTopicID"    json:"lesson_topic,omitempty"`
	AssessmentInstance *AssessmentInstance `gorm:"foreignKey:AssessmentInstanceID;references:InstanceID" json:"assessment_instance,omitempty"`
}

// TableName 指定表名
func (DailySchedule) TableName() string { return "daily_schedules" }
