package model

import "time"

// 作废原因
const (
	NullifyReasonBeforeWindow = "SUBMITTED_BEFORE_WINDOW_OPEN"
)

// AssessmentSubmission 测评提交记录 — 对应 assessment_submissions
// 窗口开启前的提交被作废：保留原始提交时间与原因，成绩清零，允许窗口内重交
type AssessmentSubmission struct {
	SubmissionID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	StudentID            string     `gorm:"type:uuid;not null;index"                       json:"student_id"`
	AssessmentInstanceID string     `gorm:"type:uuid;not null;index"                       json:"assessment_instance_id"`
	ScheduleID           string     `gorm:"type:uuid;not null;index"                       json:"schedule_id"`
	SubmittedAt          time.Time  `gorm:"not null"                                       json:"submitted_at"`
	Score                float64    `gorm:"type:numeric(5,2);not null;default:0"           json:"score"`
	Graded               bool       `gorm:"not null;default:false"                         json:"graded"`
	Nullified            bool       `gorm:"not null;default:false"                         json:"nullified"`
	NullifiedAt          *time.Time `json:"nullified_at,omitempty"`
	NullifiedReason      string     `gorm:"type:varchar(100)"                              json:"nullified_reason,omitempty"`
	OriginalSubmittedAt  *time.Time `json:"original_submitted_at,omitempty"`
	BaseModel

	// 关联
	AssessmentInstance *AssessmentInstance `gorm:"foreignKey:AssessmentInstanceID;references:InstanceID" json:"assessment_instance,omitempty"`
	Schedule           *DailySchedule      `gorm:"foreignKey:ScheduleID;references:ScheduleID"           json:"schedule,omitempty"`
}

// TableName 指定表名
func (AssessmentSubmission) TableName() string { return "assessment_submissions" }
