package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// 课表处理状态
const (
	TimetableStatusPending    = "PENDING"
	TimetableStatusProcessing = "PROCESSING"
	TimetableStatusCompleted  = "COMPLETED"
	TimetableStatusFailed     = "FAILED"
)

// TimetableEntry 课表解析出的单条课时
type TimetableEntry struct {
	DayOfWeek   int    `json:"day_of_week"` // 1=周一 … 7=周日
	StartTime   string `json:"start_time"`  // HH:MM
	EndTime     string `json:"end_time"`    // HH:MM
	SubjectID   string `json:"subject_id,omitempty"`
	SubjectName string `json:"subject_name"`
}

// TimetableEntryList 对应 JSONB 数组，实现 GORM Scanner/Valuer 接口。
type TimetableEntryList []TimetableEntry

// Scan 将 JSONB 字节解析为课时列表。
func (l *TimetableEntryList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("TimetableEntryList.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, l)
}

// Value 将课时列表序列化为 JSONB 字节。
func (l TimetableEntryList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// StudentTimetable 学生个人课表 — 对应 student_timetables
// file_ref 指向上传的课表文件；extracted_entries 为外部解析服务回填的结构化课时
type StudentTimetable struct {
	TimetableID      string             `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"timetable_id"`
	StudentID        string             `gorm:"type:uuid;not null;index"                       json:"student_id"`
	FileRef          string             `gorm:"type:varchar(500)"                              json:"file_ref,omitempty"`
	ProcessingStatus string             `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"processing_status"`
	ConfidenceScore  *float64           `gorm:"type:numeric(4,3)"                              json:"confidence_score,omitempty"`
	ExtractedEntries TimetableEntryList `gorm:"type:jsonb"                                     json:"extracted_entries,omitempty"`
	FailureReason    string             `gorm:"type:varchar(500)"                              json:"failure_reason,omitempty"`
	UploadedAt       time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"uploaded_at"`
	VersionedModel

	// 关联
	Student *StudentProfile `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (StudentTimetable) TableName() string { return "student_timetables" }
