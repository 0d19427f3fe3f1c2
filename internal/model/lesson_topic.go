package model

// LessonTopic 课程主题表 — 对应 lesson_topics
// 同一学科同一学期内每周最多一个主题
type LessonTopic struct {
	LessonTopicID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"lesson_topic_id"`
	SubjectID     string `gorm:"type:uuid;not null"                             json:"subject_id"`
	TermID        string `gorm:"type:uuid;not null"                             json:"term_id"`
	WeekNumber    int    `gorm:"type:smallint;not null"                         json:"week_number"`
	TopicTitle    string `gorm:"type:varchar(255);not null"                     json:"topic_title"`
	BaseModel

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
	Term    *Term    `gorm:"foreignKey:TermID;references:TermID"       json:"term,omitempty"`
}

// TableName 指定表名
func (LessonTopic) TableName() string { return "lesson_topics" }
