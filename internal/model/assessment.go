package model

// Assessment 基础测评表 — 对应 assessments
// 每个课程主题对应一份基础测评，多课时场景下派生多个打乱实例
type Assessment struct {
	AssessmentID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assessment_id"`
	LessonTopicID string `gorm:"type:uuid;not null"                             json:"lesson_topic_id"`
	Title         string `gorm:"type:varchar(255);not null"                     json:"title"`
	IsActive      bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	LessonTopic *LessonTopic         `gorm:"foreignKey:LessonTopicID;references:LessonTopicID" json:"lesson_topic,omitempty"`
	Questions   []AssessmentQuestion `gorm:"foreignKey:AssessmentID"                           json:"questions,omitempty"`
}

// TableName 指定表名
func (Assessment) TableName() string { return "assessments" }

// AssessmentQuestion 测评题目表 — 对应 assessment_questions
type AssessmentQuestion struct {
	QuestionID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"question_id"`
	AssessmentID string `gorm:"type:uuid;not null;index"                       json:"assessment_id"`
	OrderNumber  int    `gorm:"type:smallint;not null"                         json:"order_number"`
	QuestionText string `gorm:"type:text;not null"                             json:"question_text"`
	BaseModel
}

// TableName 指定表名
func (AssessmentQuestion) TableName() string { return "assessment_questions" }

// AssessmentInstance 测评实例表 — 对应 assessment_instances
// 每个课时对应一个实例，后缀 A..J 用尽后转数字。
// (base_assessment_id, period_sequence) 与 (base_assessment_id, instance_suffix)
// 均唯一，重复生成时复用已有实例而非新建
type AssessmentInstance struct {
	InstanceID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"instance_id"`
	BaseAssessmentID string `gorm:"type:uuid;not null"                             json:"base_assessment_id"`
	LessonTopicID    string `gorm:"type:uuid;not null"                             json:"lesson_topic_id"`
	PeriodSequence   int    `gorm:"type:smallint;not null"                         json:"period_sequence"`
	TotalPeriods     int    `gorm:"type:smallint;not null"                         json:"total_periods"`
	InstanceSuffix   string `gorm:"type:varchar(10);not null"                      json:"instance_suffix"`
	WeekNumber       int    `gorm:"type:smallint;not null"                         json:"week_number"`
	IsActive         bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	BaseAssessment *Assessment                  `gorm:"foreignKey:BaseAssessmentID;references:AssessmentID" json:"base_assessment,omitempty"`
	Questions      []ShuffledAssessmentQuestion `gorm:"foreignKey:InstanceID"                               json:"questions,omitempty"`
}

// TableName 指定表名
func (AssessmentInstance) TableName() string { return "assessment_instances" }

// ShuffledAssessmentQuestion 打乱后的实例题序 — 对应 shuffled_assessment_questions
// 每个实例覆盖基础测评的全部题目恰好一次
type ShuffledAssessmentQuestion struct {
	ShuffledQuestionID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shuffled_question_id"`
	InstanceID           string `gorm:"type:uuid;not null"                             json:"instance_id"`
	QuestionID           string `gorm:"type:uuid;not null"                             json:"question_id"`
	ShuffledDisplayOrder int    `gorm:"type:smallint;not null"                         json:"shuffled_display_order"`
	BaseModel

	// 关联
	Question *AssessmentQuestion `gorm:"foreignKey:QuestionID;references:QuestionID" json:"question,omitempty"`
}

// TableName 指定表名
func (ShuffledAssessmentQuestion) TableName() string { return "shuffled_assessment_questions" }
