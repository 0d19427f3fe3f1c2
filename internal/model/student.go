package model

// 学生类型
const (
	StudentTypeIndividual = "INDIVIDUAL" // 个性化排课学生
	StudentTypeClass      = "CLASS"      // 班级统一排课学生
)

// StudentProfile 学生档案表 — 对应 student_profiles
// 用户主数据在平台侧维护，这里只保留排课所需的档案信息
type StudentProfile struct {
	StudentID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	UserID      string `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	DisplayName string `gorm:"type:varchar(100);not null"                     json:"display_name"`
	StudentType string `gorm:"type:varchar(20);not null;default:'INDIVIDUAL'" json:"student_type"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (StudentProfile) TableName() string { return "student_profiles" }
