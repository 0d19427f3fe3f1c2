package model

import "time"

// Term 学期表 — 对应 terms
type Term struct {
	TermID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"term_id"`
	Name      string    `gorm:"type:varchar(100);not null"                     json:"name"`
	StartDate time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null"                             json:"end_date"`
	WeekCount int       `gorm:"type:smallint;not null"                         json:"week_count"`
	IsActive  bool      `gorm:"not null;default:false"                         json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Term) TableName() string { return "terms" }
