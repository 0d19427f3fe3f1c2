package model

import "time"

// PublicHoliday 公共假期表 — 对应 public_holidays
type PublicHoliday struct {
	HolidayID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"holiday_id"`
	HolidayDate    time.Time `gorm:"type:date;not null;uniqueIndex"                 json:"holiday_date"`
	HolidayName    string    `gorm:"type:varchar(100);not null"                     json:"holiday_name"`
	IsSchoolClosed bool      `gorm:"not null;default:true"                          json:"is_school_closed"`
	BaseModel
}

// TableName 指定表名
func (PublicHoliday) TableName() string { return "public_holidays" }
