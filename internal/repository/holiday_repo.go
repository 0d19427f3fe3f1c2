package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
)

// HolidayRepository 公共假期数据访问接口
type HolidayRepository interface {
	Create(ctx context.Context, holiday *model.PublicHoliday) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.PublicHoliday, error)
	// IsSchoolClosed 某日期是否为停课假期
	IsSchoolClosed(ctx context.Context, date time.Time) (bool, error)
	// ListClosedDates 全部停课日期（缓存预热用）
	ListClosedDates(ctx context.Context) ([]time.Time, error)
}

type holidayRepo struct {
	db *gorm.DB
}

func NewHolidayRepo(db *gorm.DB) HolidayRepository {
	return &holidayRepo{db: db}
}

func (r *holidayRepo) Create(ctx context.Context, holiday *model.PublicHoliday) error {
	return r.db.WithContext(ctx).Create(holiday).Error
}

func (r *holidayRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("holiday_id = ?", id).
		Delete(&model.PublicHoliday{}).Error
}

func (r *holidayRepo) List(ctx context.Context) ([]model.PublicHoliday, error) {
	var holidays []model.PublicHoliday
	err := r.db.WithContext(ctx).
		Order("holiday_date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *holidayRepo) IsSchoolClosed(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PublicHoliday{}).
		Where("holiday_date = ? AND is_school_closed = ?", date.Format("2006-01-02"), true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *holidayRepo) ListClosedDates(ctx context.Context) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&model.PublicHoliday{}).
		Where("is_school_closed = ?", true).
		Order("holiday_date ASC").
		Pluck("holiday_date", &dates).Error
	return dates, err
}
