package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
)

// DailyScheduleRepository 每日课表数据访问接口
type DailyScheduleRepository interface {
	// Upsert 幂等写入：落在 (student_id, scheduled_date, period_number)
	// 唯一约束上，已存在时更新主题/实例/窗口字段而不新建行。
	// 返回值表示是否新建了行
	Upsert(ctx context.Context, schedule *model.DailySchedule) (bool, error)
	GetByID(ctx context.Context, id string) (*model.DailySchedule, error)
	ListByStudentDateRange(ctx context.Context, studentID string, from, to time.Time) ([]model.DailySchedule, error)
	ListByStudentWeek(ctx context.Context, studentID string, weekNumber int) ([]model.DailySchedule, error)
	// ListByDateRange 归档扫描用：按日期区间取行。week_number 每学期都会重复，
	// 跨学期区分只能靠 scheduled_date
	ListByDateRange(ctx context.Context, from, to time.Time) ([]model.DailySchedule, error)
	ListByTopicOrdered(ctx context.Context, studentID, lessonTopicID string) ([]model.DailySchedule, error)
	ListGraceExpired(ctx context.Context, now time.Time) ([]model.DailySchedule, error)
	MarkCompleted(ctx context.Context, id string, at time.Time) error
	MarkIncomplete(ctx context.Context, ids []string, reason string) error
	DeleteByIDs(ctx context.Context, ids []string) error
	DeleteByStudentWeek(ctx context.Context, studentID string, weekNumber int) (int64, error)
}

type dailyScheduleRepo struct {
	db *gorm.DB
}

func NewDailyScheduleRepo(db *gorm.DB) DailyScheduleRepository {
	return &dailyScheduleRepo{db: db}
}

func (r *dailyScheduleRepo) Upsert(ctx context.Context, schedule *model.DailySchedule) (bool, error) {
	// Postgres 的 upsert 不区分插入与更新，RowsAffected 两种情况都是 1，
	// 新建与否要靠先查
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.DailySchedule{}).
		Where("student_id = ? AND scheduled_date = ? AND period_number = ?",
			schedule.StudentID, schedule.ScheduledDate, schedule.PeriodNumber).
		Count(&count).Error; err != nil {
		return false, err
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_id"},
				{Name: "scheduled_date"},
				{Name: "period_number"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"subject_id",
				"lesson_topic_id",
				"assessment_instance_id",
				"period_sequence",
				"total_periods_for_topic",
				"schedule_status",
				"missing_lesson_topic",
				"has_schedule_conflict",
				"conflict_details",
				"assessment_window_start",
				"assessment_window_end",
				"grace_end",
				"individual_timetable_id",
				"lesson_assignment_method",
				"start_time",
				"end_time",
				"week_number",
				"updated_at",
			}),
		}).
		Create(schedule).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *dailyScheduleRepo) GetByID(ctx context.Context, id string) (*model.DailySchedule, error) {
	var schedule model.DailySchedule
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("LessonTopic").
		Preload("AssessmentInstance").
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *dailyScheduleRepo) ListByStudentDateRange(ctx context.Context, studentID string, from, to time.Time) ([]model.DailySchedule, error) {
	var schedules []model.DailySchedule
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("LessonTopic").
		Where("student_id = ? AND scheduled_date BETWEEN ? AND ?", studentID, from, to).
		Order("scheduled_date ASC, period_number ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *dailyScheduleRepo) ListByStudentWeek(ctx context.Context, studentID string, weekNumber int) ([]model.DailySchedule, error) {
	var schedules []model.DailySchedule
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("LessonTopic").
		Where("student_id = ? AND week_number = ?", studentID, weekNumber).
		Order("scheduled_date ASC, period_number ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *dailyScheduleRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.DailySchedule, error) {
	var schedules []model.DailySchedule
	err := r.db.WithContext(ctx).
		Where("scheduled_date BETWEEN ? AND ?", from, to).
		Order("student_id ASC, scheduled_date ASC, period_number ASC").
		Find(&schedules).Error
	return schedules, err
}

// ListByTopicOrdered 同一主题的多课时序列，按日期与开始时间升序（课时依赖检查用）
func (r *dailyScheduleRepo) ListByTopicOrdered(ctx context.Context, studentID, lessonTopicID string) ([]model.DailySchedule, error) {
	var schedules []model.DailySchedule
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND lesson_topic_id = ?", studentID, lessonTopicID).
		Order("scheduled_date ASC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

// ListGraceExpired 宽限期已过且未完成、尚未标记原因的行
func (r *dailyScheduleRepo) ListGraceExpired(ctx context.Context, now time.Time) ([]model.DailySchedule, error) {
	var schedules []model.DailySchedule
	err := r.db.WithContext(ctx).
		Where("completed = ? AND grace_end IS NOT NULL AND grace_end < ? AND (marked_incomplete_reason IS NULL OR marked_incomplete_reason = '')",
			false, now).
		Find(&schedules).Error
	return schedules, err
}

func (r *dailyScheduleRepo) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.DailySchedule{}).
		Where("schedule_id = ?", id).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": at,
		}).Error
}

func (r *dailyScheduleRepo) MarkIncomplete(ctx context.Context, ids []string, reason string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.DailySchedule{}).
		Where("schedule_id IN ?", ids).
		Update("marked_incomplete_reason", reason).Error
}

func (r *dailyScheduleRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("schedule_id IN ?", ids).
		Delete(&model.DailySchedule{}).Error
}

func (r *dailyScheduleRepo) DeleteByStudentWeek(ctx context.Context, studentID string, weekNumber int) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("student_id = ? AND week_number = ?", studentID, weekNumber).
		Delete(&model.DailySchedule{})
	return result.RowsAffected, result.Error
}
