package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
)

// ProgressRepository 学生课时进度数据访问接口
type ProgressRepository interface {
	// Upsert 幂等写入：落在 (student_id, lesson_topic_id, scheduled_date, period_number) 唯一约束上
	Upsert(ctx context.Context, progress *model.StudentLessonProgress) error
	GetBySchedule(ctx context.Context, scheduleID string) (*model.StudentLessonProgress, error)
	ListByScheduleIDs(ctx context.Context, scheduleIDs []string) ([]model.StudentLessonProgress, error)
	MarkCompleted(ctx context.Context, scheduleID string, at time.Time, submissionID string) error
	MarkIncompleteBySchedules(ctx context.Context, scheduleIDs []string, reason string) error
	// DeleteWithoutSubmission 删除无提交的进度行；有提交的保留并断开课表引用
	DeleteWithoutSubmission(ctx context.Context, scheduleIDs []string) error
	DetachSchedules(ctx context.Context, scheduleIDs []string) error
}

type progressRepo struct {
	db *gorm.DB
}

func NewProgressRepo(db *gorm.DB) ProgressRepository {
	return &progressRepo{db: db}
}

func (r *progressRepo) Upsert(ctx context.Context, progress *model.StudentLessonProgress) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_id"},
				{Name: "lesson_topic_id"},
				{Name: "scheduled_date"},
				{Name: "period_number"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"schedule_id",
				"period_sequence",
				"total_periods_in_sequence",
				"assessment_accessible",
				"updated_at",
			}),
		}).
		Create(progress).Error
}

func (r *progressRepo) GetBySchedule(ctx context.Context, scheduleID string) (*model.StudentLessonProgress, error) {
	var progress model.StudentLessonProgress
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *progressRepo) ListByScheduleIDs(ctx context.Context, scheduleIDs []string) ([]model.StudentLessonProgress, error) {
	if len(scheduleIDs) == 0 {
		return nil, nil
	}
	var rows []model.StudentLessonProgress
	err := r.db.WithContext(ctx).
		Where("schedule_id IN ?", scheduleIDs).
		Find(&rows).Error
	return rows, err
}

func (r *progressRepo) MarkCompleted(ctx context.Context, scheduleID string, at time.Time, submissionID string) error {
	return r.db.WithContext(ctx).
		Model(&model.StudentLessonProgress{}).
		Where("schedule_id = ?", scheduleID).
		Updates(map[string]interface{}{
			"completed":     true,
			"completed_at":  at,
			"submission_id": submissionID,
		}).Error
}

func (r *progressRepo) MarkIncompleteBySchedules(ctx context.Context, scheduleIDs []string, reason string) error {
	if len(scheduleIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.StudentLessonProgress{}).
		Where("schedule_id IN ? AND completed = ?", scheduleIDs, false).
		Update("incomplete_reason", reason).Error
}

func (r *progressRepo) DeleteWithoutSubmission(ctx context.Context, scheduleIDs []string) error {
	if len(scheduleIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("schedule_id IN ? AND submission_id IS NULL", scheduleIDs).
		Delete(&model.StudentLessonProgress{}).Error
}

func (r *progressRepo) DetachSchedules(ctx context.Context, scheduleIDs []string) error {
	if len(scheduleIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.StudentLessonProgress{}).
		Where("schedule_id IN ?", scheduleIDs).
		Update("schedule_id", nil).Error
}
