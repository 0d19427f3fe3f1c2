package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
)

// ArchiveRepository 归档数据访问接口
// 写入以 source_*_id 唯一约束保证幂等：重复归档同一行是空操作
type ArchiveRepository interface {
	BatchCreateSchedules(ctx context.Context, rows []model.ArchivedDailySchedule) (int64, error)
	BatchCreateProgress(ctx context.Context, rows []model.ArchivedStudentLessonProgress) (int64, error)
	ListSchedulesByStudent(ctx context.Context, studentID string, termID string) ([]model.ArchivedDailySchedule, error)
	// DeleteOlderThan 保留期清理，返回删除的课表行数
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type archiveRepo struct {
	db *gorm.DB
}

func NewArchiveRepo(db *gorm.DB) ArchiveRepository {
	return &archiveRepo{db: db}
}

func (r *archiveRepo) BatchCreateSchedules(ctx context.Context, rows []model.ArchivedDailySchedule) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_schedule_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	return result.RowsAffected, result.Error
}

func (r *archiveRepo) BatchCreateProgress(ctx context.Context, rows []model.ArchivedStudentLessonProgress) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_progress_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	return result.RowsAffected, result.Error
}

func (r *archiveRepo) ListSchedulesByStudent(ctx context.Context, studentID string, termID string) ([]model.ArchivedDailySchedule, error) {
	var rows []model.ArchivedDailySchedule
	query := r.db.WithContext(ctx).
		Where("student_id = ?", studentID)
	if termID != "" {
		query = query.Where("term_id = ?", termID)
	}
	err := query.
		Order("scheduled_date ASC, period_number ASC").
		Find(&rows).Error
	return rows, err
}

func (r *archiveRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := r.db.WithContext(ctx).
		Where("archived_at < ?", cutoff).
		Delete(&model.ArchivedStudentLessonProgress{}).Error; err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).
		Where("archived_at < ?", cutoff).
		Delete(&model.ArchivedDailySchedule{})
	return result.RowsAffected, result.Error
}
