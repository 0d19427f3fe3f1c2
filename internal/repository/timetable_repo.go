package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
	pkgerrors "github.com/forhay123/haybee-edu-sub009/pkg/errors"
)

// TimetableRepository 学生课表数据访问接口
type TimetableRepository interface {
	Create(ctx context.Context, timetable *model.StudentTimetable) error
	GetByID(ctx context.Context, id string) (*model.StudentTimetable, error)
	GetLatestCompletedByStudent(ctx context.Context, studentID string) (*model.StudentTimetable, error)
	Update(ctx context.Context, timetable *model.StudentTimetable) error
}

type timetableRepo struct {
	db *gorm.DB
}

func NewTimetableRepo(db *gorm.DB) TimetableRepository {
	return &timetableRepo{db: db}
}

func (r *timetableRepo) Create(ctx context.Context, timetable *model.StudentTimetable) error {
	return r.db.WithContext(ctx).Create(timetable).Error
}

func (r *timetableRepo) GetByID(ctx context.Context, id string) (*model.StudentTimetable, error) {
	var timetable model.StudentTimetable
	err := r.db.WithContext(ctx).
		Where("timetable_id = ?", id).
		First(&timetable).Error
	if err != nil {
		return nil, err
	}
	return &timetable, nil
}

// GetLatestCompletedByStudent 取学生最近一份解析完成的课表（生成排课的输入）
func (r *timetableRepo) GetLatestCompletedByStudent(ctx context.Context, studentID string) (*model.StudentTimetable, error) {
	var timetable model.StudentTimetable
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND processing_status = ?", studentID, model.TimetableStatusCompleted).
		Order("uploaded_at DESC").
		First(&timetable).Error
	if err != nil {
		return nil, err
	}
	return &timetable, nil
}

// Update 乐观锁更新：解析回调与冲突修复可能并发写同一份课表
func (r *timetableRepo) Update(ctx context.Context, timetable *model.StudentTimetable) error {
	oldVersion := timetable.Version
	result := r.db.WithContext(ctx).
		Model(timetable).
		Where("timetable_id = ? AND version = ?", timetable.TimetableID, oldVersion).
		Updates(map[string]interface{}{
			"processing_status": timetable.ProcessingStatus,
			"confidence_score":  timetable.ConfidenceScore,
			"extracted_entries": timetable.ExtractedEntries,
			"failure_reason":    timetable.FailureReason,
			"updated_by":        timetable.UpdatedBy,
			"version":           oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	timetable.Version = oldVersion + 1
	return nil
}
