package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
)

// SubmissionRepository 测评提交数据访问接口
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.AssessmentSubmission) error
	GetByID(ctx context.Context, id string) (*model.AssessmentSubmission, error)
	// GetValidBySchedule 某课表行的有效（未作废）提交
	GetValidBySchedule(ctx context.Context, scheduleID string) (*model.AssessmentSubmission, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]model.AssessmentSubmission, error)
	// ListEarlyUnnullified 提交时间早于所属课表行窗口开始、且尚未作废的记录（回溯作废巡检用）
	ListEarlyUnnullified(ctx context.Context) ([]model.AssessmentSubmission, error)
	Nullify(ctx context.Context, id, reason string, at time.Time) error
	// AverageValidScore 有效提交的平均分，作废记录不计入
	AverageValidScore(ctx context.Context, studentID string) (float64, error)
	CountValidBySchedules(ctx context.Context, scheduleIDs []string) (map[string]int64, error)
}

type submissionRepo struct {
	db *gorm.DB
}

func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, submission *model.AssessmentSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.AssessmentSubmission, error) {
	var submission model.AssessmentSubmission
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", id).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepo) GetValidBySchedule(ctx context.Context, scheduleID string) (*model.AssessmentSubmission, error) {
	var submission model.AssessmentSubmission
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND nullified = ?", scheduleID, false).
		Order("submitted_at DESC").
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]model.AssessmentSubmission, error) {
	var submissions []model.AssessmentSubmission
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("submitted_at ASC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepo) ListEarlyUnnullified(ctx context.Context) ([]model.AssessmentSubmission, error) {
	var submissions []model.AssessmentSubmission
	err := r.db.WithContext(ctx).
		Joins("JOIN daily_schedules ON daily_schedules.schedule_id = assessment_submissions.schedule_id").
		Where("assessment_submissions.nullified = ?", false).
		Where("daily_schedules.assessment_window_start IS NOT NULL").
		Where("assessment_submissions.submitted_at < daily_schedules.assessment_window_start").
		Find(&submissions).Error
	return submissions, err
}

// Nullify 作废提交：成绩清零，保留原始提交时间供审计
func (r *submissionRepo) Nullify(ctx context.Context, id, reason string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.AssessmentSubmission{}).
		Where("submission_id = ? AND nullified = ?", id, false).
		Updates(map[string]interface{}{
			"nullified":             true,
			"nullified_at":          at,
			"nullified_reason":      reason,
			"original_submitted_at": gorm.Expr("submitted_at"),
			"score":                 0,
			"graded":                false,
		}).Error
}

func (r *submissionRepo) AverageValidScore(ctx context.Context, studentID string) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&model.AssessmentSubmission{}).
		Select("AVG(score)").
		Where("student_id = ? AND nullified = ? AND graded = ?", studentID, false, true).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func (r *submissionRepo) CountValidBySchedules(ctx context.Context, scheduleIDs []string) (map[string]int64, error) {
	if len(scheduleIDs) == 0 {
		return map[string]int64{}, nil
	}
	type row struct {
		ScheduleID string
		Count      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.AssessmentSubmission{}).
		Select("schedule_id, COUNT(*) AS count").
		Where("schedule_id IN ? AND nullified = ?", scheduleIDs, false).
		Group("schedule_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.ScheduleID] = r.Count
	}
	return counts, nil
}
