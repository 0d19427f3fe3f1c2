package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Term          TermRepository
	Subject       SubjectRepository
	Student       StudentRepository
	Timetable     TimetableRepository
	LessonTopic   LessonTopicRepository
	Assessment    AssessmentRepository
	DailySchedule DailyScheduleRepository
	Submission    SubmissionRepository
	Holiday       HolidayRepository
	Progress      ProgressRepository
	Archive       ArchiveRepository
}

// BeginTx 开启数据库事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到指定事务的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		Term:          NewTermRepo(db),
		Subject:       NewSubjectRepo(db),
		Student:       NewStudentRepo(db),
		Timetable:     NewTimetableRepo(db),
		LessonTopic:   NewLessonTopicRepo(db),
		Assessment:    NewAssessmentRepo(db),
		DailySchedule: NewDailyScheduleRepo(db),
		Submission:    NewSubmissionRepo(db),
		Holiday:       NewHolidayRepo(db),
		Progress:      NewProgressRepo(db),
		Archive:       NewArchiveRepo(db),
	}
}
