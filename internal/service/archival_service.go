package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/dto"
	"github.com/forhay123/haybee-edu-sub009/internal/model"
	"github.com/forhay123/haybee-edu-sub009/internal/repository"
)

// ── 归档模块业务错误 ──

var ErrTermNotFound = errors.New("学期不存在")

// ArchivalService 归档业务接口
//
// 归档以 source_schedule_id / source_progress_id 唯一约束保证幂等：
// 同一周重复归档是空操作。活动表删除是独立的第二步，
// 有提交的进度行不删除，仅断开课表引用
type ArchivalService interface {
	ArchiveTermWeek(ctx context.Context, req *dto.ArchiveTermWeekRequest) (*dto.ArchiveResponse, error)
	// RetentionSweep 删除超出保留期的归档行，返回删除的课表行数
	RetentionSweep(ctx context.Context) (int64, error)
}

type archivalService struct {
	repo          *repository.Repository
	retentionDays int
	now           func() time.Time
	logger        *zap.Logger
}

// NewArchivalService 创建 ArchivalService 实例
func NewArchivalService(repo *repository.Repository, retentionDays int, logger *zap.Logger) ArchivalService {
	return &archivalService{
		repo:          repo,
		retentionDays: retentionDays,
		now:           time.Now,
		logger:        logger,
	}
}

func (s *archivalService) ArchiveTermWeek(ctx context.Context, req *dto.ArchiveTermWeekRequest) (*dto.ArchiveResponse, error) {
	term, err := s.repo.Term.GetByID(ctx, req.TermID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}

	weeks := make([]int, 0, term.WeekCount)
	if req.WeekNumber != nil {
		if *req.WeekNumber < 1 || *req.WeekNumber > term.WeekCount {
			return nil, ErrInvalidWeekNumber
		}
		weeks = append(weeks, *req.WeekNumber)
	} else {
		for w := 1; w <= term.WeekCount; w++ {
			weeks = append(weeks, w)
		}
	}

	resp := &dto.ArchiveResponse{}
	for _, week := range weeks {
		if err := s.archiveWeek(ctx, term, week, req.DeleteAfterArchive, resp); err != nil {
			return nil, err
		}
	}

	s.logger.Info("归档完成",
		zap.String("term_id", term.TermID),
		zap.Int64("schedules_archived", resp.SchedulesArchived),
		zap.Int64("progress_archived", resp.ProgressArchived),
		zap.Int64("schedules_deleted", resp.SchedulesDeleted),
	)
	return resp, nil
}

func (s *archivalService) archiveWeek(ctx context.Context, term *model.Term, week int, deleteAfter bool, resp *dto.ArchiveResponse) error {
	// 周次编号每学期都从 1 开始，按学期周的日期区间取行才不会
	// 把其他学期的同周次行归错学期
	weekStart := WeekStartDate(term, week)
	weekEnd := weekStart.AddDate(0, 0, 6)
	schedules, err := s.repo.DailySchedule.ListByDateRange(ctx, weekStart, weekEnd)
	if err != nil {
		s.logger.Error("查询待归档课表失败", zap.Error(err))
		return err
	}
	if len(schedules) == 0 {
		return nil
	}

	year := academicYear(term)

	archiveRows := make([]model.ArchivedDailySchedule, 0, len(schedules))
	scheduleIDs := make([]string, 0, len(schedules))
	for i := range schedules {
		sc := &schedules[i]
		scheduleIDs = append(scheduleIDs, sc.ScheduleID)
		archiveRows = append(archiveRows, model.ArchivedDailySchedule{
			SourceScheduleID:       sc.ScheduleID,
			StudentID:              sc.StudentID,
			TermID:                 term.TermID,
			TermWeekNumber:         week,
			AcademicYear:           year,
			ScheduledDate:          sc.ScheduledDate,
			DayOfWeek:              sc.DayOfWeek,
			PeriodNumber:           sc.PeriodNumber,
			StartTime:              sc.StartTime,
			EndTime:                sc.EndTime,
			SubjectID:              sc.SubjectID,
			LessonTopicID:          sc.LessonTopicID,
			AssessmentInstanceID:   sc.AssessmentInstanceID,
			PeriodSequence:         sc.PeriodSequence,
			TotalPeriodsForTopic:   sc.TotalPeriodsForTopic,
			Completed:              sc.Completed,
			CompletedAt:            sc.CompletedAt,
			MarkedIncompleteReason: sc.MarkedIncompleteReason,
		})
	}

	archived, err := s.repo.Archive.BatchCreateSchedules(ctx, archiveRows)
	if err != nil {
		s.logger.Error("写入归档课表失败", zap.Error(err))
		return err
	}
	resp.SchedulesArchived += archived

	progressRows, err := s.repo.Progress.ListByScheduleIDs(ctx, scheduleIDs)
	if err != nil {
		s.logger.Error("查询待归档进度失败", zap.Error(err))
		return err
	}
	archiveProgress := make([]model.ArchivedStudentLessonProgress, 0, len(progressRows))
	for i := range progressRows {
		p := &progressRows[i]
		archiveProgress = append(archiveProgress, model.ArchivedStudentLessonProgress{
			SourceProgressID:       p.ProgressID,
			StudentID:              p.StudentID,
			TermID:                 term.TermID,
			TermWeekNumber:         week,
			AcademicYear:           year,
			LessonTopicID:          p.LessonTopicID,
			ScheduledDate:          p.ScheduledDate,
			PeriodNumber:           p.PeriodNumber,
			PeriodSequence:         p.PeriodSequence,
			TotalPeriodsInSequence: p.TotalPeriodsInSequence,
			Completed:              p.Completed,
			CompletedAt:            p.CompletedAt,
			IncompleteReason:       p.IncompleteReason,
		})
	}
	progressArchived, err := s.repo.Archive.BatchCreateProgress(ctx, archiveProgress)
	if err != nil {
		s.logger.Error("写入归档进度失败", zap.Error(err))
		return err
	}
	resp.ProgressArchived += progressArchived

	if deleteAfter {
		// 有提交的进度行保留（断开课表引用），无提交的删除
		if err := s.repo.Progress.DeleteWithoutSubmission(ctx, scheduleIDs); err != nil {
			s.logger.Error("清理进度行失败", zap.Error(err))
			return err
		}
		if err := s.repo.Progress.DetachSchedules(ctx, scheduleIDs); err != nil {
			s.logger.Error("断开进度行课表引用失败", zap.Error(err))
			return err
		}
		if err := s.repo.DailySchedule.DeleteByIDs(ctx, scheduleIDs); err != nil {
			s.logger.Error("删除活动课表行失败", zap.Error(err))
			return err
		}
		resp.SchedulesDeleted += int64(len(scheduleIDs))
	}
	return nil
}

func (s *archivalService) RetentionSweep(ctx context.Context) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.repo.Archive.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("归档保留清理失败", zap.Error(err))
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("归档保留清理完成",
			zap.Int64("deleted", deleted),
			zap.String("cutoff", cutoff.Format(dateLayout)),
		)
	}
	return deleted, nil
}

// academicYear 以学期起止年份拼学年标识，如 "2026/2027"
func academicYear(term *model.Term) string {
	startYear := term.StartDate.Year()
	endYear := term.EndDate.Year()
	if startYear == endYear {
		return fmt.Sprintf("%d", startYear)
	}
	return fmt.Sprintf("%d/%d", startYear, endYear)
}
