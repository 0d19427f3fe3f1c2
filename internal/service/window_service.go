package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/dto"
	"github.com/forhay123/haybee-edu-sub009/internal/model"
	"github.com/forhay123/haybee-edu-sub009/internal/repository"
)

// ── 测评窗口模块业务错误 ──

var (
	ErrScheduleNotFound = errors.New("课表行不存在")
	ErrInvalidDateRange = errors.New("无效的日期范围")
)

// WindowService 测评窗口读侧业务接口
// 行上只存窗口三元组（开始/结束/宽限截止），运行时状态永远现算
type WindowService interface {
	// ListSchedules 按日期范围查学生课表，带派生状态与聚合概览，按日期与节次排序
	ListSchedules(ctx context.Context, req *dto.ScheduleListRequest) (*dto.ScheduleListResponse, error)
	// Accessibility 测评可访问性：窗口状态 + 多课时前序依赖
	Accessibility(ctx context.Context, scheduleID string) (*dto.AccessCheckResponse, error)
}

type windowService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewWindowService 创建 WindowService 实例
func NewWindowService(repo *repository.Repository, logger *zap.Logger) WindowService {
	return &windowService{repo: repo, now: time.Now, logger: logger}
}

func (s *windowService) ListSchedules(ctx context.Context, req *dto.ScheduleListRequest) (*dto.ScheduleListResponse, error) {
	from, err := time.Parse(dateLayout, req.From)
	if err != nil {
		return nil, ErrInvalidDateRange
	}
	to, err := time.Parse(dateLayout, req.To)
	if err != nil || to.Before(from) {
		return nil, ErrInvalidDateRange
	}

	schedules, err := s.repo.DailySchedule.ListByStudentDateRange(ctx, req.StudentID, from, to)
	if err != nil {
		s.logger.Error("查询课表失败", zap.Error(err))
		return nil, err
	}
	if len(schedules) == 0 {
		return &dto.ScheduleListResponse{Items: []dto.ScheduleItemResponse{}}, nil
	}

	ids := make([]string, 0, len(schedules))
	for i := range schedules {
		ids = append(ids, schedules[i].ScheduleID)
	}
	submissionCounts, err := s.repo.Submission.CountValidBySchedules(ctx, ids)
	if err != nil {
		s.logger.Error("查询提交记录失败", zap.Error(err))
		return nil, err
	}

	now := s.now()
	items := make([]dto.ScheduleItemResponse, 0, len(schedules))
	completed := 0
	for i := range schedules {
		sc := &schedules[i]
		state := DeriveStatus(StatusSnapshot{
			Now:                now,
			WindowStart:        sc.AssessmentWindowStart,
			WindowEnd:          sc.AssessmentWindowEnd,
			GraceEnd:           sc.GraceEnd,
			HasValidSubmission: submissionCounts[sc.ScheduleID] > 0,
			CompletedAt:        sc.CompletedAt,
		})
		if state == StateCompleted {
			completed++
		}
		items = append(items, scheduleToResponse(sc, state))
	}

	avg, err := s.repo.Submission.AverageValidScore(ctx, req.StudentID)
	if err != nil {
		s.logger.Error("查询有效提交平均分失败", zap.Error(err))
		return nil, err
	}

	return &dto.ScheduleListResponse{
		Items: items,
		Summary: dto.ScheduleSummary{
			TotalSchedules:    len(items),
			Completed:         completed,
			AverageValidScore: avg,
		},
	}, nil
}

func (s *windowService) Accessibility(ctx context.Context, scheduleID string) (*dto.AccessCheckResponse, error) {
	schedule, err := s.repo.DailySchedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询课表行失败", zap.Error(err))
		return nil, err
	}

	state, err := s.deriveState(ctx, schedule)
	if err != nil {
		return nil, err
	}

	resp := &dto.AccessCheckResponse{
		ScheduleID: scheduleID,
		Status:     string(state),
	}

	// 多课时前序依赖：第 N 课时要求第 N-1 课时已完成
	if schedule.PeriodSequence > 1 && schedule.LessonTopicID != nil {
		resp.HasPreviousPeriod = true
		siblings, err := s.repo.DailySchedule.ListByTopicOrdered(ctx, schedule.StudentID, *schedule.LessonTopicID)
		if err != nil {
			s.logger.Error("查询同主题课时失败", zap.Error(err))
			return nil, err
		}
		for i := range siblings {
			if siblings[i].PeriodSequence == schedule.PeriodSequence-1 {
				prevState, err := s.deriveState(ctx, &siblings[i])
				if err != nil {
					return nil, err
				}
				resp.PreviousPeriodCompleted = prevState == StateCompleted
				break
			}
		}
	}

	switch {
	case state != StateAvailable:
		resp.Accessible = false
		resp.Reason = "测评窗口未开启或已关闭"
	case resp.HasPreviousPeriod && !resp.PreviousPeriodCompleted:
		resp.Accessible = false
		resp.Reason = "前一课时尚未完成"
	default:
		resp.Accessible = true
	}
	return resp, nil
}

func (s *windowService) deriveState(ctx context.Context, schedule *model.DailySchedule) (ScheduleState, error) {
	hasValid := false
	_, err := s.repo.Submission.GetValidBySchedule(ctx, schedule.ScheduleID)
	if err == nil {
		hasValid = true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询有效提交失败", zap.Error(err))
		return "", err
	}

	return DeriveStatus(StatusSnapshot{
		Now:                s.now(),
		WindowStart:        schedule.AssessmentWindowStart,
		WindowEnd:          schedule.AssessmentWindowEnd,
		GraceEnd:           schedule.GraceEnd,
		HasValidSubmission: hasValid,
		CompletedAt:        schedule.CompletedAt,
	}), nil
}

func scheduleToResponse(sc *model.DailySchedule, state ScheduleState) dto.ScheduleItemResponse {
	resp := dto.ScheduleItemResponse{
		ID:                   sc.ScheduleID,
		StudentID:            sc.StudentID,
		ScheduledDate:        sc.ScheduledDate.Format(dateLayout),
		DayOfWeek:            sc.DayOfWeek,
		PeriodNumber:         sc.PeriodNumber,
		StartTime:            sc.StartTime,
		EndTime:              sc.EndTime,
		SubjectID:            sc.SubjectID,
		PeriodSequence:       sc.PeriodSequence,
		TotalPeriodsForTopic: sc.TotalPeriodsForTopic,
		MissingLessonTopic:   sc.MissingLessonTopic,
		HasScheduleConflict:  sc.HasScheduleConflict,
		Status:               string(state),
		WeekNumber:           sc.WeekNumber,
	}
	if sc.Subject != nil {
		resp.SubjectName = sc.Subject.Name
	}
	if sc.LessonTopicID != nil {
		resp.LessonTopicID = *sc.LessonTopicID
	}
	if sc.LessonTopic != nil {
		resp.TopicTitle = sc.LessonTopic.TopicTitle
	}
	if sc.AssessmentInstanceID != nil {
		resp.AssessmentInstanceID = *sc.AssessmentInstanceID
	}
	if sc.AssessmentWindowStart != nil {
		resp.WindowStart = sc.AssessmentWindowStart.Format(time.RFC3339)
	}
	if sc.AssessmentWindowEnd != nil {
		resp.WindowEnd = sc.AssessmentWindowEnd.Format(time.RFC3339)
	}
	if sc.GraceEnd != nil {
		resp.GraceEnd = sc.GraceEnd.Format(time.RFC3339)
	}
	return resp
}
