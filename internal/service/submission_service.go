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

// ── 测评提交模块业务错误 ──

var (
	ErrNotScheduleOwner    = errors.New("无权提交该课表行的测评")
	ErrScheduleNoInstance  = errors.New("该课表行未挂载测评实例")
	ErrInvalidSubmitTime   = errors.New("无效的提交时间")
)

// 窗口前提交的提示语（提交被记录但作废，允许窗口内重交）
const noticeSubmittedEarly = "提交时间早于测评窗口开启，本次提交已作废，请在窗口开启后重新提交"

// SubmissionService 测评提交业务接口
//
// 窗口开启前的提交不拒绝：照常落库但标记作废，保留原始提交时间供审计，
// 成绩清零且不计入任何聚合；窗口内重交为新记录
type SubmissionService interface {
	Submit(ctx context.Context, req *dto.SubmitAssessmentRequest, studentID string) (*dto.SubmissionResponse, error)
	// NullifySweep 回溯作废巡检：捕捉窗口字段事后变更产生的早交记录
	NullifySweep(ctx context.Context) (int, error)
	// GraceSweep 宽限期到期巡检：将未完成行标记 MISSED_GRACE_PERIOD
	GraceSweep(ctx context.Context) (int, error)
}

type submissionService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(repo *repository.Repository, logger *zap.Logger) SubmissionService {
	return &submissionService{repo: repo, now: time.Now, logger: logger}
}

func (s *submissionService) Submit(ctx context.Context, req *dto.SubmitAssessmentRequest, studentID string) (*dto.SubmissionResponse, error) {
	schedule, err := s.repo.DailySchedule.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询课表行失败", zap.Error(err))
		return nil, err
	}
	if schedule.StudentID != studentID {
		return nil, ErrNotScheduleOwner
	}
	if schedule.AssessmentInstanceID == nil {
		return nil, ErrScheduleNoInstance
	}

	submittedAt := s.now()
	if req.SubmittedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.SubmittedAt)
		if err != nil {
			return nil, ErrInvalidSubmitTime
		}
		submittedAt = parsed
	}

	score := 0.0
	graded := false
	if req.Score != nil {
		score = *req.Score
		graded = true
	}

	submission := &model.AssessmentSubmission{
		StudentID:            studentID,
		AssessmentInstanceID: *schedule.AssessmentInstanceID,
		ScheduleID:           schedule.ScheduleID,
		SubmittedAt:          submittedAt,
		Score:                score,
		Graded:               graded,
	}

	early := schedule.AssessmentWindowStart != nil && submittedAt.Before(*schedule.AssessmentWindowStart)
	if early {
		// 窗口前提交：作废但不报错，保留原始时间与原因
		now := s.now()
		submission.Nullified = true
		submission.NullifiedAt = &now
		submission.NullifiedReason = model.NullifyReasonBeforeWindow
		submission.OriginalSubmittedAt = &submittedAt
		submission.Score = 0
		submission.Graded = false
	}

	if err := s.repo.Submission.Create(ctx, submission); err != nil {
		s.logger.Error("写入提交记录失败", zap.Error(err))
		return nil, err
	}

	if !early {
		if err := s.repo.DailySchedule.MarkCompleted(ctx, schedule.ScheduleID, submittedAt); err != nil {
			s.logger.Error("标记课表行完成失败", zap.Error(err))
			return nil, err
		}
		if err := s.repo.Progress.MarkCompleted(ctx, schedule.ScheduleID, submittedAt, submission.SubmissionID); err != nil {
			s.logger.Error("标记进度完成失败", zap.Error(err))
			return nil, err
		}
	}

	resp := &dto.SubmissionResponse{
		ID:          submission.SubmissionID,
		ScheduleID:  schedule.ScheduleID,
		SubmittedAt: submittedAt.Format(time.RFC3339),
		Score:       submission.Score,
		Nullified:   submission.Nullified,
	}
	if early {
		resp.NullifiedReason = submission.NullifiedReason
		resp.OriginalSubmittedAt = submittedAt.Format(time.RFC3339)
		resp.Notice = noticeSubmittedEarly
	}
	return resp, nil
}

func (s *submissionService) NullifySweep(ctx context.Context) (int, error) {
	early, err := s.repo.Submission.ListEarlyUnnullified(ctx)
	if err != nil {
		s.logger.Error("回溯作废巡检查询失败", zap.Error(err))
		return 0, err
	}

	count := 0
	now := s.now()
	for i := range early {
		if err := s.repo.Submission.Nullify(ctx, early[i].SubmissionID, model.NullifyReasonBeforeWindow, now); err != nil {
			s.logger.Error("作废提交失败",
				zap.String("submission_id", early[i].SubmissionID),
				zap.Error(err),
			)
			continue
		}
		count++
	}
	if count > 0 {
		s.logger.Info("回溯作废巡检完成", zap.Int("nullified", count))
	}
	return count, nil
}

func (s *submissionService) GraceSweep(ctx context.Context) (int, error) {
	expired, err := s.repo.DailySchedule.ListGraceExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("宽限期巡检查询失败", zap.Error(err))
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(expired))
	for i := range expired {
		ids = append(ids, expired[i].ScheduleID)
	}
	if err := s.repo.DailySchedule.MarkIncomplete(ctx, ids, model.IncompleteReasonMissedGrace); err != nil {
		s.logger.Error("标记宽限期未完成失败", zap.Error(err))
		return 0, err
	}
	if err := s.repo.Progress.MarkIncompleteBySchedules(ctx, ids, model.IncompleteReasonMissedGrace); err != nil {
		s.logger.Error("标记进度未完成失败", zap.Error(err))
		return 0, err
	}

	s.logger.Info("宽限期巡检完成", zap.Int("marked", len(ids)))
	return len(ids), nil
}
