package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/dto"
	"github.com/forhay123/haybee-edu-sub009/internal/model"
	"github.com/forhay123/haybee-edu-sub009/internal/repository"
)

// ── 课表模块业务错误 ──

var (
	ErrTimetableNotFound  = errors.New("课表不存在")
	ErrTimetableFinalized = errors.New("课表已有解析结果，不能重复回填")
	ErrICSSourceMissing   = errors.New("ICS 导入需要提供 url 或 content 之一")
	ErrICSEmpty           = errors.New("ICS 中没有可用的课时")
)

// 回传结果置信度低于该值时仅记录告警，不拒绝
const lowConfidenceThreshold = 0.5

// TimetableService 学生课表业务接口
//
// 上传只登记文件引用，结构化解析由外部服务完成后通过
// ApplyExtractionResult 回填。ICS 导入是绕开解析服务的直通通道
type TimetableService interface {
	Upload(ctx context.Context, req *dto.UploadTimetableRequest, callerID string) (*dto.TimetableResponse, error)
	Get(ctx context.Context, timetableID string) (*dto.TimetableResponse, error)
	ApplyExtractionResult(ctx context.Context, timetableID string, req *dto.ExtractionResultRequest, callerID string) (*dto.TimetableResponse, error)
	ImportICS(ctx context.Context, req *dto.ImportICSRequest, callerID string) (*dto.TimetableResponse, error)
}

type timetableService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(repo *repository.Repository, logger *zap.Logger) TimetableService {
	return &timetableService{repo: repo, logger: logger}
}

// Upload 登记课表文件，置为 PENDING 等待外部解析
func (s *timetableService) Upload(ctx context.Context, req *dto.UploadTimetableRequest, callerID string) (*dto.TimetableResponse, error) {
	if _, err := s.repo.Student.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	timetable := &model.StudentTimetable{
		StudentID:        req.StudentID,
		FileRef:          req.FileRef,
		ProcessingStatus: model.TimetableStatusPending,
	}
	timetable.CreatedBy = &callerID
	if err := s.repo.Timetable.Create(ctx, timetable); err != nil {
		s.logger.Error("登记课表失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("课表已登记",
		zap.String("timetable_id", timetable.TimetableID),
		zap.String("student_id", req.StudentID),
	)
	return timetableToResponse(timetable), nil
}

func (s *timetableService) Get(ctx context.Context, timetableID string) (*dto.TimetableResponse, error) {
	timetable, err := s.repo.Timetable.GetByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimetableNotFound
		}
		return nil, err
	}
	return timetableToResponse(timetable), nil
}

// ApplyExtractionResult 外部解析服务回调。
// 低置信度与部分缺失的结果照常入库（冲突检测兜底），只有 FAILED 置失败状态
func (s *timetableService) ApplyExtractionResult(ctx context.Context, timetableID string, req *dto.ExtractionResultRequest, callerID string) (*dto.TimetableResponse, error) {
	timetable, err := s.repo.Timetable.GetByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimetableNotFound
		}
		return nil, err
	}
	if timetable.ProcessingStatus == model.TimetableStatusCompleted {
		return nil, ErrTimetableFinalized
	}

	if req.Status == model.TimetableStatusFailed {
		timetable.ProcessingStatus = model.TimetableStatusFailed
		timetable.FailureReason = req.FailureReason
	} else {
		timetable.ProcessingStatus = model.TimetableStatusCompleted
		timetable.ConfidenceScore = req.ConfidenceScore
		timetable.ExtractedEntries = s.resolveSubjects(ctx, req.ExtractedPeriods)
		timetable.FailureReason = ""

		if req.ConfidenceScore != nil && *req.ConfidenceScore < lowConfidenceThreshold {
			s.logger.Warn("课表解析置信度偏低",
				zap.String("timetable_id", timetableID),
				zap.Float64("confidence_score", *req.ConfidenceScore),
			)
		}
	}

	timetable.UpdatedBy = &callerID
	if err := s.repo.Timetable.Update(ctx, timetable); err != nil {
		s.logger.Error("回填解析结果失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("课表解析结果已回填",
		zap.String("timetable_id", timetableID),
		zap.String("status", timetable.ProcessingStatus),
		zap.Int("entry_count", len(timetable.ExtractedEntries)),
	)
	return timetableToResponse(timetable), nil
}

// ImportICS 从 ICS 日历直接导入课表，跳过外部解析服务
func (s *timetableService) ImportICS(ctx context.Context, req *dto.ImportICSRequest, callerID string) (*dto.TimetableResponse, error) {
	if _, err := s.repo.Student.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	var entries model.TimetableEntryList
	var err error
	switch {
	case req.Content != "":
		entries, err = ParseICS(strings.NewReader(req.Content))
	case req.URL != "":
		var body io.ReadCloser
		body, err = FetchICSContent(req.URL)
		if err == nil {
			entries, err = ParseICS(body)
			body.Close()
		}
	default:
		return nil, ErrICSSourceMissing
	}
	if err != nil {
		s.logger.Warn("ICS 导入失败", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrICSEmpty
	}

	fileRef := req.URL
	if fileRef == "" {
		fileRef = "ics:inline"
	}
	timetable := &model.StudentTimetable{
		StudentID:        req.StudentID,
		FileRef:          fileRef,
		ProcessingStatus: model.TimetableStatusCompleted,
		ExtractedEntries: s.resolveEntrySubjects(ctx, entries),
	}
	timetable.CreatedBy = &callerID
	if err := s.repo.Timetable.Create(ctx, timetable); err != nil {
		s.logger.Error("创建 ICS 课表失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("ICS 课表导入完成",
		zap.String("timetable_id", timetable.TimetableID),
		zap.String("student_id", req.StudentID),
		zap.Int("entry_count", len(timetable.ExtractedEntries)),
	)
	return timetableToResponse(timetable), nil
}

// resolveSubjects 将回传课时的学科名映射到 subject_id；匹配不到的保留原名
func (s *timetableService) resolveSubjects(ctx context.Context, periods []dto.ExtractedPeriod) model.TimetableEntryList {
	entries := make(model.TimetableEntryList, 0, len(periods))
	for _, p := range periods {
		entries = append(entries, model.TimetableEntry{
			DayOfWeek:   p.DayOfWeek,
			StartTime:   p.StartTime,
			EndTime:     p.EndTime,
			SubjectName: p.SubjectName,
		})
	}
	return s.resolveEntrySubjects(ctx, entries)
}

func (s *timetableService) resolveEntrySubjects(ctx context.Context, entries model.TimetableEntryList) model.TimetableEntryList {
	cache := make(map[string]string)
	for i := range entries {
		name := entries[i].SubjectName
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if id, ok := cache[key]; ok {
			entries[i].SubjectID = id
			continue
		}
		subject, err := s.repo.Subject.GetByName(ctx, name)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("学科名映射查询失败", zap.String("subject_name", name), zap.Error(err))
			}
			cache[key] = ""
			continue
		}
		cache[key] = subject.SubjectID
		entries[i].SubjectID = subject.SubjectID
		entries[i].SubjectName = subject.Name
	}
	return entries
}

func timetableToResponse(t *model.StudentTimetable) *dto.TimetableResponse {
	periods := make([]dto.ExtractedPeriod, 0, len(t.ExtractedEntries))
	for _, e := range t.ExtractedEntries {
		periods = append(periods, dto.ExtractedPeriod{
			DayOfWeek:   e.DayOfWeek,
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
			SubjectName: e.SubjectName,
		})
	}
	return &dto.TimetableResponse{
		ID:               t.TimetableID,
		StudentID:        t.StudentID,
		ProcessingStatus: t.ProcessingStatus,
		ConfidenceScore:  t.ConfidenceScore,
		Entries:          periods,
		FailureReason:    t.FailureReason,
		UploadedAt:       t.UploadedAt.Format("2006-01-02 15:04:05"),
	}
}
