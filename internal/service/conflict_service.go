package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/dto"
	"github.com/forhay123/haybee-edu-sub009/internal/model"
	"github.com/forhay123/haybee-edu-sub009/internal/repository"
)

// ── 冲突检测与修复模块业务错误 ──

var (
	ErrTimetableNotProcessed   = errors.New("课表尚未解析完成")
	ErrUnknownResolutionAction = errors.New("未知的冲突修复动作")
	ErrEntryIndexOutOfRange    = errors.New("课时下标超出范围")
	ErrInvalidTimeValue        = errors.New("无效的时间值")
	ErrMergeNotAdjacent        = errors.New("合并的两个课时必须同科且相邻")
)

// 冲突类型
const (
	ConflictTimeOverlap      = "TIME_OVERLAP"
	ConflictDuplicateSubject = "DUPLICATE_SUBJECT"
	ConflictInvalidTime      = "INVALID_TIME"
	ConflictMissingSubject   = "MISSING_SUBJECT"
	ConflictScheduleGap      = "SCHEDULE_GAP"
)

// 修复动作
const (
	ActionDeleteEntry  = "DELETE_ENTRY"
	ActionEditTime     = "EDIT_TIME"
	ActionMergePeriods = "MERGE_PERIODS"
	ActionSplitPeriod  = "SPLIT_PERIOD"
	ActionKeepFirst    = "KEEP_FIRST"
)

// ConflictService 课表冲突检测与修复业务接口
//
// 解析结果来自外部服务，视为不可信输入：低置信度与结构问题
// 在这里标记而不是在接收时拒绝。修复动作作用于 extracted_entries，
// 可选地触发受影响周次的重生成
type ConflictService interface {
	DetectConflicts(ctx context.Context, timetableID string) ([]dto.ConflictResponse, error)
	Resolve(ctx context.Context, timetableID string, req *dto.ResolveConflictRequest, callerID string) (*dto.ResolveConflictResponse, error)
}

type conflictService struct {
	repo      *repository.Repository
	generator GeneratorService
	now       func() time.Time
	logger    *zap.Logger
}

// NewConflictService 创建 ConflictService 实例
func NewConflictService(repo *repository.Repository, generator GeneratorService, logger *zap.Logger) ConflictService {
	return &conflictService{repo: repo, generator: generator, now: time.Now, logger: logger}
}

func (s *conflictService) DetectConflicts(ctx context.Context, timetableID string) ([]dto.ConflictResponse, error) {
	timetable, err := s.getProcessedTimetable(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	return s.detect(timetable.ExtractedEntries), nil
}

func (s *conflictService) detect(entries model.TimetableEntryList) []dto.ConflictResponse {
	conflicts := []dto.ConflictResponse{}

	byDay := make(map[int][]int) // day → entries 下标（按开始时间排序）
	for i := range entries {
		byDay[entries[i].DayOfWeek] = append(byDay[entries[i].DayOfWeek], i)
	}

	for day := DayMonday; day <= DaySunday; day++ {
		idxs := byDay[day]
		sort.Slice(idxs, func(a, b int) bool {
			return entries[idxs[a]].StartTime < entries[idxs[b]].StartTime
		})

		subjectSeen := make(map[string]int)
		for pos, i := range idxs {
			e := entries[i]

			startMin, errStart := parseClock(e.StartTime)
			endMin, errEnd := parseClock(e.EndTime)
			if errStart != nil || errEnd != nil || endMin <= startMin {
				conflicts = append(conflicts, dto.ConflictResponse{
					ConflictType: ConflictInvalidTime,
					DayOfWeek:    day,
					Description:  fmt.Sprintf("课时时间无效: %s-%s", e.StartTime, e.EndTime),
					EntryIndexes: []int{pos},
				})
				continue
			}

			if e.SubjectName == "" && e.SubjectID == "" {
				conflicts = append(conflicts, dto.ConflictResponse{
					ConflictType: ConflictMissingSubject,
					DayOfWeek:    day,
					Description:  fmt.Sprintf("课时 %s-%s 缺少学科", e.StartTime, e.EndTime),
					EntryIndexes: []int{pos},
				})
			}

			key := e.SubjectID
			if key == "" {
				key = e.SubjectName
			}
			if key != "" {
				if firstPos, dup := subjectSeen[key]; dup {
					conflicts = append(conflicts, dto.ConflictResponse{
						ConflictType: ConflictDuplicateSubject,
						DayOfWeek:    day,
						Description:  fmt.Sprintf("学科 %q 当日重复出现", e.SubjectName),
						EntryIndexes: []int{firstPos, pos},
					})
				} else {
					subjectSeen[key] = pos
				}
			}

			if pos > 0 {
				prev := entries[idxs[pos-1]]
				prevEnd, err := parseClock(prev.EndTime)
				if err != nil {
					continue
				}
				switch {
				case startMin < prevEnd:
					conflicts = append(conflicts, dto.ConflictResponse{
						ConflictType: ConflictTimeOverlap,
						DayOfWeek:    day,
						Description:  fmt.Sprintf("课时 %s-%s 与 %s-%s 时间重叠", prev.StartTime, prev.EndTime, e.StartTime, e.EndTime),
						EntryIndexes: []int{pos - 1, pos},
					})
				case startMin > prevEnd:
					conflicts = append(conflicts, dto.ConflictResponse{
						ConflictType: ConflictScheduleGap,
						DayOfWeek:    day,
						Description:  fmt.Sprintf("课时 %s 与 %s 之间存在空档", prev.EndTime, e.StartTime),
						EntryIndexes: []int{pos - 1, pos},
					})
				}
			}
		}
	}
	return conflicts
}

func (s *conflictService) Resolve(ctx context.Context, timetableID string, req *dto.ResolveConflictRequest, callerID string) (*dto.ResolveConflictResponse, error) {
	timetable, err := s.getProcessedTimetable(ctx, timetableID)
	if err != nil {
		return nil, err
	}

	// 按天取出课时（保持与 DetectConflicts 相同的下标语义）
	dayIdxs := make([]int, 0)
	for i := range timetable.ExtractedEntries {
		if timetable.ExtractedEntries[i].DayOfWeek == req.DayOfWeek {
			dayIdxs = append(dayIdxs, i)
		}
	}
	entries := timetable.ExtractedEntries
	sort.Slice(dayIdxs, func(a, b int) bool {
		return entries[dayIdxs[a]].StartTime < entries[dayIdxs[b]].StartTime
	})

	if req.EntryIndex >= len(dayIdxs) {
		return nil, ErrEntryIndexOutOfRange
	}

	updated, err := s.applyAction(entries, dayIdxs, req)
	if err != nil {
		return nil, err
	}

	timetable.ExtractedEntries = updated
	timetable.UpdatedBy = &callerID
	if err := s.repo.Timetable.Update(ctx, timetable); err != nil {
		s.logger.Error("保存课表修复结果失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.ResolveConflictResponse{
		RemainingConflictsCount: len(s.detect(updated)),
	}

	if req.RegenerateSchedules {
		if err := s.regenerate(ctx, timetable, resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (s *conflictService) applyAction(entries model.TimetableEntryList, dayIdxs []int, req *dto.ResolveConflictRequest) (model.TimetableEntryList, error) {
	target := dayIdxs[req.EntryIndex]

	switch req.Action {
	case ActionDeleteEntry:
		return removeEntries(entries, target), nil

	case ActionEditTime:
		if _, err := parseClock(req.NewStartTime); err != nil {
			return nil, ErrInvalidTimeValue
		}
		if _, err := parseClock(req.NewEndTime); err != nil {
			return nil, ErrInvalidTimeValue
		}
		entries[target].StartTime = req.NewStartTime
		entries[target].EndTime = req.NewEndTime
		return entries, nil

	case ActionMergePeriods:
		if req.SecondEntryIndex == nil || *req.SecondEntryIndex >= len(dayIdxs) {
			return nil, ErrEntryIndexOutOfRange
		}
		second := dayIdxs[*req.SecondEntryIndex]
		a, b := entries[target], entries[second]
		if a.SubjectName != b.SubjectName || a.EndTime != b.StartTime {
			return nil, ErrMergeNotAdjacent
		}
		entries[target].EndTime = b.EndTime
		return removeEntries(entries, second), nil

	case ActionSplitPeriod:
		splitMin, err := parseClock(req.SplitTime)
		if err != nil {
			return nil, ErrInvalidTimeValue
		}
		startMin, _ := parseClock(entries[target].StartTime)
		endMin, _ := parseClock(entries[target].EndTime)
		if splitMin <= startMin || splitMin >= endMin {
			return nil, ErrInvalidTimeValue
		}
		tail := entries[target]
		tail.StartTime = req.SplitTime
		entries[target].EndTime = req.SplitTime
		return append(entries, tail), nil

	case ActionKeepFirst:
		// 同科重复时保留最早的，删除当日其余同科课时
		key := entries[target].SubjectName
		toRemove := []int{}
		kept := false
		for _, i := range dayIdxs {
			if entries[i].SubjectName != key {
				continue
			}
			if !kept {
				kept = true
				continue
			}
			toRemove = append(toRemove, i)
		}
		return removeEntries(entries, toRemove...), nil

	default:
		return nil, ErrUnknownResolutionAction
	}
}

// regenerate 删除受影响周次的活动课表行并重新生成（只动当前及未来周次）
func (s *conflictService) regenerate(ctx context.Context, timetable *model.StudentTimetable, resp *dto.ResolveConflictResponse) error {
	term, err := s.repo.Term.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveTerm
		}
		return err
	}

	currentWeek := weekNumberOf(term, s.now())
	for week := currentWeek; week <= term.WeekCount; week++ {
		existing, err := s.repo.DailySchedule.ListByStudentWeek(ctx, timetable.StudentID, week)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			continue
		}

		deleted, err := s.repo.DailySchedule.DeleteByStudentWeek(ctx, timetable.StudentID, week)
		if err != nil {
			return err
		}
		resp.SchedulesDeleted += int(deleted)

		result, err := s.generator.GenerateForStudent(ctx, timetable.StudentID, week)
		if err != nil {
			s.logger.Warn("冲突修复后重生成失败",
				zap.String("student_id", timetable.StudentID),
				zap.Int("week_number", week),
				zap.Error(err),
			)
			continue
		}
		resp.SchedulesRegenerated += result.SchedulesCreated
		resp.AffectedWeekNumbers = append(resp.AffectedWeekNumbers, week)
	}
	return nil
}

func (s *conflictService) getProcessedTimetable(ctx context.Context, timetableID string) (*model.StudentTimetable, error) {
	timetable, err := s.repo.Timetable.GetByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimetableNotFound
		}
		s.logger.Error("查询课表失败", zap.Error(err))
		return nil, err
	}
	if timetable.ProcessingStatus != model.TimetableStatusCompleted {
		return nil, ErrTimetableNotProcessed
	}
	return timetable, nil
}

func removeEntries(entries model.TimetableEntryList, idxs ...int) model.TimetableEntryList {
	drop := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		drop[i] = true
	}
	out := make(model.TimetableEntryList, 0, len(entries))
	for i := range entries {
		if !drop[i] {
			out = append(out, entries[i])
		}
	}
	return out
}

// weekNumberOf 某时刻落在学期的第几周（学期开始前按第 1 周计）
func weekNumberOf(term *model.Term, t time.Time) int {
	termMonday := WeekStartDate(term, 1)
	days := int(t.Sub(termMonday).Hours() / 24)
	if days < 0 {
		return 1
	}
	return days/7 + 1
}
