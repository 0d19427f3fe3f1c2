package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/dto"
	"github.com/forhay123/haybee-edu-sub009/internal/model"
	"github.com/forhay123/haybee-edu-sub009/internal/repository"
)

// ── 排课生成模块业务错误 ──

var (
	ErrNoActiveTerm         = errors.New("无活跃学期")
	ErrInvalidWeekNumber    = errors.New("周次超出学期范围")
	ErrStudentNotFound      = errors.New("学生档案不存在")
	ErrNoProcessedTimetable = errors.New("学生无已解析完成的课表")
)

// GeneratorService 个性化排课生成业务接口
//
// 生成是幂等的：全部写入走 (student, date, period) 唯一约束上的 upsert，
// 同一周重复生成只更新字段，从不产生重复行；单个学生的失败只记录
// 不中断批量
type GeneratorService interface {
	// Generate 入口：req.student_id 为空时批量生成
	Generate(ctx context.Context, req *dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
	// GenerateForStudent 为单个学生生成某周课表（冲突修复后的重生成也走这里）
	GenerateForStudent(ctx context.Context, studentID string, weekNumber int) (*StudentGenerationResult, error)
}

// StudentGenerationResult 单学生生成结果
type StudentGenerationResult struct {
	SchedulesCreated int
	SchedulesUpdated int
	MissingTopics    int
	SaturdayShifted  bool
	SaturdayDate     time.Time
}

type generatorService struct {
	repo     *repository.Repository
	calendar *Calendar
	holiday  HolidayService
	topic    TopicService
	shuffle  ShuffleService
	workers  int
	logger   *zap.Logger
}

// NewGeneratorService 创建 GeneratorService 实例
func NewGeneratorService(
	repo *repository.Repository,
	calendar *Calendar,
	holiday HolidayService,
	topic TopicService,
	shuffle ShuffleService,
	workers int,
	logger *zap.Logger,
) GeneratorService {
	if workers <= 0 {
		workers = 4
	}
	return &generatorService{
		repo:     repo,
		calendar: calendar,
		holiday:  holiday,
		topic:    topic,
		shuffle:  shuffle,
		workers:  workers,
		logger:   logger,
	}
}

func (s *generatorService) Generate(ctx context.Context, req *dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if req.StudentID != nil && *req.StudentID != "" {
		result, err := s.GenerateForStudent(ctx, *req.StudentID, req.WeekNumber)
		if err != nil {
			return nil, err
		}
		resp := &dto.GenerateScheduleResponse{
			WeekNumber:        req.WeekNumber,
			StudentsProcessed: 1,
			SchedulesCreated:  result.SchedulesCreated,
			SchedulesUpdated:  result.SchedulesUpdated,
			MissingTopics:     result.MissingTopics,
			SaturdayShifted:   result.SaturdayShifted,
		}
		if !result.SaturdayDate.IsZero() {
			resp.SaturdayDate = result.SaturdayDate.Format(dateLayout)
		}
		return resp, nil
	}
	return s.generateBatch(ctx, req.WeekNumber)
}

// ════════════════════════════════════════════════════════════
// 批量生成 — 有界并发 worker 池，逐学生隔离失败
// ════════════════════════════════════════════════════════════

func (s *generatorService) generateBatch(ctx context.Context, weekNumber int) (*dto.GenerateScheduleResponse, error) {
	students, err := s.repo.Student.ListActiveIndividual(ctx)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.GenerateScheduleResponse{WeekNumber: weekNumber}
	if len(students) == 0 {
		return resp, nil
	}

	type outcome struct {
		studentID string
		result    *StudentGenerationResult
		err       error
	}

	jobs := make(chan model.StudentProfile)
	results := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for student := range jobs {
				result, err := s.GenerateForStudent(ctx, student.StudentID, weekNumber)
				results <- outcome{studentID: student.StudentID, result: result, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, student := range students {
			select {
			case jobs <- student:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for out := range results {
		resp.StudentsProcessed++
		if out.err != nil {
			// 单学生失败不中断批量：记录并继续
			s.logger.Warn("学生排课生成失败，已跳过",
				zap.String("student_id", out.studentID),
				zap.Error(out.err),
			)
			resp.FailedStudents = append(resp.FailedStudents, dto.FailedStudent{
				StudentID: out.studentID,
				Reason:    out.err.Error(),
			})
			continue
		}
		resp.SchedulesCreated += out.result.SchedulesCreated
		resp.SchedulesUpdated += out.result.SchedulesUpdated
		resp.MissingTopics += out.result.MissingTopics
		if out.result.SaturdayShifted {
			resp.SaturdayShifted = true
			resp.SaturdayDate = out.result.SaturdayDate.Format(dateLayout)
		}
	}

	s.logger.Info("批量排课生成完成",
		zap.Int("week_number", weekNumber),
		zap.Int("students_processed", resp.StudentsProcessed),
		zap.Int("schedules_created", resp.SchedulesCreated),
		zap.Int("failed_students", len(resp.FailedStudents)),
	)
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// 单学生生成
// ════════════════════════════════════════════════════════════

// slotAssignment 周内一个节次的学科分配（生成的中间结构）
type slotAssignment struct {
	date       time.Time
	dayOfWeek  int
	slot       PeriodSlot
	subjectID  string
	conflict   map[string]interface{}
}

func (s *generatorService) GenerateForStudent(ctx context.Context, studentID string, weekNumber int) (*StudentGenerationResult, error) {
	term, err := s.repo.Term.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveTerm
		}
		s.logger.Error("查询活跃学期失败", zap.Error(err))
		return nil, err
	}
	if weekNumber < 1 || weekNumber > term.WeekCount {
		return nil, ErrInvalidWeekNumber
	}

	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	timetable, err := s.repo.Timetable.GetLatestCompletedByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoProcessedTimetable
		}
		s.logger.Error("查询学生课表失败", zap.Error(err))
		return nil, err
	}

	weekStart := WeekStartDate(term, weekNumber)
	result := &StudentGenerationResult{}

	// 周六假期顺延：停课或该日已被其他周的顺延补课占用时，
	// 逐周向后找最近可用的周六
	saturdayDate, saturdayShifted, err := s.resolveSaturday(ctx, studentID, weekNumber,
		weekStart.AddDate(0, 0, DaySaturday-DayMonday))
	if err != nil {
		return nil, err
	}
	if saturdayShifted {
		result.SaturdayShifted = true
		result.SaturdayDate = saturdayDate
	}

	assignments, err := s.buildWeekAssignments(ctx, timetable, weekStart, saturdayDate)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return result, nil
	}

	// 多课时检测：同一学科一周内的出现次序（按日期+开始时间）决定课时序号
	occurrenceIndex, occurrenceTotal := countOccurrences(assignments)

	for i := range assignments {
		a := &assignments[i]
		created, missing, err := s.upsertScheduleRow(ctx, studentID, term, timetable.TimetableID, weekNumber, a,
			occurrenceIndex[i], occurrenceTotal[a.subjectID])
		if err != nil {
			return nil, err
		}
		if created {
			result.SchedulesCreated++
		} else {
			result.SchedulesUpdated++
		}
		if missing {
			result.MissingTopics++
		}
	}

	return result, nil
}

// 周六顺延候选日期的探查上限（含占用让位在内的总步数）
const maxSaturdayProbes = 52

// resolveSaturday 确定本周周六课程实际落在哪个周六。
//
// 两类不可用：学校停课（假期），以及该日期已存在同一学生其他周次的行——
// 前几周的假期顺延会把补课挤到后面周的周六，本周必须继续向后让位，
// 否则 (student, date, period) 上的 upsert 会覆盖掉已顺延的补课行
func (s *generatorService) resolveSaturday(ctx context.Context, studentID string, weekNumber int, saturday time.Time) (time.Time, bool, error) {
	candidate := saturday
	shifted := false
	for probe := 0; probe < maxSaturdayProbes; probe++ {
		closed, err := s.holiday.IsSchoolClosed(ctx, candidate)
		if err != nil {
			return time.Time{}, false, err
		}
		if closed {
			candidate, err = s.holiday.NextAvailableSaturday(ctx, candidate)
			if err != nil {
				return time.Time{}, false, err
			}
			shifted = true
		}

		occupied, err := s.saturdayOccupied(ctx, studentID, weekNumber, candidate)
		if err != nil {
			return time.Time{}, false, err
		}
		if !occupied {
			return candidate, shifted, nil
		}
		candidate = candidate.AddDate(0, 0, 7)
		shifted = true
	}
	s.logger.Warn("周六顺延让位查找超出上限",
		zap.String("student_id", studentID),
		zap.String("from", saturday.Format(dateLayout)),
	)
	return time.Time{}, false, ErrNoAvailableSlot
}

// saturdayOccupied 该日期是否已被同一学生其他周次的行占用
func (s *generatorService) saturdayOccupied(ctx context.Context, studentID string, weekNumber int, date time.Time) (bool, error) {
	rows, err := s.repo.DailySchedule.ListByStudentDateRange(ctx, studentID, date, date)
	if err != nil {
		return false, err
	}
	for i := range rows {
		if rows[i].WeekNumber != weekNumber {
			return true, nil
		}
	}
	return false, nil
}

// buildWeekAssignments 将课表课时映射到一周的学习窗口节次
func (s *generatorService) buildWeekAssignments(ctx context.Context, timetable *model.StudentTimetable, weekStart, saturdayDate time.Time) ([]slotAssignment, error) {
	byDay := make(map[int][]model.TimetableEntry)
	for _, entry := range timetable.ExtractedEntries {
		byDay[entry.DayOfWeek] = append(byDay[entry.DayOfWeek], entry)
	}
	for day := range byDay {
		entries := byDay[day]
		sort.Slice(entries, func(i, j int) bool { return entries[i].StartTime < entries[j].StartTime })
	}

	var assignments []slotAssignment
	for day := DayMonday; day <= DaySaturday; day++ {
		date := weekStart.AddDate(0, 0, day-DayMonday)
		if day == DaySaturday {
			date = saturdayDate
		} else {
			// 工作日假期直接跳过，不顺延
			closed, err := s.holiday.IsSchoolClosed(ctx, date)
			if err != nil {
				return nil, err
			}
			if closed {
				continue
			}
		}

		slots, err := s.calendar.SlotsFor(day)
		if err != nil {
			return nil, err
		}

		subjects, conflicts, err := s.subjectsForDay(ctx, byDay, day)
		if err != nil {
			return nil, err
		}
		if len(subjects) == 0 {
			continue
		}

		for slotIdx, slot := range slots {
			subjectID := subjects[slotIdx%len(subjects)]
			a := slotAssignment{
				date:      date,
				dayOfWeek: day,
				slot:      slot,
				subjectID: subjectID,
			}
			if len(conflicts) > 0 {
				a.conflict = map[string]interface{}{
					"type":    "DUPLICATE_SUBJECT",
					"details": conflicts,
				}
			}
			assignments = append(assignments, a)
		}
	}
	return assignments, nil
}

// subjectsForDay 某日按课表顺序去重后的学科 ID 列表。
// 周六无课表条目时回退到全部课表学科（原始轮换行为）；
// 同一学科当日重复出现记为冲突说明，不中断生成
func (s *generatorService) subjectsForDay(ctx context.Context, byDay map[int][]model.TimetableEntry, day int) ([]string, []string, error) {
	entries := byDay[day]
	if day == DaySaturday && len(entries) == 0 {
		for d := DayMonday; d < DaySaturday; d++ {
			entries = append(entries, byDay[d]...)
		}
	}

	var subjects []string
	var conflicts []string
	seen := make(map[string]bool)
	for _, entry := range entries {
		subjectID, err := s.resolveSubject(ctx, entry)
		if err != nil {
			return nil, nil, err
		}
		if subjectID == "" {
			conflicts = append(conflicts, fmt.Sprintf("学科 %q 无法匹配", entry.SubjectName))
			continue
		}
		if seen[subjectID] {
			if day != DaySaturday {
				conflicts = append(conflicts, fmt.Sprintf("学科 %q 当日重复出现", entry.SubjectName))
			}
			continue
		}
		seen[subjectID] = true
		subjects = append(subjects, subjectID)
	}
	return subjects, conflicts, nil
}

func (s *generatorService) resolveSubject(ctx context.Context, entry model.TimetableEntry) (string, error) {
	if entry.SubjectID != "" {
		return entry.SubjectID, nil
	}
	subject, err := s.repo.Subject.GetByName(ctx, entry.SubjectName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return subject.SubjectID, nil
}

// countOccurrences 统计每个分配在其学科的周内序号及学科总课时数
func countOccurrences(assignments []slotAssignment) (map[int]int, map[string]int) {
	// assignments 自然按日期+节次有序
	index := make(map[int]int, len(assignments))
	total := make(map[string]int)
	for i, a := range assignments {
		total[a.subjectID]++
		index[i] = total[a.subjectID]
	}
	return index, total
}

func (s *generatorService) upsertScheduleRow(
	ctx context.Context,
	studentID string,
	term *model.Term,
	timetableID string,
	weekNumber int,
	a *slotAssignment,
	periodSequence, totalPeriods int,
) (created bool, missingTopic bool, err error) {
	windowStart, windowEnd, graceEnd := s.calendar.WindowTimes(a.date, a.slot)

	row := &model.DailySchedule{
		StudentID:             studentID,
		ScheduledDate:         a.date,
		DayOfWeek:             a.dayOfWeek,
		PeriodNumber:          a.slot.PeriodNumber,
		StartTime:             a.slot.StartTime,
		EndTime:               a.slot.EndTime,
		SubjectID:             a.subjectID,
		PeriodSequence:        periodSequence,
		TotalPeriodsForTopic:  totalPeriods,
		ScheduleSource:        model.ScheduleSourceIndividual,
		AssessmentWindowStart: &windowStart,
		AssessmentWindowEnd:   &windowEnd,
		GraceEnd:              &graceEnd,
		IndividualTimetableID: &timetableID,
		WeekNumber:            weekNumber,
	}
	if a.conflict != nil {
		row.HasScheduleConflict = true
		row.ConflictDetails = model.JSONMap(a.conflict)
	}

	topic, err := s.topic.AssignTopic(ctx, a.subjectID, term.TermID, weekNumber)
	if err != nil {
		return false, false, err
	}

	if topic == nil {
		// 缺主题：标记等待人工指派，窗口照常落库
		row.MissingLessonTopic = true
		row.ScheduleStatus = model.ScheduleStatusInProgress
		row.LessonAssignmentMethod = model.AssignMethodPendingManual
		missingTopic = true
	} else {
		row.LessonTopicID = &topic.LessonTopicID
		row.ScheduleStatus = model.ScheduleStatusReady
		row.LessonAssignmentMethod = model.AssignMethodAutoWeeklyRotation

		instanceID, err := s.resolveInstance(ctx, topic, periodSequence, totalPeriods, weekNumber)
		if err != nil {
			return false, false, err
		}
		if instanceID != "" {
			row.AssessmentInstanceID = &instanceID
		}
	}

	created, err = s.repo.DailySchedule.Upsert(ctx, row)
	if err != nil {
		s.logger.Error("写入课表行失败",
			zap.String("student_id", studentID),
			zap.String("date", a.date.Format(dateLayout)),
			zap.Int("period", a.slot.PeriodNumber),
			zap.Error(err),
		)
		return false, false, err
	}

	if topic != nil {
		progress := &model.StudentLessonProgress{
			StudentID:              studentID,
			ScheduleID:             &row.ScheduleID,
			LessonTopicID:          topic.LessonTopicID,
			ScheduledDate:          a.date,
			PeriodNumber:           a.slot.PeriodNumber,
			PeriodSequence:         periodSequence,
			TotalPeriodsInSequence: totalPeriods,
			AssessmentAccessible:   periodSequence == 1,
		}
		if err := s.repo.Progress.Upsert(ctx, progress); err != nil {
			return false, false, err
		}
	}

	return created, missingTopic, nil
}

// resolveInstance 取主题测评在该课时序号上的实例；无测评或无题目时不阻断生成
func (s *generatorService) resolveInstance(ctx context.Context, topic *model.LessonTopic, periodSequence, totalPeriods, weekNumber int) (string, error) {
	assessment, err := s.repo.Assessment.GetActiveByLessonTopic(ctx, topic.LessonTopicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	instances, err := s.shuffle.CreateShuffledInstances(ctx, assessment.AssessmentID, topic.LessonTopicID, totalPeriods, weekNumber)
	if err != nil {
		if errors.Is(err, ErrAssessmentNoQuestions) {
			s.logger.Warn("基础测评无题目，课表行不挂实例",
				zap.String("assessment_id", assessment.AssessmentID),
			)
			return "", nil
		}
		return "", err
	}
	for i := range instances {
		if instances[i].PeriodSequence == periodSequence {
			return instances[i].InstanceID, nil
		}
	}
	return "", nil
}

// WeekStartDate 学期周次折算为起始日期：start + (week-1) 周，归一化到周一
func WeekStartDate(term *model.Term, weekNumber int) time.Time {
	d := term.StartDate.AddDate(0, 0, (weekNumber-1)*7)
	return d.AddDate(0, 0, -(ISOWeekday(d) - DayMonday))
}
