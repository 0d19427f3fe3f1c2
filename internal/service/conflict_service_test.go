package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/forhay123/haybee-edu-sub009/internal/dto"
	"github.com/forhay123/haybee-edu-sub009/internal/model"
)

// ── 测试辅助 ──

func setupTestConflictService(now time.Time) (ConflictService, *mockRepoSet) {
	repo, set := newMockRepoSet()
	logger := zap.NewNop()
	cal, _ := NewCalendar(testScheduleConfig())
	holiday := NewHolidayService(repo, nil, 4, logger)
	topic := NewTopicService(repo, logger)
	shuffle := NewShuffleService(repo, logger)
	generator := NewGeneratorService(repo, cal, holiday, topic, shuffle, 1, logger)
	svc := NewConflictService(repo, generator, logger).(*conflictService)
	svc.now = func() time.Time { return now }
	return svc, set
}

func seedCompletedTimetable(set *mockRepoSet, timetableID string, entries model.TimetableEntryList) {
	set.timetable.timetables[timetableID] = &model.StudentTimetable{
		TimetableID:      timetableID,
		StudentID:        "stu-001",
		ProcessingStatus: model.TimetableStatusCompleted,
		ExtractedEntries: entries,
		UploadedAt:       time.Now(),
	}
}

func conflictTypes(conflicts []dto.ConflictResponse) map[string]int {
	types := make(map[string]int)
	for _, c := range conflicts {
		types[c.ConflictType]++
	}
	return types
}

// ── DetectConflicts 测试 ──

func TestConflictService_Detect_Clean(t *testing.T) {
	svc, set := setupTestConflictService(time.Now())
	seedCompletedTimetable(set, "tt-001", model.TimetableEntryList{
		{DayOfWeek: DayMonday, StartTime: "09:00", EndTime: "10:00", SubjectName: "数学"},
		{DayOfWeek: DayMonday, StartTime: "10:00", EndTime: "11:00", SubjectName: "英语"},
	})

	conflicts, err := svc.DetectConflicts(context.Background(), "tt-001")
	if err != nil {
		t.Fatalf("DetectConflicts 应成功: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("规整课表不应有冲突，实际 %d 条: %+v", len(conflicts), conflicts)
	}
}

func TestConflictService_Detect_AllTypes(t *testing.T) {
	svc, set := setupTestConflictService(time.Now())
	seedCompletedTimetable(set, "tt-001", model.TimetableEntryList{
		// 周一：时间重叠
		{DayOfWeek: DayMonday, StartTime: "09:00", EndTime: "10:30", SubjectName: "数学"},
		{DayOfWeek: DayMonday, StartTime: "10:00", EndTime: "11:00", SubjectName: "英语"},
		// 周二：同科重复 + 空档
		{DayOfWeek: 2, StartTime: "09:00", EndTime: "10:00", SubjectName: "物理"},
		{DayOfWeek: 2, StartTime: "11:00", EndTime: "12:00", SubjectName: "物理"},
		// 周三：无效时间（结束早于开始）
		{DayOfWeek: 3, StartTime: "10:00", EndTime: "09:00", SubjectName: "化学"},
		// 周四：缺少学科
		{DayOfWeek: 4, StartTime: "09:00", EndTime: "10:00", SubjectName: ""},
	})

	conflicts, err := svc.DetectConflicts(context.Background(), "tt-001")
	if err != nil {
		t.Fatalf("DetectConflicts 应成功: %v", err)
	}

	types := conflictTypes(conflicts)
	for _, want := range []string{
		ConflictTimeOverlap,
		ConflictDuplicateSubject,
		ConflictScheduleGap,
		ConflictInvalidTime,
		ConflictMissingSubject,
	} {
		if types[want] == 0 {
			t.Errorf("期望检出 %s，实际检出: %v", want, types)
		}
	}
}

func TestConflictService_Detect_NotProcessed(t *testing.T) {
	svc, set := setupTestConflictService(time.Now())
	set.timetable.timetables["tt-001"] = &model.StudentTimetable{
		TimetableID:      "tt-001",
		StudentID:        "stu-001",
		ProcessingStatus: model.TimetableStatusPending,
	}

	if _, err := svc.DetectConflicts(context.Background(), "tt-001"); !errors.Is(err, ErrTimetableNotProcessed) {
		t.Errorf("未解析课表期望 ErrTimetableNotProcessed，实际: %v", err)
	}
	if _, err := svc.DetectConflicts(context.Background(), "no-such"); !errors.Is(err, ErrTimetableNotFound) {
		t.Errorf("课表不存在期望 ErrTimetableNotFound，实际: %v", err)
	}
}

// ── Resolve 测试 ──

func TestConflictService_Resolve_DeleteEntry(t *testing.T) {
	svc, set := setupTestConflictService(time.Now())
	seedCompletedTimetable(set, "tt-001", model.TimetableEntryList{
		{DayOfWeek: DayMonday, StartTime: "09:00", EndTime: "10:30", SubjectName: "数学"},
		{DayOfWeek: DayMonday, StartTime: "10:00", EndTime: "10:30", SubjectName: "英语"},
	})

	resp, err := svc.Resolve(context.Background(), "tt-001", &dto.ResolveConflictRequest{
		DayOfWeek:  DayMonday,
		Action:     ActionDeleteEntry,
		EntryIndex: 1, // 按开始时间排序后的第二条（英语）
	}, "admin-001")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if resp.RemainingConflictsCount != 0 {
		t.Errorf("删除重叠课时后不应残留冲突，实际 %d 条", resp.RemainingConflictsCount)
	}

	entries := set.timetable.timetables["tt-001"].ExtractedEntries
	if len(entries) != 1 || entries[0].SubjectName != "数学" {
		t.Errorf("应只剩数学课时，实际: %+v", entries)
	}
}

func TestConflictService_Resolve_EditTime(t *testing.T) {
	svc, set := setupTestConflictService(time.Now())
	seedCompletedTimetable(set, "tt-001", model.TimetableEntryList{
		{DayOfWeek: DayMonday, StartTime: "09:00", EndTime: "10:30", SubjectName: "数学"},
		{DayOfWeek: DayMonday, StartTime: "10:00", EndTime: "11:00", SubjectName: "英语"},
	})

	resp, err := svc.Resolve(context.Background(), "tt-001", &dto.ResolveConflictRequest{
		DayOfWeek:    DayMonday,
		Action:       ActionEditTime,
		EntryIndex:   0,
		NewStartTime: "09:00",
		NewEndTime:   "10:00",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if resp.RemainingConflictsCount != 0 {
		t.Errorf("改时后不应残留冲突，实际 %d 条", resp.RemainingConflictsCount)
	}

	entries := set.timetable.timetables["tt-001"].ExtractedEntries
	if entries[0].EndTime != "10:00" {
		t.Errorf("第一条结束时间期望 10:00，实际 %s", entries[0].EndTime)
	}
}

func TestConflictService_Resolve_MergePeriods(t *testing.T) {
	svc, set := setupTestConflictService(time.Now())
	seedCompletedTimetable(set, "tt-001", model.TimetableEntryList{
		{DayOfWeek: DayMonday, StartTime: "09:00", EndTime: "10:00", SubjectName: "数学"},
		{DayOfWeek: DayMonday, StartTime: "10:00", EndTime: "11:00", SubjectName: "数学"},
	})

	second := 1
	_, err := svc.Resolve(context.Background(), "tt-001", &dto.ResolveConflictRequest{
		DayOfWeek:        DayMonday,
		Action:           ActionMergePeriods,
		EntryIndex:       0,
		SecondEntryIndex: &second,
	}, "admin-001")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}

	entries := set.timetable.timetables["tt-001"].ExtractedEntries
	if len(entries) != 1 {
		t.Fatalf("合并后期望 1 条课时，实际 %d 条", len(entries))
	}
	if entries[0].StartTime != "09:00" || entries[0].EndTime != "11:00" {
		t.Errorf("合并课时期望 09:00-11:00，实际 %s-%s", entries[0].StartTime, entries[0].EndTime)
	}
}

func TestConflictService_Resolve_MergeNotAdjacent(t *testing.T) {
	svc, set := setupTestConflictService(time.Now())
	seedCompletedTimetable(set, "tt-001", model.TimetableEntryList{
		{DayOfWeek: DayMonday, StartTime: "09:00", EndTime: "10:00", SubjectName: "数学"},
		{DayOfWeek: DayMonday, StartTime: "11:00", EndTime: "12:00", SubjectName: "数学"},
	})

	second := 1
	_, err := svc.Resolve(context.Background(), "tt-001", &dto.ResolveConflictRequest{
		DayOfWeek:        DayMonday,
		Action:           ActionMergePeriods,
		EntryIndex:       0,
		SecondEntryIndex: &second,
	}, "admin-001")
	if !errors.Is(err, ErrMergeNotAdjacent) {
		t.Errorf("不相邻课时合并期望 ErrMergeNotAdjacent，实际: %v", err)
	}
}

func TestConflictService_Resolve_SplitPeriod(t *testing.T) {
	svc, set := setupTestConflictService(time.Now())
	seedCompletedTimetable(set, "tt-001", model.TimetableEntryList{
		{DayOfWeek: DayMonday, StartTime: "09:00", EndTime: "11:00", SubjectName: "数学"},
	})

	_, err := svc.Resolve(context.Background(), "tt-001", &dto.ResolveConflictRequest{
		DayOfWeek:  DayMonday,
		Action:     ActionSplitPeriod,
		EntryIndex: 0,
		SplitTime:  "10:00",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}

	entries := set.timetable.timetables["tt-001"].ExtractedEntries
	if len(entries) != 2 {
		t.Fatalf("拆分后期望 2 条课时，实际 %d 条", len(entries))
	}
	if entries[0].EndTime != "10:00" || entries[1].StartTime != "10:00" {
		t.Errorf("拆分点期望 10:00，实际 %s / %s", entries[0].EndTime, entries[1].StartTime)
	}

	// 拆分点必须严格落在课时内部
	_, err = svc.Resolve(context.Background(), "tt-001", &dto.ResolveConflictRequest{
		DayOfWeek:  DayMonday,
		Action:     ActionSplitPeriod,
		EntryIndex: 0,
		SplitTime:  "09:00",
	}, "admin-001")
	if !errors.Is(err, ErrInvalidTimeValue) {
		t.Errorf("拆分点落在边界期望 ErrInvalidTimeValue，实际: %v", err)
	}
}

func TestConflictService_Resolve_KeepFirst(t *testing.T) {
	svc, set := setupTestConflictService(time.Now())
	seedCompletedTimetable(set, "tt-001", model.TimetableEntryList{
		{DayOfWeek: DayMonday, StartTime: "09:00", EndTime: "10:00", SubjectName: "数学"},
		{DayOfWeek: DayMonday, StartTime: "10:00", EndTime: "11:00", SubjectName: "英语"},
		{DayOfWeek: DayMonday, StartTime: "11:00", EndTime: "12:00", SubjectName: "数学"},
		{DayOfWeek: DayMonday, StartTime: "12:00", EndTime: "13:00", SubjectName: "数学"},
	})

	_, err := svc.Resolve(context.Background(), "tt-001", &dto.ResolveConflictRequest{
		DayOfWeek:  DayMonday,
		Action:     ActionKeepFirst,
		EntryIndex: 0,
	}, "admin-001")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}

	entries := set.timetable.timetables["tt-001"].ExtractedEntries
	if len(entries) != 2 {
		t.Fatalf("保留最早数学后期望 2 条课时，实际 %d 条", len(entries))
	}
	mathCount := 0
	for _, e := range entries {
		if e.SubjectName == "数学" {
			mathCount++
			if e.StartTime != "09:00" {
				t.Errorf("保留的数学课时期望 09:00 开始，实际 %s", e.StartTime)
			}
		}
	}
	if mathCount != 1 {
		t.Errorf("数学应只剩 1 条，实际 %d 条", mathCount)
	}
}

func TestConflictService_Resolve_Guards(t *testing.T) {
	svc, set := setupTestConflictService(time.Now())
	seedCompletedTimetable(set, "tt-001", model.TimetableEntryList{
		{DayOfWeek: DayMonday, StartTime: "09:00", EndTime: "10:00", SubjectName: "数学"},
	})

	if _, err := svc.Resolve(context.Background(), "tt-001", &dto.ResolveConflictRequest{
		DayOfWeek: DayMonday, Action: ActionDeleteEntry, EntryIndex: 5,
	}, "admin-001"); !errors.Is(err, ErrEntryIndexOutOfRange) {
		t.Errorf("下标越界期望 ErrEntryIndexOutOfRange，实际: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), "tt-001", &dto.ResolveConflictRequest{
		DayOfWeek: DayMonday, Action: "NO_SUCH_ACTION", EntryIndex: 0,
	}, "admin-001"); !errors.Is(err, ErrUnknownResolutionAction) {
		t.Errorf("未知动作期望 ErrUnknownResolutionAction，实际: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), "tt-001", &dto.ResolveConflictRequest{
		DayOfWeek: DayMonday, Action: ActionEditTime, EntryIndex: 0, NewStartTime: "bad", NewEndTime: "10:00",
	}, "admin-001"); !errors.Is(err, ErrInvalidTimeValue) {
		t.Errorf("非法时间期望 ErrInvalidTimeValue，实际: %v", err)
	}
}

// ── Resolve + 重生成测试 ──

func TestConflictService_Resolve_RegenerateCurrentAndFutureWeeks(t *testing.T) {
	// 当前时间落在第 2 周
	now := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	svc, set := setupTestConflictService(now)

	seedGeneratorData(set, "stu-001")
	seedTopics(set, 1)
	seedTopics2 := func(week int) {
		set.lessonTopic.topics["topic-math-2"] = &model.LessonTopic{
			LessonTopicID: "topic-math-2", SubjectID: "subj-math", TermID: "term-001", WeekNumber: week, TopicTitle: "一元二次方程",
		}
	}
	seedTopics2(2)

	timetableID := ""
	for id := range set.timetable.timetables {
		timetableID = id
	}
	tt := set.timetable.timetables[timetableID]
	// 注入一条重叠课时制造冲突
	tt.ExtractedEntries = append(tt.ExtractedEntries, model.TimetableEntry{
		DayOfWeek: DayMonday, StartTime: "09:30", EndTime: "10:30", SubjectID: "subj-math", SubjectName: "数学",
	})

	// 第 1、2 周已有课表行（第 1 周为过去周次，不应被重生成动到）
	week1 := &model.DailySchedule{StudentID: "stu-001", ScheduledDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), PeriodNumber: 1, SubjectID: "subj-math", WeekNumber: 1}
	week2 := &model.DailySchedule{StudentID: "stu-001", ScheduledDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), PeriodNumber: 1, SubjectID: "subj-math", WeekNumber: 2}
	set.dailySchedule.Upsert(context.Background(), week1)
	set.dailySchedule.Upsert(context.Background(), week2)
	week1ID := week1.ScheduleID

	resp, err := svc.Resolve(context.Background(), timetableID, &dto.ResolveConflictRequest{
		DayOfWeek:           DayMonday,
		Action:              ActionDeleteEntry,
		EntryIndex:          1, // 排序后 09:30 的注入条目
		RegenerateSchedules: true,
	}, "admin-001")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}

	if resp.SchedulesDeleted == 0 {
		t.Error("重生成应先删除受影响周次的旧行")
	}
	if resp.SchedulesRegenerated == 0 {
		t.Error("重生成应产出新课表行")
	}
	for _, week := range resp.AffectedWeekNumbers {
		if week < 2 {
			t.Errorf("只应重生成当前及未来周次，实际动到第 %d 周", week)
		}
	}
	if _, err := set.dailySchedule.GetByID(context.Background(), week1ID); err != nil {
		t.Error("过去周次的课表行不应被删除")
	}
}
