package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
	"github.com/forhay123/haybee-edu-sub009/internal/repository"
)

// mockRepoSet 聚合全部 mock，各 service 测试经由字段直接操纵底层数据
type mockRepoSet struct {
	term          *mockTermRepo
	subject       *mockSubjectRepo
	student       *mockStudentRepo
	timetable     *mockTimetableRepo
	lessonTopic   *mockLessonTopicRepo
	assessment    *mockAssessmentRepo
	dailySchedule *mockDailyScheduleRepo
	submission    *mockSubmissionRepo
	holiday       *mockHolidayRepo
	progress      *mockProgressRepo
	archive       *mockArchiveRepo
}

func newMockRepoSet() (*repository.Repository, *mockRepoSet) {
	set := &mockRepoSet{
		term:          newMockTermRepo(),
		subject:       newMockSubjectRepo(),
		student:       newMockStudentRepo(),
		timetable:     newMockTimetableRepo(),
		lessonTopic:   newMockLessonTopicRepo(),
		assessment:    newMockAssessmentRepo(),
		dailySchedule: newMockDailyScheduleRepo(),
		submission:    newMockSubmissionRepo(),
		holiday:       newMockHolidayRepo(),
		progress:      newMockProgressRepo(),
		archive:       newMockArchiveRepo(),
	}
	repo := &repository.Repository{
		Term:          set.term,
		Subject:       set.subject,
		Student:       set.student,
		Timetable:     set.timetable,
		LessonTopic:   set.lessonTopic,
		Assessment:    set.assessment,
		DailySchedule: set.dailySchedule,
		Submission:    set.submission,
		Holiday:       set.holiday,
		Progress:      set.progress,
		Archive:       set.archive,
	}
	return repo, set
}

// ── Mock TermRepository ──

type mockTermRepo struct {
	terms map[string]*model.Term
}

func newMockTermRepo() *mockTermRepo {
	return &mockTermRepo{terms: make(map[string]*model.Term)}
}

func (m *mockTermRepo) Create(_ context.Context, term *model.Term) error {
	if term.TermID == "" {
		term.TermID = fmt.Sprintf("term-%03d", len(m.terms)+1)
	}
	m.terms[term.TermID] = term
	return nil
}

func (m *mockTermRepo) GetByID(_ context.Context, id string) (*model.Term, error) {
	if t, ok := m.terms[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) GetActive(_ context.Context) (*model.Term, error) {
	for _, t := range m.terms {
		if t.IsActive {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) List(_ context.Context) ([]model.Term, error) {
	var result []model.Term
	for _, t := range m.terms {
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockTermRepo) Update(_ context.Context, term *model.Term) error {
	m.terms[term.TermID] = term
	return nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects map[string]*model.Subject
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	if subject.SubjectID == "" {
		subject.SubjectID = fmt.Sprintf("subj-%03d", len(m.subjects)+1)
	}
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) GetByName(_ context.Context, name string) (*model.Subject, error) {
	for _, s := range m.subjects {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) ListActive(_ context.Context) ([]model.Subject, error) {
	var result []model.Subject
	for _, s := range m.subjects {
		if s.IsActive {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSubjectRepo) ListByIDs(_ context.Context, ids []string) ([]model.Subject, error) {
	var result []model.Subject
	for _, id := range ids {
		if s, ok := m.subjects[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.StudentProfile
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.StudentProfile)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.StudentProfile) error {
	if student.StudentID == "" {
		student.StudentID = fmt.Sprintf("stu-%03d", len(m.students)+1)
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.StudentProfile, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.StudentProfile, error) {
	for _, s := range m.students {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) ListActiveIndividual(_ context.Context) ([]model.StudentProfile, error) {
	var result []model.StudentProfile
	for _, s := range m.students {
		if s.IsActive && s.StudentType == model.StudentTypeIndividual {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	return result, nil
}

// ── Mock TimetableRepository ──

type mockTimetableRepo struct {
	timetables map[string]*model.StudentTimetable
	seq        int
}

func newMockTimetableRepo() *mockTimetableRepo {
	return &mockTimetableRepo{timetables: make(map[string]*model.StudentTimetable)}
}

func (m *mockTimetableRepo) Create(_ context.Context, timetable *model.StudentTimetable) error {
	if timetable.TimetableID == "" {
		m.seq++
		timetable.TimetableID = fmt.Sprintf("tt-%03d", m.seq)
	}
	if timetable.UploadedAt.IsZero() {
		timetable.UploadedAt = time.Now()
	}
	m.timetables[timetable.TimetableID] = timetable
	return nil
}

func (m *mockTimetableRepo) GetByID(_ context.Context, id string) (*model.StudentTimetable, error) {
	if t, ok := m.timetables[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimetableRepo) GetLatestCompletedByStudent(_ context.Context, studentID string) (*model.StudentTimetable, error) {
	var latest *model.StudentTimetable
	for _, t := range m.timetables {
		if t.StudentID != studentID || t.ProcessingStatus != model.TimetableStatusCompleted {
			continue
		}
		if latest == nil || t.UploadedAt.After(latest.UploadedAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockTimetableRepo) Update(_ context.Context, timetable *model.StudentTimetable) error {
	if _, ok := m.timetables[timetable.TimetableID]; !ok {
		return gorm.ErrRecordNotFound
	}
	timetable.Version++
	m.timetables[timetable.TimetableID] = timetable
	return nil
}

// ── Mock LessonTopicRepository ──

type mockLessonTopicRepo struct {
	topics map[string]*model.LessonTopic
}

func newMockLessonTopicRepo() *mockLessonTopicRepo {
	return &mockLessonTopicRepo{topics: make(map[string]*model.LessonTopic)}
}

func (m *mockLessonTopicRepo) Create(_ context.Context, topic *model.LessonTopic) error {
	if topic.LessonTopicID == "" {
		topic.LessonTopicID = fmt.Sprintf("topic-%03d", len(m.topics)+1)
	}
	m.topics[topic.LessonTopicID] = topic
	return nil
}

func (m *mockLessonTopicRepo) GetByID(_ context.Context, id string) (*model.LessonTopic, error) {
	if t, ok := m.topics[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLessonTopicRepo) GetBySubjectTermWeek(_ context.Context, subjectID, termID string, week int) (*model.LessonTopic, error) {
	for _, t := range m.topics {
		if t.SubjectID == subjectID && t.TermID == termID && t.WeekNumber == week {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLessonTopicRepo) ListByTermWeek(_ context.Context, termID string, week int) ([]model.LessonTopic, error) {
	var result []model.LessonTopic
	for _, t := range m.topics {
		if t.TermID == termID && t.WeekNumber == week {
			result = append(result, *t)
		}
	}
	return result, nil
}

// ── Mock AssessmentRepository ──

type mockAssessmentRepo struct {
	assessments map[string]*model.Assessment
	questions   map[string][]model.AssessmentQuestion          // assessmentID → 题目
	instances   map[string]*model.AssessmentInstance           // instanceID → 实例
	shuffled    map[string][]model.ShuffledAssessmentQuestion  // instanceID → 题序
	seq         int
}

func newMockAssessmentRepo() *mockAssessmentRepo {
	return &mockAssessmentRepo{
		assessments: make(map[string]*model.Assessment),
		questions:   make(map[string][]model.AssessmentQuestion),
		instances:   make(map[string]*model.AssessmentInstance),
		shuffled:    make(map[string][]model.ShuffledAssessmentQuestion),
	}
}

func (m *mockAssessmentRepo) GetByID(_ context.Context, id string) (*model.Assessment, error) {
	if a, ok := m.assessments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssessmentRepo) GetActiveByLessonTopic(_ context.Context, lessonTopicID string) (*model.Assessment, error) {
	for _, a := range m.assessments {
		if a.LessonTopicID == lessonTopicID && a.IsActive {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssessmentRepo) ListQuestions(_ context.Context, assessmentID string) ([]model.AssessmentQuestion, error) {
	return m.questions[assessmentID], nil
}

func (m *mockAssessmentRepo) CreateInstance(_ context.Context, instance *model.AssessmentInstance) error {
	for _, existing := range m.instances {
		if existing.BaseAssessmentID == instance.BaseAssessmentID && existing.PeriodSequence == instance.PeriodSequence {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	instance.InstanceID = fmt.Sprintf("inst-%03d", m.seq)
	m.instances[instance.InstanceID] = instance
	return nil
}

func (m *mockAssessmentRepo) GetInstanceByID(_ context.Context, id string) (*model.AssessmentInstance, error) {
	if i, ok := m.instances[id]; ok {
		return i, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssessmentRepo) GetInstanceByPeriod(_ context.Context, baseAssessmentID string, periodSequence int) (*model.AssessmentInstance, error) {
	for _, i := range m.instances {
		if i.BaseAssessmentID == baseAssessmentID && i.PeriodSequence == periodSequence {
			return i, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssessmentRepo) ListInstancesByAssessment(_ context.Context, baseAssessmentID string) ([]model.AssessmentInstance, error) {
	var result []model.AssessmentInstance
	for _, i := range m.instances {
		if i.BaseAssessmentID == baseAssessmentID {
			result = append(result, *i)
		}
	}
	sort.Slice(result, func(a, b int) bool { return result[a].PeriodSequence < result[b].PeriodSequence })
	return result, nil
}

func (m *mockAssessmentRepo) DeleteInstancesByAssessment(_ context.Context, baseAssessmentID string) error {
	for id, i := range m.instances {
		if i.BaseAssessmentID == baseAssessmentID {
			delete(m.instances, id)
			delete(m.shuffled, id)
		}
	}
	return nil
}

func (m *mockAssessmentRepo) BatchCreateShuffledQuestions(_ context.Context, questions []model.ShuffledAssessmentQuestion) error {
	for _, q := range questions {
		m.shuffled[q.InstanceID] = append(m.shuffled[q.InstanceID], q)
	}
	return nil
}

func (m *mockAssessmentRepo) ListShuffledQuestions(_ context.Context, instanceID string) ([]model.ShuffledAssessmentQuestion, error) {
	rows := append([]model.ShuffledAssessmentQuestion(nil), m.shuffled[instanceID]...)
	sort.Slice(rows, func(a, b int) bool { return rows[a].ShuffledDisplayOrder < rows[b].ShuffledDisplayOrder })
	// 数据库侧通过 Preload 带出题目，这里按 QuestionID 回查
	for i := range rows {
		for _, qs := range m.questions {
			for j := range qs {
				if qs[j].QuestionID == rows[i].QuestionID {
					q := qs[j]
					rows[i].Question = &q
				}
			}
		}
	}
	return rows, nil
}

// ── Mock DailyScheduleRepository ──

type mockDailyScheduleRepo struct {
	schedules map[string]*model.DailySchedule
	seq       int
}

func newMockDailyScheduleRepo() *mockDailyScheduleRepo {
	return &mockDailyScheduleRepo{schedules: make(map[string]*model.DailySchedule)}
}

func (m *mockDailyScheduleRepo) Upsert(_ context.Context, schedule *model.DailySchedule) (bool, error) {
	for _, existing := range m.schedules {
		if existing.StudentID == schedule.StudentID &&
			existing.ScheduledDate.Equal(schedule.ScheduledDate) &&
			existing.PeriodNumber == schedule.PeriodNumber {
			schedule.ScheduleID = existing.ScheduleID
			m.schedules[existing.ScheduleID] = schedule
			return false, nil
		}
	}
	m.seq++
	schedule.ScheduleID = fmt.Sprintf("sch-%03d", m.seq)
	m.schedules[schedule.ScheduleID] = schedule
	return true, nil
}

func (m *mockDailyScheduleRepo) GetByID(_ context.Context, id string) (*model.DailySchedule, error) {
	if s, ok := m.schedules[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDailyScheduleRepo) ListByStudentDateRange(_ context.Context, studentID string, from, to time.Time) ([]model.DailySchedule, error) {
	var result []model.DailySchedule
	for _, s := range m.schedules {
		if s.StudentID == studentID && !s.ScheduledDate.Before(from) && !s.ScheduledDate.After(to) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].ScheduledDate.Equal(result[j].ScheduledDate) {
			return result[i].ScheduledDate.Before(result[j].ScheduledDate)
		}
		return result[i].PeriodNumber < result[j].PeriodNumber
	})
	return result, nil
}

func (m *mockDailyScheduleRepo) ListByStudentWeek(_ context.Context, studentID string, weekNumber int) ([]model.DailySchedule, error) {
	var result []model.DailySchedule
	for _, s := range m.schedules {
		if s.StudentID == studentID && s.WeekNumber == weekNumber {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].ScheduledDate.Equal(result[j].ScheduledDate) {
			return result[i].ScheduledDate.Before(result[j].ScheduledDate)
		}
		return result[i].PeriodNumber < result[j].PeriodNumber
	})
	return result, nil
}

func (m *mockDailyScheduleRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]model.DailySchedule, error) {
	var result []model.DailySchedule
	for _, s := range m.schedules {
		if !s.ScheduledDate.Before(from) && !s.ScheduledDate.After(to) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduleID < result[j].ScheduleID })
	return result, nil
}

func (m *mockDailyScheduleRepo) ListByTopicOrdered(_ context.Context, studentID, lessonTopicID string) ([]model.DailySchedule, error) {
	var result []model.DailySchedule
	for _, s := range m.schedules {
		if s.StudentID == studentID && s.LessonTopicID != nil && *s.LessonTopicID == lessonTopicID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PeriodSequence < result[j].PeriodSequence })
	return result, nil
}

func (m *mockDailyScheduleRepo) ListGraceExpired(_ context.Context, now time.Time) ([]model.DailySchedule, error) {
	var result []model.DailySchedule
	for _, s := range m.schedules {
		if s.GraceEnd != nil && s.GraceEnd.Before(now) && !s.Completed && s.MarkedIncompleteReason == "" {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockDailyScheduleRepo) MarkCompleted(_ context.Context, id string, at time.Time) error {
	s, ok := m.schedules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Completed = true
	s.CompletedAt = &at
	return nil
}

func (m *mockDailyScheduleRepo) MarkIncomplete(_ context.Context, ids []string, reason string) error {
	for _, id := range ids {
		if s, ok := m.schedules[id]; ok {
			s.MarkedIncompleteReason = reason
		}
	}
	return nil
}

func (m *mockDailyScheduleRepo) DeleteByIDs(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(m.schedules, id)
	}
	return nil
}

func (m *mockDailyScheduleRepo) DeleteByStudentWeek(_ context.Context, studentID string, weekNumber int) (int64, error) {
	var deleted int64
	for id, s := range m.schedules {
		if s.StudentID == studentID && s.WeekNumber == weekNumber {
			delete(m.schedules, id)
			deleted++
		}
	}
	return deleted, nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	submissions map[string]*model.AssessmentSubmission
	// scheduleID → 窗口开始时间，ListEarlyUnnullified 依此模拟课表行的关联查询
	windowStarts map[string]time.Time
	seq          int
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{
		submissions:  make(map[string]*model.AssessmentSubmission),
		windowStarts: make(map[string]time.Time),
	}
}

func (m *mockSubmissionRepo) Create(_ context.Context, submission *model.AssessmentSubmission) error {
	m.seq++
	submission.SubmissionID = fmt.Sprintf("sub-%03d", m.seq)
	m.submissions[submission.SubmissionID] = submission
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.AssessmentSubmission, error) {
	if s, ok := m.submissions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) GetValidBySchedule(_ context.Context, scheduleID string) (*model.AssessmentSubmission, error) {
	for _, s := range m.submissions {
		if s.ScheduleID == scheduleID && !s.Nullified {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) ListBySchedule(_ context.Context, scheduleID string) ([]model.AssessmentSubmission, error) {
	var result []model.AssessmentSubmission
	for _, s := range m.submissions {
		if s.ScheduleID == scheduleID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmissionID < result[j].SubmissionID })
	return result, nil
}

func (m *mockSubmissionRepo) ListEarlyUnnullified(_ context.Context) ([]model.AssessmentSubmission, error) {
	var result []model.AssessmentSubmission
	for _, s := range m.submissions {
		ws, ok := m.windowStarts[s.ScheduleID]
		if ok && !s.Nullified && s.SubmittedAt.Before(ws) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSubmissionRepo) Nullify(_ context.Context, id, reason string, at time.Time) error {
	s, ok := m.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	original := s.SubmittedAt
	s.Nullified = true
	s.NullifiedAt = &at
	s.NullifiedReason = reason
	s.OriginalSubmittedAt = &original
	s.Score = 0
	s.Graded = false
	return nil
}

func (m *mockSubmissionRepo) AverageValidScore(_ context.Context, studentID string) (float64, error) {
	var sum float64
	var count int
	for _, s := range m.submissions {
		if s.StudentID == studentID && !s.Nullified && s.Graded {
			sum += s.Score
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}

func (m *mockSubmissionRepo) CountValidBySchedules(_ context.Context, scheduleIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, id := range scheduleIDs {
		for _, s := range m.submissions {
			if s.ScheduleID == id && !s.Nullified {
				counts[id]++
			}
		}
	}
	return counts, nil
}

// ── Mock HolidayRepository ──

type mockHolidayRepo struct {
	holidays map[string]*model.PublicHoliday // 日期字符串 → 假期
}

func newMockHolidayRepo() *mockHolidayRepo {
	return &mockHolidayRepo{holidays: make(map[string]*model.PublicHoliday)}
}

func (m *mockHolidayRepo) Create(_ context.Context, holiday *model.PublicHoliday) error {
	key := holiday.HolidayDate.Format("2006-01-02")
	if _, exists := m.holidays[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	if holiday.HolidayID == "" {
		holiday.HolidayID = "hol-" + key
	}
	m.holidays[key] = holiday
	return nil
}

func (m *mockHolidayRepo) Delete(_ context.Context, id string) error {
	for key, h := range m.holidays {
		if h.HolidayID == id {
			delete(m.holidays, key)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockHolidayRepo) List(_ context.Context) ([]model.PublicHoliday, error) {
	var result []model.PublicHoliday
	for _, h := range m.holidays {
		result = append(result, *h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].HolidayDate.Before(result[j].HolidayDate) })
	return result, nil
}

func (m *mockHolidayRepo) IsSchoolClosed(_ context.Context, date time.Time) (bool, error) {
	if h, ok := m.holidays[date.Format("2006-01-02")]; ok {
		return h.IsSchoolClosed, nil
	}
	return false, nil
}

func (m *mockHolidayRepo) ListClosedDates(_ context.Context) ([]time.Time, error) {
	var result []time.Time
	for _, h := range m.holidays {
		if h.IsSchoolClosed {
			result = append(result, h.HolidayDate)
		}
	}
	return result, nil
}

// ── Mock ProgressRepository ──

type mockProgressRepo struct {
	progress map[string]*model.StudentLessonProgress
	seq      int
}

func newMockProgressRepo() *mockProgressRepo {
	return &mockProgressRepo{progress: make(map[string]*model.StudentLessonProgress)}
}

func (m *mockProgressRepo) Upsert(_ context.Context, progress *model.StudentLessonProgress) error {
	for _, existing := range m.progress {
		if existing.StudentID == progress.StudentID &&
			existing.LessonTopicID == progress.LessonTopicID &&
			existing.ScheduledDate.Equal(progress.ScheduledDate) &&
			existing.PeriodNumber == progress.PeriodNumber {
			progress.ProgressID = existing.ProgressID
			m.progress[existing.ProgressID] = progress
			return nil
		}
	}
	m.seq++
	progress.ProgressID = fmt.Sprintf("prog-%03d", m.seq)
	m.progress[progress.ProgressID] = progress
	return nil
}

func (m *mockProgressRepo) GetBySchedule(_ context.Context, scheduleID string) (*model.StudentLessonProgress, error) {
	for _, p := range m.progress {
		if p.ScheduleID != nil && *p.ScheduleID == scheduleID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgressRepo) ListByScheduleIDs(_ context.Context, scheduleIDs []string) ([]model.StudentLessonProgress, error) {
	var result []model.StudentLessonProgress
	for _, id := range scheduleIDs {
		for _, p := range m.progress {
			if p.ScheduleID != nil && *p.ScheduleID == id {
				result = append(result, *p)
			}
		}
	}
	return result, nil
}

func (m *mockProgressRepo) MarkCompleted(_ context.Context, scheduleID string, at time.Time, submissionID string) error {
	for _, p := range m.progress {
		if p.ScheduleID != nil && *p.ScheduleID == scheduleID {
			p.Completed = true
			p.CompletedAt = &at
			p.SubmissionID = &submissionID
			return nil
		}
	}
	return nil
}

func (m *mockProgressRepo) MarkIncompleteBySchedules(_ context.Context, scheduleIDs []string, reason string) error {
	for _, id := range scheduleIDs {
		for _, p := range m.progress {
			if p.ScheduleID != nil && *p.ScheduleID == id && !p.Completed {
				p.IncompleteReason = reason
			}
		}
	}
	return nil
}

func (m *mockProgressRepo) DeleteWithoutSubmission(_ context.Context, scheduleIDs []string) error {
	for _, id := range scheduleIDs {
		for pid, p := range m.progress {
			if p.ScheduleID != nil && *p.ScheduleID == id && p.SubmissionID == nil {
				delete(m.progress, pid)
			}
		}
	}
	return nil
}

func (m *mockProgressRepo) DetachSchedules(_ context.Context, scheduleIDs []string) error {
	for _, id := range scheduleIDs {
		for _, p := range m.progress {
			if p.ScheduleID != nil && *p.ScheduleID == id {
				p.ScheduleID = nil
			}
		}
	}
	return nil
}

// ── Mock ArchiveRepository ──

type mockArchiveRepo struct {
	schedules map[string]*model.ArchivedDailySchedule         // source_schedule_id → 行
	progress  map[string]*model.ArchivedStudentLessonProgress // source_progress_id → 行
}

func newMockArchiveRepo() *mockArchiveRepo {
	return &mockArchiveRepo{
		schedules: make(map[string]*model.ArchivedDailySchedule),
		progress:  make(map[string]*model.ArchivedStudentLessonProgress),
	}
}

func (m *mockArchiveRepo) BatchCreateSchedules(_ context.Context, rows []model.ArchivedDailySchedule) (int64, error) {
	var created int64
	for i := range rows {
		if _, exists := m.schedules[rows[i].SourceScheduleID]; exists {
			continue
		}
		row := rows[i]
		if row.ArchivedAt.IsZero() {
			row.ArchivedAt = time.Now()
		}
		m.schedules[row.SourceScheduleID] = &row
		created++
	}
	return created, nil
}

func (m *mockArchiveRepo) BatchCreateProgress(_ context.Context, rows []model.ArchivedStudentLessonProgress) (int64, error) {
	var created int64
	for i := range rows {
		if _, exists := m.progress[rows[i].SourceProgressID]; exists {
			continue
		}
		row := rows[i]
		if row.ArchivedAt.IsZero() {
			row.ArchivedAt = time.Now()
		}
		m.progress[row.SourceProgressID] = &row
		created++
	}
	return created, nil
}

func (m *mockArchiveRepo) ListSchedulesByStudent(_ context.Context, studentID string, termID string) ([]model.ArchivedDailySchedule, error) {
	var result []model.ArchivedDailySchedule
	for _, r := range m.schedules {
		if r.StudentID == studentID && r.TermID == termID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockArchiveRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, r := range m.schedules {
		if r.ArchivedAt.Before(cutoff) {
			delete(m.schedules, id)
			deleted++
		}
	}
	for id, r := range m.progress {
		if r.ArchivedAt.Before(cutoff) {
			delete(m.progress, id)
		}
	}
	return deleted, nil
}
