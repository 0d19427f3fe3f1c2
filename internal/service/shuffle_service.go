package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
	"github.com/forhay123/haybee-edu-sub009/internal/repository"
)

// ── 测评实例模块业务错误 ──

var (
	ErrAssessmentNotFound    = errors.New("基础测评不存在")
	ErrAssessmentNoQuestions = errors.New("基础测评无题目，无法生成实例")
)

// 实例后缀表：A..J 用尽后转课时序号数字
const suffixAlphabet = "ABCDEFGHIJ"

// 题序去重的重试上限，题目数过少时接受重复（尽力而为）
const maxShuffleAttempts = 10

// ShuffleService 测评实例打乱业务接口
//
// 打乱是确定性的：种子由 (base_assessment_id, period_sequence) 派生，
// 重复生成同一周课表得到完全相同的题序；不同课时序号在题目数允许时
// 得到互不相同的排列。已存在的实例直接复用，从不重排
type ShuffleService interface {
	// CreateShuffledInstances 为多课时主题生成（或复用）每课时一个的测评实例
	CreateShuffledInstances(ctx context.Context, baseAssessmentID, lessonTopicID string, periodCount, weekNumber int) ([]model.AssessmentInstance, error)
	// DeleteInstancesForAssessment 重新生成前清除全部实例（题序级联删除）
	DeleteInstancesForAssessment(ctx context.Context, baseAssessmentID string) error
}

type shuffleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShuffleService 创建 ShuffleService 实例
func NewShuffleService(repo *repository.Repository, logger *zap.Logger) ShuffleService {
	return &shuffleService{repo: repo, logger: logger}
}

func (s *shuffleService) CreateShuffledInstances(ctx context.Context, baseAssessmentID, lessonTopicID string, periodCount, weekNumber int) ([]model.AssessmentInstance, error) {
	if _, err := s.repo.Assessment.GetByID(ctx, baseAssessmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssessmentNotFound
		}
		s.logger.Error("查询基础测评失败", zap.Error(err))
		return nil, err
	}

	questions, err := s.repo.Assessment.ListQuestions(ctx, baseAssessmentID)
	if err != nil {
		s.logger.Error("查询测评题目失败", zap.Error(err))
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrAssessmentNoQuestions
	}

	instances := make([]model.AssessmentInstance, 0, periodCount)
	seen := make(map[string]bool, periodCount) // 本次生成中已占用的排列指纹

	for seq := 1; seq <= periodCount; seq++ {
		existing, err := s.repo.Assessment.GetInstanceByPeriod(ctx, baseAssessmentID, seq)
		if err == nil {
			// 已有实例复用，不重排；记录其排列避免后续课时撞车
			if fp, fpErr := s.instanceFingerprint(ctx, existing.InstanceID); fpErr == nil {
				seen[fp] = true
			}
			instances = append(instances, *existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询测评实例失败", zap.Error(err))
			return nil, err
		}

		order := shuffleOrder(baseAssessmentID, seq, len(questions), seen)
		seen[fingerprint(order)] = true

		instance := &model.AssessmentInstance{
			BaseAssessmentID: baseAssessmentID,
			LessonTopicID:    lessonTopicID,
			PeriodSequence:   seq,
			TotalPeriods:     periodCount,
			InstanceSuffix:   suffixForSequence(seq),
			WeekNumber:       weekNumber,
			IsActive:         true,
		}
		if err := s.repo.Assessment.CreateInstance(ctx, instance); err != nil {
			// 并发生成同一实例时落到唯一约束上，读回已有行
			if isUniqueViolation(err) {
				if existing, getErr := s.repo.Assessment.GetInstanceByPeriod(ctx, baseAssessmentID, seq); getErr == nil {
					instances = append(instances, *existing)
					continue
				}
			}
			s.logger.Error("创建测评实例失败", zap.Error(err))
			return nil, err
		}

		shuffled := make([]model.ShuffledAssessmentQuestion, 0, len(questions))
		for displayOrder, qi := range order {
			shuffled = append(shuffled, model.ShuffledAssessmentQuestion{
				InstanceID:           instance.InstanceID,
				QuestionID:           questions[qi].QuestionID,
				ShuffledDisplayOrder: displayOrder + 1,
			})
		}
		if err := s.repo.Assessment.BatchCreateShuffledQuestions(ctx, shuffled); err != nil {
			s.logger.Error("写入打乱题序失败", zap.Error(err))
			return nil, err
		}

		instances = append(instances, *instance)
	}

	return instances, nil
}

func (s *shuffleService) DeleteInstancesForAssessment(ctx context.Context, baseAssessmentID string) error {
	return s.repo.Assessment.DeleteInstancesByAssessment(ctx, baseAssessmentID)
}

// instanceFingerprint 读取已有实例的题序指纹
func (s *shuffleService) instanceFingerprint(ctx context.Context, instanceID string) (string, error) {
	rows, err := s.repo.Assessment.ListShuffledQuestions(ctx, instanceID)
	if err != nil {
		return "", err
	}
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		if r.Question != nil {
			ids = append(ids, r.Question.OrderNumber-1)
		}
	}
	return fingerprint(ids), nil
}

// shuffleOrder 生成某课时的确定性排列，必要时加盐重试避开已占用的排列
func shuffleOrder(baseAssessmentID string, periodSequence, n int, seen map[string]bool) []int {
	var order []int
	for attempt := 0; attempt < maxShuffleAttempts; attempt++ {
		order = permute(shuffleSeed(baseAssessmentID, periodSequence, attempt), n)
		if !seen[fingerprint(order)] {
			return order
		}
	}
	// 题目数过少时排列空间不足，接受重复
	return order
}

// shuffleSeed 由实例身份派生种子，与进程状态无关
func shuffleSeed(baseAssessmentID string, periodSequence, salt int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d:%d", baseAssessmentID, periodSequence, salt)
	return int64(h.Sum64())
}

func permute(seed int64, n int) []int {
	rng := rand.New(rand.NewSource(seed))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(n, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

func fingerprint(order []int) string {
	fp := ""
	for _, v := range order {
		fp += strconv.Itoa(v) + ","
	}
	return fp
}

// suffixForSequence 课时序号转实例后缀：1..10 → A..J，之后用序号数字
func suffixForSequence(seq int) string {
	if seq >= 1 && seq <= len(suffixAlphabet) {
		return string(suffixAlphabet[seq-1])
	}
	return strconv.Itoa(seq)
}
