package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
)

// AssessmentRepository 测评、题目、实例与打乱题序的数据访问接口
type AssessmentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Assessment, error)
	GetActiveByLessonTopic(ctx context.Context, lessonTopicID string) (*model.Assessment, error)
	ListQuestions(ctx context.Context, assessmentID string) ([]model.AssessmentQuestion, error)

	CreateInstance(ctx context.Context, instance *model.AssessmentInstance) error
	GetInstanceByID(ctx context.Context, id string) (*model.AssessmentInstance, error)
	GetInstanceByPeriod(ctx context.Context, baseAssessmentID string, periodSequence int) (*model.AssessmentInstance, error)
	ListInstancesByAssessment(ctx context.Context, baseAssessmentID string) ([]model.AssessmentInstance, error)
	DeleteInstancesByAssessment(ctx context.Context, baseAssessmentID string) error

	BatchCreateShuffledQuestions(ctx context.Context, questions []model.ShuffledAssessmentQuestion) error
	ListShuffledQuestions(ctx context.Context, instanceID string) ([]model.ShuffledAssessmentQuestion, error)
}

type assessmentRepo struct {
	db *gorm.DB
}

func NewAssessmentRepo(db *gorm.DB) AssessmentRepository {
	return &assessmentRepo{db: db}
}

func (r *assessmentRepo) GetByID(ctx context.Context, id string) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.db.WithContext(ctx).
		Where("assessment_id = ?", id).
		First(&assessment).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepo) GetActiveByLessonTopic(ctx context.Context, lessonTopicID string) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.db.WithContext(ctx).
		Where("lesson_topic_id = ? AND is_active = ?", lessonTopicID, true).
		First(&assessment).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepo) ListQuestions(ctx context.Context, assessmentID string) ([]model.AssessmentQuestion, error) {
	var questions []model.AssessmentQuestion
	err := r.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("order_number ASC").
		Find(&questions).Error
	return questions, err
}

// ── 测评实例 ──

func (r *assessmentRepo) CreateInstance(ctx context.Context, instance *model.AssessmentInstance) error {
	return r.db.WithContext(ctx).Create(instance).Error
}

func (r *assessmentRepo) GetInstanceByID(ctx context.Context, id string) (*model.AssessmentInstance, error) {
	var instance model.AssessmentInstance
	err := r.db.WithContext(ctx).
		Where("instance_id = ?", id).
		First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

// GetInstanceByPeriod 复用检查：同一基础测评同一课时序号只存在一个实例
func (r *assessmentRepo) GetInstanceByPeriod(ctx context.Context, baseAssessmentID string, periodSequence int) (*model.AssessmentInstance, error) {
	var instance model.AssessmentInstance
	err := r.db.WithContext(ctx).
		Where("base_assessment_id = ? AND period_sequence = ?", baseAssessmentID, periodSequence).
		First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *assessmentRepo) ListInstancesByAssessment(ctx context.Context, baseAssessmentID string) ([]model.AssessmentInstance, error) {
	var instances []model.AssessmentInstance
	err := r.db.WithContext(ctx).
		Where("base_assessment_id = ?", baseAssessmentID).
		Order("period_sequence ASC").
		Find(&instances).Error
	return instances, err
}

// DeleteInstancesByAssessment 删除实例（打乱题序随外键级联删除）
func (r *assessmentRepo) DeleteInstancesByAssessment(ctx context.Context, baseAssessmentID string) error {
	return r.db.WithContext(ctx).
		Where("base_assessment_id = ?", baseAssessmentID).
		Delete(&model.AssessmentInstance{}).Error
}

// ── 打乱题序 ──

func (r *assessmentRepo) BatchCreateShuffledQuestions(ctx context.Context, questions []model.ShuffledAssessmentQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&questions).Error
}

func (r *assessmentRepo) ListShuffledQuestions(ctx context.Context, instanceID string) ([]model.ShuffledAssessmentQuestion, error) {
	var questions []model.ShuffledAssessmentQuestion
	err := r.db.WithContext(ctx).
		Preload("Question").
		Where("instance_id = ?", instanceID).
		Order("shuffled_display_order ASC").
		Find(&questions).Error
	return questions, err
}
