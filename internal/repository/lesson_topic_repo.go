package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
)

// LessonTopicRepository 课程主题数据访问接口
type LessonTopicRepository interface {
	Create(ctx context.Context, topic *model.LessonTopic) error
	GetByID(ctx context.Context, id string) (*model.LessonTopic, error)
	GetBySubjectTermWeek(ctx context.Context, subjectID, termID string, week int) (*model.LessonTopic, error)
	ListByTermWeek(ctx context.Context, termID string, week int) ([]model.LessonTopic, error)
}

type lessonTopicRepo struct {
	db *gorm.DB
}

func NewLessonTopicRepo(db *gorm.DB) LessonTopicRepository {
	return &lessonTopicRepo{db: db}
}

func (r *lessonTopicRepo) Create(ctx context.Context, topic *model.LessonTopic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *lessonTopicRepo) GetByID(ctx context.Context, id string) (*model.LessonTopic, error) {
	var topic model.LessonTopic
	err := r.db.WithContext(ctx).
		Where("lesson_topic_id = ?", id).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// GetBySubjectTermWeek 周主题轮换的查找入口，不存在时返回 gorm.ErrRecordNotFound
func (r *lessonTopicRepo) GetBySubjectTermWeek(ctx context.Context, subjectID, termID string, week int) (*model.LessonTopic, error) {
	var topic model.LessonTopic
	err := r.db.WithContext(ctx).
		Where("subject_id = ? AND term_id = ? AND week_number = ?", subjectID, termID, week).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *lessonTopicRepo) ListByTermWeek(ctx context.Context, termID string, week int) ([]model.LessonTopic, error) {
	var topics []model.LessonTopic
	err := r.db.WithContext(ctx).
		Where("term_id = ? AND week_number = ?", termID, week).
		Find(&topics).Error
	return topics, err
}
