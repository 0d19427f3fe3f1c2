package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
	"github.com/forhay123/haybee-edu-sub009/internal/repository"
)

// TopicService 周主题轮换业务接口
// 学科在某学期某周的主题查找：缺失不是错误，返回 (nil, nil)，
// 由生成器落为 missing_lesson_topic 标记等待人工指派
type TopicService interface {
	AssignTopic(ctx context.Context, subjectID, termID string, weekNumber int) (*model.LessonTopic, error)
}

type topicService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTopicService 创建 TopicService 实例
func NewTopicService(repo *repository.Repository, logger *zap.Logger) TopicService {
	return &topicService{repo: repo, logger: logger}
}

func (s *topicService) AssignTopic(ctx context.Context, subjectID, termID string, weekNumber int) (*model.LessonTopic, error) {
	topic, err := s.repo.LessonTopic.GetBySubjectTermWeek(ctx, subjectID, termID, weekNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug("本周无课程主题",
				zap.String("subject_id", subjectID),
				zap.Int("week_number", weekNumber),
			)
			return nil, nil
		}
		s.logger.Error("查询课程主题失败", zap.Error(err))
		return nil, err
	}
	return topic, nil
}
