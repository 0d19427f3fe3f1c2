package service

import (
	"go.uber.org/zap"

	"github.com/forhay123/haybee-edu-sub009/config"
	"github.com/forhay123/haybee-edu-sub009/internal/repository"
	"github.com/forhay123/haybee-edu-sub009/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Calendar    *Calendar
	Holiday     HolidayService
	Topic       TopicService
	Shuffle     ShuffleService
	Generator   GeneratorService
	Window      WindowService
	Submission  SubmissionService
	Archival    ArchivalService
	Conflict    ConflictService
	Timetable   TimetableService
	Export      ExportService
	Maintenance MaintenanceService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache *redis.Client,
	logger *zap.Logger,
) (*Service, error) {
	calendar, err := NewCalendar(&cfg.Schedule)
	if err != nil {
		return nil, err
	}

	holiday := NewHolidayService(repo, cache, cfg.Schedule.HolidayLookaheadWeeks, logger)
	topic := NewTopicService(repo, logger)
	shuffle := NewShuffleService(repo, logger)
	generator := NewGeneratorService(repo, calendar, holiday, topic, shuffle, cfg.Generate.Workers, logger)
	submission := NewSubmissionService(repo, logger)
	archival := NewArchivalService(repo, cfg.Archive.RetentionDays, logger)

	return &Service{
		Calendar:    calendar,
		Holiday:     holiday,
		Topic:       topic,
		Shuffle:     shuffle,
		Generator:   generator,
		Window:      NewWindowService(repo, logger),
		Submission:  submission,
		Archival:    archival,
		Conflict:    NewConflictService(repo, generator, logger),
		Timetable:   NewTimetableService(repo, logger),
		Export:      NewExportService(repo, logger),
		Maintenance: NewMaintenanceService(submission, archival, cfg.Schedule.SweepInterval, cfg.Archive.SweepInterval, logger),
	}, nil
}
