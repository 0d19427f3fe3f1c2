package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MaintenanceService 后台巡检调度
//
// 两条定时任务：
//   - 窗口巡检（schedule.sweep_interval）：回溯作废早交记录 + 宽限期到期标记
//   - 归档清理（archive.sweep_interval）：删除超出保留期的归档行
//
// 巡检本身幂等，多实例部署下重复执行无害
type MaintenanceService interface {
	Start(ctx context.Context)
	Stop()
}

type maintenanceService struct {
	submission SubmissionService
	archival   ArchivalService

	windowInterval    time.Duration
	retentionInterval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewMaintenanceService 创建 MaintenanceService 实例
func NewMaintenanceService(submission SubmissionService, archival ArchivalService, windowInterval, retentionInterval time.Duration, logger *zap.Logger) MaintenanceService {
	return &maintenanceService{
		submission:        submission,
		archival:          archival,
		windowInterval:    windowInterval,
		retentionInterval: retentionInterval,
		logger:            logger,
	}
}

func (s *maintenanceService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.runLoop(ctx, "窗口巡检", s.windowInterval, s.windowSweep)
	go s.runLoop(ctx, "归档清理", s.retentionInterval, s.retentionSweep)

	s.logger.Info("后台巡检已启动",
		zap.Duration("window_interval", s.windowInterval),
		zap.Duration("retention_interval", s.retentionInterval),
	)
}

func (s *maintenanceService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("后台巡检已停止")
}

func (s *maintenanceService) runLoop(ctx context.Context, name string, interval time.Duration, sweep func(context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// 启动时先跑一轮，服务重启期间积压的到期行尽快处理
	sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}

func (s *maintenanceService) windowSweep(ctx context.Context) {
	nullified, err := s.submission.NullifySweep(ctx)
	if err != nil {
		s.logger.Error("回溯作废巡检失败", zap.Error(err))
	}

	missed, err := s.submission.GraceSweep(ctx)
	if err != nil {
		s.logger.Error("宽限期巡检失败", zap.Error(err))
	}

	if nullified > 0 || missed > 0 {
		s.logger.Info("窗口巡检完成",
			zap.Int("nullified", nullified),
			zap.Int("marked_missed", missed),
		)
	}
}

func (s *maintenanceService) retentionSweep(ctx context.Context) {
	deleted, err := s.archival.RetentionSweep(ctx)
	if err != nil {
		s.logger.Error("归档保留清理失败", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("归档保留清理完成", zap.Int64("deleted", deleted))
	}
}
