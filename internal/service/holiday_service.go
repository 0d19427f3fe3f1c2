package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/forhay123/haybee-edu-sub009/internal/dto"
	"github.com/forhay123/haybee-edu-sub009/internal/model"
	"github.com/forhay123/haybee-edu-sub009/internal/repository"
	"github.com/forhay123/haybee-edu-sub009/pkg/redis"
)

// ── 假期模块业务错误 ──

var (
	ErrHolidayExists   = errors.New("该日期已存在假期记录")
	ErrHolidayNotFound = errors.New("假期记录不存在")
	ErrInvalidDate     = errors.New("无效的日期格式")
	ErrNoAvailableSlot = errors.New("顺延范围内无可用周六")
)

const (
	holidayCacheTTL = 12 * time.Hour
	dateLayout      = "2006-01-02"
)

// HolidayService 公共假期业务接口
// 停课判断走 Redis 假期集合缓存，缓存缺失或 Redis 不可用时回源数据库
type HolidayService interface {
	Create(ctx context.Context, req *dto.CreateHolidayRequest, callerID string) (*dto.HolidayResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]dto.HolidayResponse, error)
	// IsSchoolClosed 某日期是否停课
	IsSchoolClosed(ctx context.Context, date time.Time) (bool, error)
	// NextAvailableSaturday 周六停课时按周向后顺延到最近的非假期周六，
	// 超出配置的最大查找周数返回 ErrNoAvailableSlot
	NextAvailableSaturday(ctx context.Context, saturday time.Time) (time.Time, error)
}

type holidayService struct {
	repo           *repository.Repository
	cache          *redis.Client
	lookaheadWeeks int
	logger         *zap.Logger
}

// NewHolidayService 创建 HolidayService 实例
func NewHolidayService(repo *repository.Repository, cache *redis.Client, lookaheadWeeks int, logger *zap.Logger) HolidayService {
	return &holidayService{
		repo:           repo,
		cache:          cache,
		lookaheadWeeks: lookaheadWeeks,
		logger:         logger,
	}
}

func (s *holidayService) Create(ctx context.Context, req *dto.CreateHolidayRequest, callerID string) (*dto.HolidayResponse, error) {
	date, err := time.Parse(dateLayout, req.HolidayDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	closed := true
	if req.IsSchoolClosed != nil {
		closed = *req.IsSchoolClosed
	}

	holiday := &model.PublicHoliday{
		HolidayDate:    date,
		HolidayName:    req.HolidayName,
		IsSchoolClosed: closed,
	}
	holiday.CreatedBy = &callerID

	if err := s.repo.Holiday.Create(ctx, holiday); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrHolidayExists
		}
		s.logger.Error("创建假期失败", zap.Error(err))
		return nil, err
	}

	s.invalidateCache(ctx)
	return holidayToResponse(holiday), nil
}

func (s *holidayService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Holiday.Delete(ctx, id); err != nil {
		s.logger.Error("删除假期失败", zap.Error(err))
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *holidayService) List(ctx context.Context) ([]dto.HolidayResponse, error) {
	holidays, err := s.repo.Holiday.List(ctx)
	if err != nil {
		s.logger.Error("查询假期列表失败", zap.Error(err))
		return nil, err
	}
	resp := make([]dto.HolidayResponse, 0, len(holidays))
	for i := range holidays {
		resp = append(resp, *holidayToResponse(&holidays[i]))
	}
	return resp, nil
}

func (s *holidayService) IsSchoolClosed(ctx context.Context, date time.Time) (bool, error) {
	key := date.Format(dateLayout)

	if s.cache != nil {
		closed, hit, err := s.cache.IsHolidayCached(ctx, key)
		if err != nil {
			// Redis 故障降级为数据库查询
			s.logger.Warn("假期缓存读取失败，回源数据库", zap.Error(err))
		} else if hit {
			return closed, nil
		} else if warmErr := s.warmCache(ctx); warmErr == nil {
			if closed, hit, err = s.cache.IsHolidayCached(ctx, key); err == nil && hit {
				return closed, nil
			}
		}
	}

	return s.repo.Holiday.IsSchoolClosed(ctx, date)
}

func (s *holidayService) NextAvailableSaturday(ctx context.Context, saturday time.Time) (time.Time, error) {
	candidate := saturday
	for i := 0; i < s.lookaheadWeeks; i++ {
		candidate = candidate.AddDate(0, 0, 7)
		closed, err := s.IsSchoolClosed(ctx, candidate)
		if err != nil {
			return time.Time{}, err
		}
		if !closed {
			return candidate, nil
		}
	}
	s.logger.Warn("周六顺延查找超出上限",
		zap.String("from", saturday.Format(dateLayout)),
		zap.Int("lookahead_weeks", s.lookaheadWeeks),
	)
	return time.Time{}, ErrNoAvailableSlot
}

// warmCache 以全部停课日期重建缓存
func (s *holidayService) warmCache(ctx context.Context) error {
	dates, err := s.repo.Holiday.ListClosedDates(ctx)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, d.Format(dateLayout))
	}
	return s.cache.CacheHolidayDates(ctx, keys, holidayCacheTTL)
}

func (s *holidayService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateHolidayCache(ctx); err != nil {
		s.logger.Warn("假期缓存失效操作失败", zap.Error(err))
	}
}

func holidayToResponse(h *model.PublicHoliday) *dto.HolidayResponse {
	return &dto.HolidayResponse{
		ID:             h.HolidayID,
		HolidayDate:    h.HolidayDate.Format(dateLayout),
		HolidayName:    h.HolidayName,
		IsSchoolClosed: h.IsSchoolClosed,
	}
}
