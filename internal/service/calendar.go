package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/forhay123/haybee-edu-sub009/config"
)

// ── 学习窗口业务错误 ──

var (
	ErrInvalidDay = errors.New("无效的星期值")
	ErrRestDay    = errors.New("周日为休息日，无学习窗口")
)

// 星期常量：1=周一 … 7=周日（与课表数据一致）
const (
	DayMonday    = 1
	DaySaturday  = 6
	DaySunday    = 7
)

// PeriodSlot 学习窗口内的一个节次
type PeriodSlot struct {
	PeriodNumber int    `json:"period_number"` // 当日内从 1 开始
	StartTime    string `json:"start_time"`    // HH:MM
	EndTime      string `json:"end_time"`      // HH:MM
}

// LearningWindow 某个星期几的学习窗口
type LearningWindow struct {
	DayOfWeek int          `json:"day_of_week"`
	StartTime string       `json:"start_time"`
	EndTime   string       `json:"end_time"`
	Slots     []PeriodSlot `json:"slots"`
}

// Calendar 学习窗口日历（纯计算，无 IO）
// 周一至周五 16:00-18:00 两节，周六 12:00-15:00 三节，周日休息；
// 时间与节次时长均来自 schedule 配置段
type Calendar struct {
	weekday  LearningWindow
	saturday LearningWindow
	grace    time.Duration
}

// NewCalendar 根据配置构建日历，窗口长度必须能整除节次时长
func NewCalendar(cfg *config.ScheduleConfig) (*Calendar, error) {
	weekday, err := buildWindow(DayMonday, cfg.WeekdayStart, cfg.WeekdayEnd, cfg.PeriodMinutes)
	if err != nil {
		return nil, fmt.Errorf("工作日窗口配置无效: %w", err)
	}
	saturday, err := buildWindow(DaySaturday, cfg.SaturdayStart, cfg.SaturdayEnd, cfg.PeriodMinutes)
	if err != nil {
		return nil, fmt.Errorf("周六窗口配置无效: %w", err)
	}
	return &Calendar{
		weekday:  *weekday,
		saturday: *saturday,
		grace:    time.Duration(cfg.GraceMinutes) * time.Minute,
	}, nil
}

func buildWindow(day int, start, end string, periodMinutes int) (*LearningWindow, error) {
	startMin, err := parseClock(start)
	if err != nil {
		return nil, err
	}
	endMin, err := parseClock(end)
	if err != nil {
		return nil, err
	}
	if endMin <= startMin {
		return nil, fmt.Errorf("窗口结束时间 %s 不晚于开始时间 %s", end, start)
	}
	total := endMin - startMin
	if total%periodMinutes != 0 {
		return nil, fmt.Errorf("窗口时长 %d 分钟无法整除节次时长 %d 分钟", total, periodMinutes)
	}

	count := total / periodMinutes
	slots := make([]PeriodSlot, 0, count)
	for i := 0; i < count; i++ {
		slots = append(slots, PeriodSlot{
			PeriodNumber: i + 1,
			StartTime:    formatClock(startMin + i*periodMinutes),
			EndTime:      formatClock(startMin + (i+1)*periodMinutes),
		})
	}

	return &LearningWindow{
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		Slots:     slots,
	}, nil
}

// WindowFor 返回某个星期几的学习窗口
func (c *Calendar) WindowFor(dayOfWeek int) (*LearningWindow, error) {
	switch {
	case dayOfWeek >= DayMonday && dayOfWeek < DaySaturday:
		w := c.weekday
		w.DayOfWeek = dayOfWeek
		return &w, nil
	case dayOfWeek == DaySaturday:
		w := c.saturday
		return &w, nil
	case dayOfWeek == DaySunday:
		return nil, ErrRestDay
	default:
		return nil, ErrInvalidDay
	}
}

// SlotsFor 返回某个星期几的节次列表
func (c *Calendar) SlotsFor(dayOfWeek int) ([]PeriodSlot, error) {
	window, err := c.WindowFor(dayOfWeek)
	if err != nil {
		return nil, err
	}
	return window.Slots, nil
}

// WindowTimes 将节次折算为某日期上的测评窗口三元组（开始/结束/宽限截止）
func (c *Calendar) WindowTimes(date time.Time, slot PeriodSlot) (start, end, graceEnd time.Time) {
	start = atClock(date, slot.StartTime)
	end = atClock(date, slot.EndTime)
	graceEnd = end.Add(c.grace)
	return start, end, graceEnd
}

// ── 时刻换算 ──

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("无效的时刻 %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func atClock(date time.Time, clock string) time.Time {
	minutes, _ := parseClock(clock)
	y, m, d := date.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, date.Location())
}

// ISOWeekday 将 time.Weekday 转为 1=周一 … 7=周日
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return DaySunday
	}
	return wd
}
