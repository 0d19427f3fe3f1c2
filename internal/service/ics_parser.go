package service

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将标准 iCalendar (RFC 5545) 内容解析为学生课表的周模板课时。
//
// 设计决策：
//   - DTSTART/DTEND 确定星期几与时间
//   - 排课引擎只关心"每周第几天的哪些学科"，因此 RRULE 仅用于确认
//     事件是周期性的，周次展开不做
//   - 合并同 summary+day+time 的重复事件（ICS 常以多个单次事件表示同一门课）
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
	lagosTimezone   = "Africa/Lagos"
)

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(rawURL string) (io.ReadCloser, error) {
	// webcal:// → https://
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	client := &http.Client{Timeout: icsFetchTimeout}
	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	// 限制响应体大小，防止恶意 URL 返回超大内容导致 OOM
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// ParseICS 解析 ICS 内容并转为课表课时列表
func ParseICS(reader io.Reader) (model.TimetableEntryList, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	loc, _ := time.LoadLocation(lagosTimezone)

	entries := make(model.TimetableEntryList, 0)
	seen := make(map[string]bool)
	for _, evt := range cal.Events() {
		entry, ok := parseVEvent(evt, loc)
		if !ok {
			continue
		}
		key := fmt.Sprintf("%s|%d|%s|%s", entry.SubjectName, entry.DayOfWeek, entry.StartTime, entry.EndTime)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(a, b int) bool {
		if entries[a].DayOfWeek != entries[b].DayOfWeek {
			return entries[a].DayOfWeek < entries[b].DayOfWeek
		}
		return entries[a].StartTime < entries[b].StartTime
	})
	return entries, nil
}

// parseVEvent 解析单个 VEVENT 组件
func parseVEvent(evt *ics.VEvent, loc *time.Location) (model.TimetableEntry, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return model.TimetableEntry{}, false
	}
	name := strings.TrimSpace(summary.Value)

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return model.TimetableEntry{}, false
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		// 若无 DTEND，尝试用 DURATION；简化处理为 1 小时
		durProp := evt.GetProperty(ics.ComponentPropertyDuration)
		if durProp != nil {
			dtEnd = dtStart.Add(time.Hour)
		} else {
			return model.TimetableEntry{}, false
		}
	}

	return model.TimetableEntry{
		DayOfWeek:   ISOWeekday(dtStart),
		StartTime:   dtStart.Format("15:04"),
		EndTime:     dtEnd.Format("15:04"),
		SubjectName: name,
	}, true
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	// 尝试多种 ICS 日期格式
	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
	}

	// 检查 TZID 参数
	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range formats {
		if t, err := time.Parse(layout, val); err == nil {
			if strings.HasSuffix(layout, "Z") {
				return t.In(loc), nil
			}
			if tzid != "" {
				if tzLoc, err := time.LoadLocation(tzid); err == nil {
					return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
				}
			}
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}
