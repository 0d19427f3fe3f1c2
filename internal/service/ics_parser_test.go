package service

import (
	"strings"
	"testing"
)

// 2026-03-02 为周一，2026-03-03 为周二
func icsFixture(events ...string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//school//timetable//EN",
	}
	lines = append(lines, events...)
	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

func icsEvent(uid, dtStart, dtEnd, summary string) string {
	return strings.Join([]string{
		"BEGIN:VEVENT",
		"UID:" + uid,
		"DTSTART:" + dtStart,
		"DTEND:" + dtEnd,
		"SUMMARY:" + summary,
		"END:VEVENT",
	}, "\r\n")
}

func TestParseICS_WeeklyTemplate(t *testing.T) {
	content := icsFixture(
		icsEvent("1", "20260303T090000", "20260303T100000", "英语"),
		icsEvent("2", "20260302T090000", "20260302T100000", "数学"),
	)

	entries, err := ParseICS(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseICS 应成功: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("期望 2 条课时，实际 %d 条", len(entries))
	}

	// 输出按星期与开始时间排序：周一数学在前
	if entries[0].DayOfWeek != DayMonday || entries[0].SubjectName != "数学" {
		t.Errorf("第一条期望周一数学，实际 星期%d %s", entries[0].DayOfWeek, entries[0].SubjectName)
	}
	if entries[0].StartTime != "09:00" || entries[0].EndTime != "10:00" {
		t.Errorf("时间期望 09:00-10:00，实际 %s-%s", entries[0].StartTime, entries[0].EndTime)
	}
	if entries[1].DayOfWeek != 2 || entries[1].SubjectName != "英语" {
		t.Errorf("第二条期望周二英语，实际 星期%d %s", entries[1].DayOfWeek, entries[1].SubjectName)
	}
}

func TestParseICS_DeduplicatesRepeatedEvents(t *testing.T) {
	// 同一门课在 ICS 中常以多个单次事件出现（逐周展开），应合并为一条周模板课时
	content := icsFixture(
		icsEvent("1", "20260302T090000", "20260302T100000", "数学"),
		icsEvent("2", "20260309T090000", "20260309T100000", "数学"),
		icsEvent("3", "20260316T090000", "20260316T100000", "数学"),
	)

	entries, err := ParseICS(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseICS 应成功: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("逐周重复事件应合并为 1 条，实际 %d 条", len(entries))
	}
}

func TestParseICS_UTCConvertedToLocalTime(t *testing.T) {
	// Africa/Lagos 为 UTC+1：08:00Z 应折算为本地 09:00
	content := icsFixture(
		icsEvent("1", "20260302T080000Z", "20260302T090000Z", "物理"),
	)

	entries, err := ParseICS(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseICS 应成功: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("期望 1 条课时，实际 %d 条", len(entries))
	}
	if entries[0].StartTime != "09:00" || entries[0].EndTime != "10:00" {
		t.Errorf("UTC 时间应折算为本地 09:00-10:00，实际 %s-%s", entries[0].StartTime, entries[0].EndTime)
	}
}

func TestParseICS_SkipsEventsWithoutSummary(t *testing.T) {
	content := icsFixture(
		strings.Join([]string{
			"BEGIN:VEVENT",
			"UID:1",
			"DTSTART:20260302T090000",
			"DTEND:20260302T100000",
			"END:VEVENT",
		}, "\r\n"),
		icsEvent("2", "20260302T100000", "20260302T110000", "化学"),
	)

	entries, err := ParseICS(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseICS 应成功: %v", err)
	}
	if len(entries) != 1 || entries[0].SubjectName != "化学" {
		t.Errorf("无 SUMMARY 的事件应跳过，实际: %+v", entries)
	}
}

func TestParseICS_InvalidContent(t *testing.T) {
	if _, err := ParseICS(strings.NewReader("not an ics file")); err == nil {
		t.Error("非 ICS 内容应报错")
	}
}
