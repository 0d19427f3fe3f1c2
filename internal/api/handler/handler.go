package handler

import "github.com/forhay123/haybee-edu-sub009/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Schedule   *ScheduleHandler
	Submission *SubmissionHandler
	Timetable  *TimetableHandler
	Holiday    *HolidayHandler
	Archive    *ArchiveHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Schedule:   NewScheduleHandler(svc.Generator, svc.Window),
		Submission: NewSubmissionHandler(svc.Submission),
		Timetable:  NewTimetableHandler(svc.Timetable, svc.Conflict),
		Holiday:    NewHolidayHandler(svc.Holiday),
		Archive:    NewArchiveHandler(svc.Archival),
		Export:     NewExportHandler(svc.Export),
	}
}
