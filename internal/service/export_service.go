package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSchedules  = errors.New("该周暂无学习安排")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 一期仅实现学生周学习计划导出为 Excel (.xlsx)
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Excel 格式：节次为行，周一 ~ 周六为列，单元格为学科与课程主题
type ExportService interface {
	// ExportWeeklyPlan 导出某学生某周的学习计划
	ExportWeeklyPlan(ctx context.Context, studentID string, weekNumber int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportWeeklyPlan — 导出学生周学习计划为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "第N周"
//   - 行头：第 1/2/3 节（含测评窗口时间）
//   - 列头：周一 ~ 周六（含日期）
//   - 单元格：学科名 + 课程主题（缺主题标"主题待定"）
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportWeeklyPlan(ctx context.Context, studentID string, weekNumber int) (*bytes.Buffer, string, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, "", err
	}

	schedules, err := s.repo.DailySchedule.ListByStudentWeek(ctx, studentID, weekNumber)
	if err != nil {
		s.logger.Error("查询周课表失败", zap.Error(err))
		return nil, "", err
	}
	if len(schedules) == 0 {
		return nil, "", ErrExportNoSchedules
	}

	// 数据索引: "dayOfWeek:periodNumber" → 单元格文本；并收集节次行与日期列
	cellIndex := make(map[string]string)
	periodTimes := make(map[int]string) // periodNumber → "16:00-17:00"
	dayDates := make(map[int]string)    // dayOfWeek → "03-10"
	maxPeriod := 0

	for _, sc := range schedules {
		text := "待排"
		if sc.Subject != nil {
			text = sc.Subject.Name
		}
		if sc.LessonTopic != nil {
			text += "\n" + sc.LessonTopic.TopicTitle
		} else if sc.MissingLessonTopic {
			text += "\n主题待定"
		}
		if sc.TotalPeriodsForTopic > 1 {
			text += fmt.Sprintf("（%d/%d 课时）", sc.PeriodSequence, sc.TotalPeriodsForTopic)
		}

		cellIndex[fmt.Sprintf("%d:%d", sc.DayOfWeek, sc.PeriodNumber)] = text
		periodTimes[sc.PeriodNumber] = fmt.Sprintf("%s-%s", clockPrefix(sc.StartTime), clockPrefix(sc.EndTime))
		dayDates[sc.DayOfWeek] = sc.ScheduledDate.Format("01-02")
		if sc.PeriodNumber > maxPeriod {
			maxPeriod = sc.PeriodNumber
		}
	}

	var periods []int
	for p := range periodTimes {
		periods = append(periods, p)
	}
	sort.Ints(periods)

	dayNames := map[int]string{
		DayMonday: "周一", 2: "周二", 3: "周三", 4: "周四", 5: "周五", DaySaturday: "周六",
	}
	dayOrder := []int{1, 2, 3, 4, 5, 6}

	// 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := fmt.Sprintf("第%d周", weekNumber)
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 16)
	for i := range dayOrder {
		col, _ := excelize.ColumnNumberToName(2 + i)
		f.SetColWidth(sheetName, col, col, 22)
	}

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 第%d周学习计划", student.DisplayName, weekNumber))
	f.MergeCell(sheetName, "A1", cell(colName(len(dayOrder)), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头：节次 | 周一(日期) … 周六(日期)
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "节次")
	for i, dow := range dayOrder {
		header := dayNames[dow]
		if d, ok := dayDates[dow]; ok {
			header += " (" + d + ")"
		}
		f.SetCellValue(sheetName, cell(colName(1+i), row), header)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(dayOrder)), row), headerStyle)

	// 数据行
	row = 3
	for _, p := range periods {
		f.SetCellValue(sheetName, cell("A", row), fmt.Sprintf("第%d节\n%s", p, periodTimes[p]))
		for i, dow := range dayOrder {
			key := fmt.Sprintf("%d:%d", dow, p)
			if text, ok := cellIndex[key]; ok {
				f.SetCellValue(sheetName, cell(colName(1+i), row), text)
			} else {
				f.SetCellValue(sheetName, cell(colName(1+i), row), "-")
			}
		}
		f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(dayOrder)), row), cellStyle)
		f.SetRowHeight(sheetName, row, 40)
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("学习计划_%s_第%d周.xlsx", student.DisplayName, weekNumber)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// clockPrefix 将 time 列的 "16:00:00" 截为 "16:00"
func clockPrefix(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}
