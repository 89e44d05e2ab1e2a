package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/timefmt"
)

var taskColumns = []struct {
	title string
	width float64
}{
	{"ID", 38}, {"Title", 40}, {"Quadrant", 10}, {"Initial", 10}, {"Status", 12},
	{"Assignee", 22}, {"Created by", 22}, {"Created", 14}, {"Start", 14}, {"End", 14},
	{"Overdue", 10}, {"History", 60},
}

type ExportService struct {
	Tasks  *TaskService
	Logger *zap.Logger
}

func NewExportService(tasks *TaskService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{Tasks: tasks, Logger: logger}
}

// TaskReport renders the tasks visible to actor as an xlsx workbook.
func (s *ExportService) TaskReport(actor model.User, f TaskFilter) (*bytes.Buffer, string, error) {
	tasks := s.Tasks.List(actor, f)
	now := s.Tasks.now()

	x := excelize.NewFile()
	defer x.Close()

	sheet := "Tasks"
	idx, err := x.NewSheet(sheet)
	if err != nil {
		return nil, "", err
	}
	x.SetActiveSheet(idx)
	x.DeleteSheet("Sheet1")

	headerStyle, _ := x.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, c := range taskColumns {
		col := colName(i)
		x.SetColWidth(sheet, col, col, c.width)
		x.SetCellValue(sheet, cell(col, 1), c.title)
	}
	x.SetCellStyle(sheet, "A1", cell(colName(len(taskColumns)-1), 1), headerStyle)

	for r, t := range tasks {
		row := r + 2
		overdue := ""
		if timefmt.IsOverdue(t.EndTime, t.Status.Closed(), now) {
			overdue = "yes"
		}
		values := []any{
			t.ID, t.Title, string(t.Quadrant), string(t.InitialQuadrant), string(t.Status),
			t.AssigneeLabel, t.CreatedByLabel, t.CreatedAtDisplay, t.StartTime, t.EndTime,
			overdue, strings.Join(t.Logs, "\n"),
		}
		for i, v := range values {
			x.SetCellValue(sheet, cell(colName(i), row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := x.Write(buf); err != nil {
		s.Logger.Error("write task report", zap.Error(err))
		return nil, "", fmt.Errorf("write task report: %w", err)
	}
	return buf, fmt.Sprintf("tasks_%s.xlsx", now.Format("20060102_1504")), nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
