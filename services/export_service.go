package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/RamPrasathM-2005/College-Integration-sub001/services/storage"
)

// ExportService renders computed mark reports as CSV. The engine only
// supplies already-computed numeric cells; layout is decided here.
type ExportService struct {
	marks *MarksService
	store *storage.ObjectStore // optional archive of exports
}

// NewExportService creates a new export service
func NewExportService(marks *MarksService, store *storage.ObjectStore) *ExportService {
	return &ExportService{marks: marks, store: store}
}

// CourseReportCSV renders one row per student: raw tool marks, CO
// marks, per-type averages for the types the course actually has, and
// the final average.
func (e *ExportService) CourseReportCSV(courseID uint) ([]byte, error) {
	report, err := e.marks.CourseReport(courseID)
	if err != nil {
		return nil, err
	}

	presentTypes := presentCOTypes(report)

	header := []string{"Reg No", "Name"}
	for _, co := range report.Outcomes {
		for _, tool := range co.Tools {
			header = append(header, fmt.Sprintf("CO%d %s (max %s)", co.Number, tool.Name, trimFloat(tool.MaxMarks)))
		}
	}
	for _, co := range report.Outcomes {
		header = append(header, fmt.Sprintf("CO%d", co.Number))
	}
	for _, coType := range presentTypes {
		header = append(header, coType+" Avg")
	}
	header = append(header, "Final")

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, student := range report.Students {
		row := []string{student.RegNo, student.Name}
		for _, co := range report.Outcomes {
			for _, tool := range co.Tools {
				row = append(row, trimFloat(student.ToolMarks[tool.ToolID]))
			}
		}
		for i := range report.Outcomes {
			row = append(row, formatMark(student.OutcomeMarks[i].Mark))
		}
		for _, coType := range presentTypes {
			row = append(row, formatMark(student.TypeAverages[coType]))
		}
		row = append(row, formatMark(student.Final))
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	data := buf.Bytes()
	e.archive(report, data)
	return data, nil
}

func (e *ExportService) archive(report *CourseReport, data []byte) {
	if e.store == nil {
		return
	}
	key := fmt.Sprintf("exports/%s-%s.csv", report.CourseCode, time.Now().Format("20060102-150405"))
	if _, err := e.store.UploadBytes(context.Background(), key, data, "text/csv"); err != nil {
		log.Printf("export: failed to archive CSV for course %s: %v", report.CourseCode, err)
	}
}

// presentCOTypes returns the CO types the course has, in the fixed
// theory/practical/experiential order.
func presentCOTypes(report *CourseReport) []string {
	has := make(map[string]bool)
	for _, co := range report.Outcomes {
		has[co.Type] = true
	}
	var types []string
	for _, coType := range []string{model.COTypeTheory, model.COTypePractical, model.COTypeExperiential} {
		if has[coType] {
			types = append(types, coType)
		}
	}
	return types
}

func formatMark(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
