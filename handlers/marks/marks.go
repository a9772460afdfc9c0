package marks

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RamPrasathM-2005/College-Integration-sub001/services"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/middleware"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/response"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MarksHandler handles mark entry, bulk import and report requests
type MarksHandler struct {
	db        *gorm.DB
	marks     *services.MarksService
	export    *services.ExportService
	validator *validation.Validator
}

// NewMarksHandler creates a new marks handler
func NewMarksHandler(db *gorm.DB, marks *services.MarksService, export *services.ExportService) *MarksHandler {
	return &MarksHandler{
		db:        db,
		marks:     marks,
		export:    export,
		validator: validation.NewValidator(),
	}
}

// SubmitMarkRequest represents the request body for entering one mark
type SubmitMarkRequest struct {
	StudentID uint     `json:"student_id" validate:"required,min=1"`
	ToolID    uint     `json:"tool_id" validate:"required,min=1"`
	Mark      *float64 `json:"mark" validate:"required,min=0"`
}

// SubmitMark handles POST /api/v1/marks. Re-submitting the same
// (student, tool) pair overwrites the stored mark.
func (h *MarksHandler) SubmitMark(c *fiber.Ctx) error {
	staff, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req SubmitMarkRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.marks.SubmitMark(staff.ID, req.StudentID, req.ToolID, *req.Mark); err != nil {
		switch {
		case errors.Is(err, services.ErrToolNotFound):
			return response.NotFound(c, "Assessment tool not found")
		case errors.Is(err, services.ErrNotEnrolled):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrNotAssigned):
			return response.Forbidden(c, err.Error())
		case errors.Is(err, services.ErrMarkOutOfRange):
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to save mark")
	}

	return response.SuccessWithMessage(c, "Mark saved successfully", nil)
}

// ImportMarks handles POST /api/v1/tools/:id/marks/import. The body is
// a multipart upload with a "file" field holding a CSV of
// reg_no,mark rows (an optional header line is skipped). Bad cells are
// clamped or skipped per row; they never abort the whole sheet.
func (h *MarksHandler) ImportMarks(c *fiber.Ctx) error {
	staff, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	toolID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid tool ID")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "CSV file is required in the 'file' field")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to open uploaded file")
	}
	defer file.Close()

	rows, parseErrs, err := parseMarkCSV(file)
	if err != nil {
		return response.BadRequest(c, fmt.Sprintf("Failed to parse CSV: %v", err))
	}
	if len(rows) == 0 {
		return response.BadRequest(c, "CSV contains no mark rows")
	}

	summary, err := h.marks.ImportMarks(staff.ID, uint(toolID), rows)
	if err != nil {
		if errors.Is(err, services.ErrToolNotFound) {
			return response.NotFound(c, "Assessment tool not found")
		}
		return response.InternalServerError(c, "Failed to import marks")
	}

	summary.Skipped = append(parseErrs, summary.Skipped...)

	return response.SuccessWithMessage(c, "Import completed", summary)
}

// parseMarkCSV reads reg_no,mark rows. Unparseable rows are reported,
// not fatal.
func parseMarkCSV(r io.Reader) ([]services.ImportRow, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []services.ImportRow
	var skipped []string
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line++

		if len(record) < 2 {
			skipped = append(skipped, fmt.Sprintf("line %d: expected reg_no,mark", line))
			continue
		}

		regNo := strings.TrimSpace(record[0])
		markField := strings.TrimSpace(record[1])
		if regNo == "" {
			skipped = append(skipped, fmt.Sprintf("line %d: empty register number", line))
			continue
		}

		mark, err := strconv.ParseFloat(markField, 64)
		if err != nil {
			// Tolerate a header line
			if line == 1 {
				continue
			}
			skipped = append(skipped, fmt.Sprintf("line %d: invalid mark %q", line, markField))
			continue
		}

		rows = append(rows, services.ImportRow{RegNo: regNo, Mark: mark})
	}
	return rows, skipped, nil
}

// CourseReport handles GET /api/v1/courses/:id/report
func (h *MarksHandler) CourseReport(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	report, err := h.marks.CourseReport(uint(courseID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to build course report")
	}

	return response.Success(c, report)
}

// ExportReport handles GET /api/v1/courses/:id/report/export. The
// response is the CSV rendering of the course report.
func (h *MarksHandler) ExportReport(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	data, err := h.export.CourseReportCSV(uint(courseID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to export course report")
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="course-%d-report.csv"`, courseID))
	return c.Send(data)
}
