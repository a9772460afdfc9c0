package attendance

import (
	"errors"
	"strconv"
	"time"

	"github.com/RamPrasathM-2005/College-Integration-sub001/services"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/middleware"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/response"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AttendanceHandler handles attendance marking and summary requests
type AttendanceHandler struct {
	db         *gorm.DB
	attendance *services.AttendanceService
	validator  *validation.Validator
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(db *gorm.DB, attendance *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		db:         db,
		attendance: attendance,
		validator:  validation.NewValidator(),
	}
}

// MarkSheetRequest represents one period's attendance sheet
type MarkSheetRequest struct {
	CourseID  uint                 `json:"course_id" validate:"required,min=1"`
	SectionID uint                 `json:"section_id" validate:"required,min=1"`
	Date      string               `json:"date" validate:"required"` // YYYY-MM-DD
	Period    int                  `json:"period" validate:"required,min=1,max=8"`
	Entries   []services.MarkEntry `json:"entries" validate:"required,min=1,dive"`
}

// MarkSheet handles POST /api/v1/attendance. Re-marking the same slot
// overwrites the earlier statuses.
func (h *AttendanceHandler) MarkSheet(c *fiber.Ctx) error {
	staff, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req MarkSheetRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return response.BadRequest(c, "Date must be in YYYY-MM-DD format")
	}

	if err := h.attendance.MarkSheet(staff.ID, req.CourseID, req.SectionID, date, req.Period, req.Entries); err != nil {
		switch {
		case errors.Is(err, services.ErrBadAttendanceStatus),
			errors.Is(err, services.ErrEmptySheet),
			errors.Is(err, services.ErrNotEnrolled):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrNotAssigned):
			return response.Forbidden(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to record attendance")
	}

	return response.SuccessWithMessage(c, "Attendance recorded successfully", nil)
}

// StudentSummary handles GET /api/v1/attendance/students/:id/courses/:course_id
func (h *AttendanceHandler) StudentSummary(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}
	courseID, err := strconv.ParseUint(c.Params("course_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	summary, err := h.attendance.StudentSummary(uint(studentID), uint(courseID))
	if err != nil {
		return response.InternalServerError(c, "Failed to build attendance summary")
	}

	return response.Success(c, summary)
}

// MySummary handles GET /api/v1/attendance/me/courses/:course_id
func (h *AttendanceHandler) MySummary(c *fiber.Ctx) error {
	student, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := strconv.ParseUint(c.Params("course_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	summary, err := h.attendance.StudentSummary(student.ID, uint(courseID))
	if err != nil {
		return response.InternalServerError(c, "Failed to build attendance summary")
	}

	return response.Success(c, summary)
}
