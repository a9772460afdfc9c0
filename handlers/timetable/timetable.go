package timetable

import (
	"errors"
	"strconv"

	"github.com/RamPrasathM-2005/College-Integration-sub001/services"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/response"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TimetableHandler handles weekly slot assignment requests
type TimetableHandler struct {
	db        *gorm.DB
	timetable *services.TimetableService
	validator *validation.Validator
}

// NewTimetableHandler creates a new timetable handler
func NewTimetableHandler(db *gorm.DB, timetable *services.TimetableService) *TimetableHandler {
	return &TimetableHandler{
		db:        db,
		timetable: timetable,
		validator: validation.NewValidator(),
	}
}

// CreateEntryRequest represents the request body for placing a slot
type CreateEntryRequest struct {
	DayOfWeek int  `json:"day_of_week" validate:"required,min=1,max=6"`
	Period    int  `json:"period" validate:"required,min=1,max=8"`
	CourseID  uint `json:"course_id" validate:"required,min=1"`
	StaffID   uint `json:"staff_id" validate:"required,min=1"`
}

// CreateEntry handles POST /api/v1/sections/:id/timetable
func (h *TimetableHandler) CreateEntry(c *fiber.Ctx) error {
	sectionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid section ID")
	}

	var req CreateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	entry, err := h.timetable.CreateEntry(uint(sectionID), req.DayOfWeek, req.Period, req.CourseID, req.StaffID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadSlot):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrSectionNotFound):
			return response.NotFound(c, "Course section not found")
		case errors.Is(err, services.ErrNotAssigned):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrSlotTaken),
			errors.Is(err, services.ErrStaffBusy):
			return response.Conflict(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to create timetable entry")
	}

	return response.Created(c, entry)
}

// DeleteEntry handles DELETE /api/v1/timetable/:id
func (h *TimetableHandler) DeleteEntry(c *fiber.Ctx) error {
	entryID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid entry ID")
	}

	if err := h.timetable.DeleteEntry(uint(entryID)); err != nil {
		if errors.Is(err, services.ErrEntryMissing) {
			return response.NotFound(c, "Timetable entry not found")
		}
		return response.InternalServerError(c, "Failed to delete timetable entry")
	}

	return response.SuccessWithMessage(c, "Timetable entry deleted successfully", nil)
}

// SectionWeek handles GET /api/v1/sections/:id/timetable
func (h *TimetableHandler) SectionWeek(c *fiber.Ctx) error {
	sectionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid section ID")
	}

	entries, err := h.timetable.SectionWeek(uint(sectionID))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch timetable")
	}

	return response.Success(c, entries)
}
