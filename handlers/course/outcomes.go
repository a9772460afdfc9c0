package course

import (
	"errors"
	"strconv"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/RamPrasathM-2005/College-Integration-sub001/services"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/response"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// OutcomeHandler handles CO partition and assessment tool requests
type OutcomeHandler struct {
	db        *gorm.DB
	outcomes  *services.OutcomeService
	validator *validation.Validator
}

// NewOutcomeHandler creates a new outcome handler
func NewOutcomeHandler(db *gorm.DB, outcomes *services.OutcomeService) *OutcomeHandler {
	return &OutcomeHandler{
		db:        db,
		outcomes:  outcomes,
		validator: validation.NewValidator(),
	}
}

// PartitionRequest represents the request body for resizing a course's
// CO partition
type PartitionRequest struct {
	TheoryCount       int `json:"theory_count" validate:"min=0,max=20"`
	PracticalCount    int `json:"practical_count" validate:"min=0,max=20"`
	ExperientialCount int `json:"experiential_count" validate:"min=0,max=20"`
}

// ToolSetRequest represents the request body for saving a CO's tool set
type ToolSetRequest struct {
	Tools []services.ToolInput `json:"tools" validate:"required,dive"`
}

// ListOutcomes handles GET /api/v1/courses/:id/outcomes
func (h *OutcomeHandler) ListOutcomes(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var outcomes []model.CourseOutcome
	if err := h.db.Preload("Tools").
		Where("course_id = ?", uint(courseID)).
		Order("number ASC").
		Find(&outcomes).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch outcomes")
	}

	return response.Success(c, outcomes)
}

// UpdatePartitions handles PUT /api/v1/courses/:id/partitions.
// Shrinking a partition deletes the trailing outcomes of that type
// together with their tools and marks, so it requires ?confirm=true.
func (h *OutcomeHandler) UpdatePartitions(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req PartitionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	confirm := c.Query("confirm") == "true"

	input := services.PartitionInput{
		TheoryCount:       req.TheoryCount,
		PracticalCount:    req.PracticalCount,
		ExperientialCount: req.ExperientialCount,
	}

	if err := h.outcomes.ResizePartitions(uint(courseID), input, confirm); err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return response.NotFound(c, "Course not found")
		case errors.Is(err, services.ErrConfirmRequired):
			return response.Conflict(c, err.Error())
		case errors.Is(err, services.ErrNegativePartition):
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to update partitions")
	}

	var outcomes []model.CourseOutcome
	if err := h.db.Where("course_id = ?", uint(courseID)).Order("number ASC").Find(&outcomes).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch outcomes")
	}

	return response.SuccessWithMessage(c, "Partition updated successfully", outcomes)
}

// SaveTools handles PUT /api/v1/outcomes/:id/tools. The tool set is
// replaced atomically; it is rejected unless weightages sum to 100.
func (h *OutcomeHandler) SaveTools(c *fiber.Ctx) error {
	outcomeID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid outcome ID")
	}

	var req ToolSetRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.outcomes.SaveToolSet(uint(outcomeID), req.Tools); err != nil {
		switch {
		case errors.Is(err, services.ErrOutcomeNotFound):
			return response.NotFound(c, "Course outcome not found")
		case errors.Is(err, services.ErrWeightageSum),
			errors.Is(err, services.ErrDuplicateToolName):
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to save tools")
	}

	var outcome model.CourseOutcome
	if err := h.db.Preload("Tools").First(&outcome, uint(outcomeID)).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch outcome")
	}

	return response.SuccessWithMessage(c, "Tools saved successfully", outcome)
}

// ListTools handles GET /api/v1/outcomes/:id/tools
func (h *OutcomeHandler) ListTools(c *fiber.Ctx) error {
	outcomeID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid outcome ID")
	}

	var outcome model.CourseOutcome
	if err := h.db.Preload("Tools").First(&outcome, uint(outcomeID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course outcome not found")
		}
		return response.InternalServerError(c, "Failed to fetch outcome")
	}

	return response.Success(c, outcome.Tools)
}
