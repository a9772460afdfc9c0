package elective

import (
	"errors"
	"strconv"
	"time"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/RamPrasathM-2005/College-Integration-sub001/services"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/middleware"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/response"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ElectiveHandler handles CBCS buckets, selections and allocation runs
type ElectiveHandler struct {
	db         *gorm.DB
	electives  *services.ElectiveService
	curriculum *services.CurriculumService
	validator  *validation.Validator
}

// NewElectiveHandler creates a new elective handler
func NewElectiveHandler(db *gorm.DB, electives *services.ElectiveService, curriculum *services.CurriculumService) *ElectiveHandler {
	return &ElectiveHandler{
		db:         db,
		electives:  electives,
		curriculum: curriculum,
		validator:  validation.NewValidator(),
	}
}

// CreateBucketRequest represents the request body for creating a bucket
type CreateBucketRequest struct {
	SemesterID uint   `json:"semester_id" validate:"required,min=1"`
	Number     int    `json:"number" validate:"required,min=1,max=20"`
	Name       string `json:"name" validate:"required,min=2,max=100"`
}

// AddBucketCourseRequest represents the request body for adding a
// course to a bucket
type AddBucketCourseRequest struct {
	CourseID uint `json:"course_id" validate:"required,min=1"`
}

// CreateConfigRequest represents the request body for opening a CBCS round
type CreateConfigRequest struct {
	SemesterID uint      `json:"semester_id" validate:"required,min=1"`
	Type       string    `json:"type" validate:"required,oneof=allocated opt"`
	OpensAt    time.Time `json:"opens_at"`
	ClosesAt   time.Time `json:"closes_at"`
}

// UpdateConfigStatusRequest represents the request body for moving a
// round between open and closed
type UpdateConfigStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open closed"`
}

// SelectElectiveRequest represents a student's direct bucket selection
type SelectElectiveRequest struct {
	CourseID uint `json:"course_id" validate:"required,min=1"`
}

// SubmitChoicesRequest represents a student's ranked preference list
type SubmitChoicesRequest struct {
	Choices []services.ChoiceInput `json:"choices" validate:"required,min=1,dive"`
}

// CreateBucket handles POST /api/v1/electives/buckets
func (h *ElectiveHandler) CreateBucket(c *fiber.Ctx) error {
	var req CreateBucketRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var semester model.Semester
	if err := h.db.First(&semester, req.SemesterID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Semester not found")
		}
		return response.InternalServerError(c, "Failed to verify semester")
	}

	var existing model.ElectiveBucket
	if err := h.db.Where("semester_id = ? AND number = ?", req.SemesterID, req.Number).
		First(&existing).Error; err == nil {
		return response.Conflict(c, "A bucket with this number already exists for the semester")
	}

	bucket := model.ElectiveBucket{
		SemesterID: req.SemesterID,
		Number:     req.Number,
		Name:       req.Name,
	}
	if err := h.db.Create(&bucket).Error; err != nil {
		return response.InternalServerError(c, "Failed to create bucket")
	}

	return response.Created(c, bucket)
}

// ListBuckets handles GET /api/v1/semesters/:id/buckets
func (h *ElectiveHandler) ListBuckets(c *fiber.Ctx) error {
	semesterID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}

	var buckets []model.ElectiveBucket
	if err := h.db.Preload("Courses.Course").
		Where("semester_id = ?", uint(semesterID)).
		Order("number ASC").
		Find(&buckets).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch buckets")
	}

	return response.Success(c, buckets)
}

// AddCourse handles POST /api/v1/electives/buckets/:id/courses. A
// course can belong to at most one bucket per semester.
func (h *ElectiveHandler) AddCourse(c *fiber.Ctx) error {
	bucketID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid bucket ID")
	}

	var req AddBucketCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	membership, err := h.curriculum.AddCourseToBucket(uint(bucketID), req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return response.NotFound(c, "Course not found")
		case errors.Is(err, services.ErrCourseInOtherBucket):
			return response.Conflict(c, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			return response.NotFound(c, "Bucket not found")
		}
		return response.InternalServerError(c, "Failed to add course to bucket")
	}

	return response.Created(c, membership)
}

// CreateConfig handles POST /api/v1/electives/configs
func (h *ElectiveHandler) CreateConfig(c *fiber.Ctx) error {
	var req CreateConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var semester model.Semester
	if err := h.db.First(&semester, req.SemesterID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Semester not found")
		}
		return response.InternalServerError(c, "Failed to verify semester")
	}

	if req.OpensAt.IsZero() {
		req.OpensAt = time.Now()
	}
	if !req.ClosesAt.IsZero() && req.ClosesAt.Before(req.OpensAt) {
		return response.BadRequest(c, "closes_at must be after opens_at")
	}

	config := model.CbcsConfig{
		SemesterID: req.SemesterID,
		Type:       req.Type,
		Status:     model.CbcsStatusOpen,
		OpensAt:    req.OpensAt,
		ClosesAt:   req.ClosesAt,
	}
	if err := h.db.Create(&config).Error; err != nil {
		return response.InternalServerError(c, "Failed to create configuration")
	}

	return response.Created(c, config)
}

// UpdateConfigStatus handles PUT /api/v1/electives/configs/:id/status.
// Completed rounds are frozen; reruns need a new configuration.
func (h *ElectiveHandler) UpdateConfigStatus(c *fiber.Ctx) error {
	configID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid configuration ID")
	}

	var req UpdateConfigStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var config model.CbcsConfig
	if err := h.db.First(&config, uint(configID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Configuration not found")
		}
		return response.InternalServerError(c, "Failed to fetch configuration")
	}

	if config.Status == model.CbcsStatusCompleted {
		return response.Conflict(c, "Completed configurations cannot be reopened")
	}

	config.Status = req.Status
	if err := h.db.Save(&config).Error; err != nil {
		return response.InternalServerError(c, "Failed to update configuration")
	}

	return response.SuccessWithMessage(c, "Configuration updated successfully", config)
}

// SelectElective handles POST /api/v1/electives/buckets/:id/select.
// A pending selection may be replaced; an allocated one is final.
func (h *ElectiveHandler) SelectElective(c *fiber.Ctx) error {
	student, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	bucketID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid bucket ID")
	}

	var req SelectElectiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	selection, err := h.electives.SelectElective(student.ID, uint(bucketID), req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBucketNotFound):
			return response.NotFound(c, "Elective bucket not found")
		case errors.Is(err, services.ErrCourseNotInBucket):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrConfigNotFound), errors.Is(err, services.ErrRoundNotOpen):
			return response.BadRequest(c, "No open selection round for this semester")
		case errors.Is(err, services.ErrAlreadyAllocated),
			errors.Is(err, services.ErrAlreadyEnrolled):
			return response.Conflict(c, err.Error())
		case errors.Is(err, services.ErrNoSection):
			return response.Conflict(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to record selection")
	}

	return response.Created(c, selection)
}

// MySelections handles GET /api/v1/electives/selections
func (h *ElectiveHandler) MySelections(c *fiber.Ctx) error {
	student, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var selections []model.StudentElectiveSelection
	if err := h.db.Preload("Bucket").Preload("Course").
		Where("student_id = ?", student.ID).
		Find(&selections).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch selections")
	}

	return response.Success(c, selections)
}

// SubmitChoices handles POST /api/v1/electives/configs/:id/choices.
// Resubmission replaces the student's previous list atomically.
func (h *ElectiveHandler) SubmitChoices(c *fiber.Ctx) error {
	student, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	configID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid configuration ID")
	}

	var req SubmitChoicesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.electives.SubmitChoices(student.ID, uint(configID), req.Choices); err != nil {
		switch {
		case errors.Is(err, services.ErrConfigNotFound):
			return response.NotFound(c, "Configuration not found")
		case errors.Is(err, services.ErrWrongPolicy),
			errors.Is(err, services.ErrRoundNotOpen),
			errors.Is(err, services.ErrTooManyPreferences),
			errors.Is(err, services.ErrBadPreferenceOrder),
			errors.Is(err, services.ErrCourseNotInBucket),
			errors.Is(err, services.ErrChoiceMismatch):
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to save choices")
	}

	return response.SuccessWithMessage(c, "Choices saved successfully", nil)
}

// RunAllocation handles POST /api/v1/electives/configs/:id/allocate
func (h *ElectiveHandler) RunAllocation(c *fiber.Ctx) error {
	configID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid configuration ID")
	}

	run, err := h.electives.RunAllocation(uint(configID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConfigNotFound):
			return response.NotFound(c, "Configuration not found")
		case errors.Is(err, services.ErrWrongPolicy):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrRunAlreadyDone):
			return response.Conflict(c, err.Error())
		}
		return response.InternalServerError(c, "Allocation failed")
	}

	return response.Created(c, run)
}

// GetRun handles GET /api/v1/electives/runs/:run_id
func (h *ElectiveHandler) GetRun(c *fiber.Ctx) error {
	runID := c.Params("run_id")

	var run model.AllocationRun
	if err := h.db.Where("run_id = ?", runID).First(&run).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Allocation run not found")
		}
		return response.InternalServerError(c, "Failed to fetch allocation run")
	}

	return response.Success(c, run)
}
