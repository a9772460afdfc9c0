package course

import (
	"strconv"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/response"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SemesterHandler handles semester-related requests
type SemesterHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewSemesterHandler creates a new semester handler
func NewSemesterHandler(db *gorm.DB) *SemesterHandler {
	return &SemesterHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateSemesterRequest represents the request body for creating a semester
type CreateSemesterRequest struct {
	Number       int    `json:"number" validate:"required,min=1,max=8"`
	AcademicYear string `json:"academic_year" validate:"required,min=4,max=20"`
}

// UpdateSemesterRequest represents the request body for updating a semester
type UpdateSemesterRequest struct {
	AcademicYear string `json:"academic_year" validate:"omitempty,min=4,max=20"`
	IsActive     *bool  `json:"is_active"`
}

// ListSemesters handles GET /api/v1/semesters
func (h *SemesterHandler) ListSemesters(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	academicYear := c.Query("academic_year", "")

	query := h.db.Model(&model.Semester{})
	if academicYear != "" {
		query = query.Where("academic_year = ?", academicYear)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count semesters")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var semesters []model.Semester
	if err := query.Order("academic_year DESC, number ASC").
		Limit(limit).
		Offset(offset).
		Find(&semesters).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch semesters")
	}

	return response.Paginated(c, semesters, pagination)
}

// GetSemester handles GET /api/v1/semesters/:id
func (h *SemesterHandler) GetSemester(c *fiber.Ctx) error {
	id := c.Params("id")

	var semester model.Semester
	if err := h.db.Preload("Courses").Preload("Buckets.Courses").First(&semester, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Semester not found")
		}
		return response.InternalServerError(c, "Failed to fetch semester")
	}

	return response.Success(c, semester)
}

// CreateSemester handles POST /api/v1/semesters
func (h *SemesterHandler) CreateSemester(c *fiber.Ctx) error {
	var req CreateSemesterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// One term per (number, academic year)
	var existing model.Semester
	if err := h.db.Where("number = ? AND academic_year = ?", req.Number, req.AcademicYear).
		First(&existing).Error; err == nil {
		return response.Conflict(c, "Semester already exists for this academic year")
	}

	semester := model.Semester{
		Number:       req.Number,
		AcademicYear: req.AcademicYear,
		IsActive:     true,
	}

	if err := h.db.Create(&semester).Error; err != nil {
		return response.InternalServerError(c, "Failed to create semester")
	}

	return response.Created(c, semester)
}

// UpdateSemester handles PUT /api/v1/semesters/:id
func (h *SemesterHandler) UpdateSemester(c *fiber.Ctx) error {
	id := c.Params("id")

	var semester model.Semester
	if err := h.db.First(&semester, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Semester not found")
		}
		return response.InternalServerError(c, "Failed to fetch semester")
	}

	var req UpdateSemesterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.AcademicYear != "" {
		semester.AcademicYear = req.AcademicYear
	}
	if req.IsActive != nil {
		semester.IsActive = *req.IsActive
	}

	if err := h.db.Save(&semester).Error; err != nil {
		return response.InternalServerError(c, "Failed to update semester")
	}

	return response.SuccessWithMessage(c, "Semester updated successfully", semester)
}

// DeleteSemester handles DELETE /api/v1/semesters/:id
func (h *SemesterHandler) DeleteSemester(c *fiber.Ctx) error {
	id := c.Params("id")

	var semester model.Semester
	if err := h.db.First(&semester, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Semester not found")
		}
		return response.InternalServerError(c, "Failed to fetch semester")
	}

	var courseCount int64
	if err := h.db.Model(&model.Course{}).Where("semester_id = ?", id).Count(&courseCount).Error; err != nil {
		return response.InternalServerError(c, "Failed to check semester dependencies")
	}

	if courseCount > 0 {
		return response.BadRequest(c, "Cannot delete semester with existing courses")
	}

	if err := h.db.Delete(&semester).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete semester")
	}

	return response.SuccessWithMessage(c, "Semester deleted successfully", nil)
}
