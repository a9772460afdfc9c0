package course

import (
	"strconv"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/response"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	SemesterID uint   `json:"semester_id" validate:"required,min=1"`
	Code       string `json:"code" validate:"required,min=2,max=50"`
	Title      string `json:"title" validate:"required,min=3,max=255"`
	Category   string `json:"category" validate:"omitempty,oneof=CORE PROFESSIONAL_ELECTIVE OPEN_ELECTIVE"`
	Credits    int    `json:"credits" validate:"omitempty,min=1,max=10"`
}

// UpdateCourseRequest represents the request body for updating a course
type UpdateCourseRequest struct {
	Code     string `json:"code" validate:"omitempty,min=2,max=50"`
	Title    string `json:"title" validate:"omitempty,min=3,max=255"`
	Category string `json:"category" validate:"omitempty,oneof=CORE PROFESSIONAL_ELECTIVE OPEN_ELECTIVE"`
	Credits  *int   `json:"credits" validate:"omitempty,min=1,max=10"`
	IsActive *bool  `json:"is_active"`
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	// Parse query parameters
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")
	semesterID := c.Query("semester_id", "")
	category := c.Query("category", "")

	// Build query
	query := h.db.Model(&model.Course{})

	// Apply filters
	if search != "" {
		query = query.Where("title ILIKE ? OR code ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if semesterID != "" {
		query = query.Where("semester_id = ?", semesterID)
	}

	if category != "" {
		query = query.Where("category = ?", category)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	// Calculate pagination
	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var courses []model.Course
	if err := query.Preload("Sections").
		Order("code ASC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Paginated(c, courses, pagination)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	if err := h.db.Preload("Sections").
		Preload("Outcomes", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		Preload("Outcomes.Tools").
		First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	// Parse request body
	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate request
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// Sanitize inputs
	req.Code = validation.SanitizeString(req.Code)
	req.Title = validation.SanitizeString(req.Title)

	// Check if semester exists
	var semester model.Semester
	if err := h.db.First(&semester, req.SemesterID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Semester not found")
		}
		return response.InternalServerError(c, "Failed to verify semester")
	}

	// Course codes are unique across the institution
	var existingCourse model.Course
	if err := h.db.Where("code = ?", req.Code).First(&existingCourse).Error; err == nil {
		return response.Conflict(c, "Course with this code already exists")
	}

	if req.Category == "" {
		req.Category = model.CategoryCore
	}
	if req.Credits == 0 {
		req.Credits = 3
	}

	course := model.Course{
		SemesterID: req.SemesterID,
		Code:       req.Code,
		Title:      req.Title,
		Category:   req.Category,
		Credits:    req.Credits,
		IsActive:   true,
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// UpdateCourse handles PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	// Parse request body
	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate request
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// Check if course exists
	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	// Update fields if provided
	if req.Code != "" {
		// Check if code is already used by another course
		var existingCourse model.Course
		if err := h.db.Where("code = ? AND id != ?", req.Code, id).First(&existingCourse).Error; err == nil {
			return response.Conflict(c, "Course with this code already exists")
		}
		course.Code = validation.SanitizeString(req.Code)
	}

	if req.Title != "" {
		course.Title = validation.SanitizeString(req.Title)
	}

	if req.Category != "" {
		course.Category = req.Category
	}

	if req.Credits != nil {
		course.Credits = *req.Credits
	}

	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	// Save changes
	if err := h.db.Save(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.SuccessWithMessage(c, "Course updated successfully", course)
}

// DeleteCourse handles DELETE /api/v1/courses/:id. The delete is soft;
// enrollments and marks stay queryable for audits.
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	// Check if course exists
	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	// Refuse while students are still enrolled
	var enrollmentCount int64
	if err := h.db.Model(&model.StudentCourse{}).Where("course_id = ?", id).Count(&enrollmentCount).Error; err != nil {
		return response.InternalServerError(c, "Failed to check course dependencies")
	}

	if enrollmentCount > 0 {
		return response.BadRequest(c, "Cannot delete course with enrolled students")
	}

	// Delete course (soft delete)
	if err := h.db.Delete(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}
