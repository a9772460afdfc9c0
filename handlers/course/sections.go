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

// SectionHandler handles course section and staff allocation requests
type SectionHandler struct {
	db         *gorm.DB
	curriculum *services.CurriculumService
	validator  *validation.Validator
}

// NewSectionHandler creates a new section handler
func NewSectionHandler(db *gorm.DB, curriculum *services.CurriculumService) *SectionHandler {
	return &SectionHandler{
		db:         db,
		curriculum: curriculum,
		validator:  validation.NewValidator(),
	}
}

// CreateSectionRequest represents the request body for adding a section
type CreateSectionRequest struct {
	Capacity int `json:"capacity" validate:"omitempty,min=1,max=200"`
}

// AllocateStaffRequest represents the request body for allocating staff
type AllocateStaffRequest struct {
	StaffID   uint `json:"staff_id" validate:"required,min=1"`
	SectionID uint `json:"section_id" validate:"required,min=1"`
}

// EnrollStudentRequest represents the request body for enrolling a student
type EnrollStudentRequest struct {
	StudentID uint `json:"student_id" validate:"required,min=1"`
	SectionID uint `json:"section_id" validate:"required,min=1"`
}

// ListSections handles GET /api/v1/courses/:id/sections
func (h *SectionHandler) ListSections(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var sections []model.CourseSection
	if err := h.db.Where("course_id = ?", uint(courseID)).
		Order("number ASC").
		Find(&sections).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch sections")
	}

	return response.Success(c, sections)
}

// CreateSection handles POST /api/v1/courses/:id/sections. Section
// numbers come from a per-course counter, so concurrent requests get
// distinct numbers.
func (h *SectionHandler) CreateSection(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req CreateSectionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.Capacity == 0 {
		req.Capacity = 60
	}

	section, err := h.curriculum.CreateSection(uint(courseID), req.Capacity)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to create section")
	}

	return response.Created(c, section)
}

// AllocateStaff handles POST /api/v1/courses/:id/staff
func (h *SectionHandler) AllocateStaff(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req AllocateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// The target must be an existing staff account
	var staff model.User
	if err := h.db.Where("id = ? AND role = ?", req.StaffID, model.RoleStaff).First(&staff).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Staff member not found")
		}
		return response.InternalServerError(c, "Failed to verify staff member")
	}

	allocation, err := h.curriculum.AllocateStaff(req.StaffID, uint(courseID), req.SectionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSectionNotFound):
			return response.NotFound(c, "Course section not found")
		case errors.Is(err, services.ErrDuplicateStaff):
			return response.Conflict(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to allocate staff")
	}

	return response.Created(c, allocation)
}

// ListStaff handles GET /api/v1/courses/:id/staff
func (h *SectionHandler) ListStaff(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var allocations []model.StaffCourse
	if err := h.db.Preload("Staff").Preload("Section").
		Where("course_id = ?", uint(courseID)).
		Find(&allocations).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch staff allocations")
	}

	return response.Success(c, allocations)
}

// EnrollStudent handles POST /api/v1/courses/:id/enrollments. Core
// courses are enrolled directly by admins; electives go through the
// CBCS selection flow instead.
func (h *SectionHandler) EnrollStudent(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req EnrollStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var student model.User
	if err := h.db.Where("id = ? AND role = ?", req.StudentID, model.RoleStudent).First(&student).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to verify student")
	}

	var section model.CourseSection
	if err := h.db.Where("id = ? AND course_id = ?", req.SectionID, uint(courseID)).First(&section).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course section not found")
		}
		return response.InternalServerError(c, "Failed to verify section")
	}

	var existing model.StudentCourse
	if err := h.db.Where("student_id = ? AND course_id = ?", req.StudentID, uint(courseID)).
		First(&existing).Error; err == nil {
		return response.Conflict(c, "Student is already enrolled in this course")
	}

	enrollment := model.StudentCourse{
		StudentID: req.StudentID,
		CourseID:  uint(courseID),
		SectionID: req.SectionID,
	}
	if err := h.db.Create(&enrollment).Error; err != nil {
		return response.InternalServerError(c, "Failed to enroll student")
	}

	return response.Created(c, enrollment)
}
