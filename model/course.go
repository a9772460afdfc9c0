package model

import (
	"time"

	"gorm.io/gorm"
)

// Course categories
const (
	CategoryCore                 = "CORE"
	CategoryProfessionalElective = "PROFESSIONAL_ELECTIVE"
	CategoryOpenElective         = "OPEN_ELECTIVE"
)

// Course outcome types
const (
	COTypeTheory       = "THEORY"
	COTypePractical    = "PRACTICAL"
	COTypeExperiential = "EXPERIENTIAL"
)

// Semester represents an academic term (e.g., Semester 5 of 2025-26)
type Semester struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Number       int            `gorm:"not null" json:"number"` // 1..8
	AcademicYear string         `gorm:"type:varchar(20);not null" json:"academic_year"` // e.g., "2025-26"
	IsActive     bool           `gorm:"default:true" json:"is_active"`

	// Relationships
	Courses []Course        `gorm:"foreignKey:SemesterID;constraint:OnDelete:CASCADE" json:"courses,omitempty"`
	Buckets []ElectiveBucket `gorm:"foreignKey:SemesterID;constraint:OnDelete:CASCADE" json:"buckets,omitempty"`
}

// Course represents a subject offered in a semester.
// TheoryCount/PracticalCount/ExperientialCount form the CO partition
// configuration; outcomes are renumbered whenever the partition changes.
// SectionSeq is a per-course counter for section numbering so that two
// concurrent "add section" requests can never mint the same number.
type Course struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	SemesterID uint           `gorm:"not null;index" json:"semester_id"`
	Code       string         `gorm:"uniqueIndex;not null" json:"code"` // e.g., "CS8501"
	Title      string         `gorm:"not null" json:"title"`
	Category   string         `gorm:"type:varchar(30);not null;default:'CORE'" json:"category"`
	Credits    int            `gorm:"default:3" json:"credits"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`

	TheoryCount       int `gorm:"default:0" json:"theory_count"`
	PracticalCount    int `gorm:"default:0" json:"practical_count"`
	ExperientialCount int `gorm:"default:0" json:"experiential_count"`

	SectionSeq int `gorm:"default:0" json:"-"`

	// Relationships
	Semester Semester        `gorm:"foreignKey:SemesterID;constraint:OnDelete:CASCADE" json:"semester,omitempty"`
	Sections []CourseSection `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
	Outcomes []CourseOutcome `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"outcomes,omitempty"`
}

// CourseSection is a batch of students taking a course under one staff
type CourseSection struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID  uint           `gorm:"not null;uniqueIndex:idx_course_section_number" json:"course_id"`
	Number    int            `gorm:"not null;uniqueIndex:idx_course_section_number" json:"number"`
	Capacity  int            `gorm:"default:60" json:"capacity"`

	// Relationships
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// CourseOutcome (CO) is one assessable outcome of a course.
// Number is contiguous 1..N across the course, ordered theory block,
// then practical block, then experiential block.
type CourseOutcome struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID  uint           `gorm:"not null;index" json:"course_id"`
	Number    int            `gorm:"not null" json:"number"`
	Type      string         `gorm:"type:varchar(20);not null" json:"type"` // THEORY, PRACTICAL, EXPERIENTIAL
	Weight    float64        `gorm:"default:100" json:"weight"`             // percentage weight in the final average

	// Relationships
	Course Course           `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Tools  []AssessmentTool `gorm:"foreignKey:CourseOutcomeID;constraint:OnDelete:CASCADE" json:"tools,omitempty"`
}

// AssessmentTool is one instrument (quiz, assignment, model exam) under a CO.
// The weightages of all tools under one CO must sum to exactly 100 before
// the CO's marks are complete; that is enforced when the tool set is saved.
type AssessmentTool struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	CourseOutcomeID uint           `gorm:"not null;index" json:"course_outcome_id"`
	Name            string         `gorm:"not null" json:"name"`
	Weightage       float64        `gorm:"not null" json:"weightage"` // percentage of the CO
	MaxMarks        float64        `gorm:"not null" json:"max_marks"`

	// Relationships
	CourseOutcome CourseOutcome    `gorm:"foreignKey:CourseOutcomeID;constraint:OnDelete:CASCADE" json:"course_outcome,omitempty"`
	Marks         []StudentToolMark `gorm:"foreignKey:ToolID;constraint:OnDelete:CASCADE" json:"-"`
}
