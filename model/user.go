package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleStudent = "student"
)

// User represents a registered user (admin, staff or student)
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"` // admin, staff, student
	RegNo        string         `gorm:"type:varchar(30);index" json:"reg_no"`           // college register number (students)
	Department   string         `gorm:"type:varchar(100)" json:"department"`
	Semester     int            `gorm:"default:0" json:"semester"` // current semester number (students)
	TokenVersion int            `gorm:"default:0" json:"-"`        // Increment to invalidate all user tokens

	// Relationships
	StaffCourses   []StaffCourse       `gorm:"foreignKey:StaffID;constraint:OnDelete:CASCADE" json:"-"`
	Enrollments    []StudentCourse     `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// StaffCourse records that a staff member teaches a course section.
// Every mark/attendance write is gated on one of these rows existing.
type StaffCourse struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	StaffID   uint           `gorm:"not null;uniqueIndex:idx_staff_course_section" json:"staff_id"`
	CourseID  uint           `gorm:"not null;uniqueIndex:idx_staff_course_section;index" json:"course_id"`
	SectionID uint           `gorm:"not null;uniqueIndex:idx_staff_course_section" json:"section_id"`

	// Relationships
	Staff   User          `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	Course  Course        `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Section CourseSection `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"section,omitempty"`
}
