package model

import (
	"time"

	"gorm.io/gorm"
)

// Attendance statuses
const (
	AttendancePresent = "P"
	AttendanceAbsent  = "A"
	AttendanceOnDuty  = "OD"
)

// AttendanceRecord is one student's status for one period of one day.
// Re-marking the same (student, course, date, period) overwrites.
type AttendanceRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	StudentID uint           `gorm:"not null;uniqueIndex:idx_attendance_slot" json:"student_id"`
	CourseID  uint           `gorm:"not null;uniqueIndex:idx_attendance_slot;index" json:"course_id"`
	SectionID uint           `gorm:"not null;index" json:"section_id"`
	Date      time.Time      `gorm:"not null;uniqueIndex:idx_attendance_slot" json:"date"`
	Period    int            `gorm:"not null;uniqueIndex:idx_attendance_slot" json:"period"`
	Status    string         `gorm:"type:varchar(5);not null" json:"status"` // P, A, OD
	MarkedBy  uint           `gorm:"not null" json:"marked_by"`

	// Relationships
	Student User   `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Course  Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
