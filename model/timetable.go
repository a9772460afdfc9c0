package model

import (
	"time"

	"gorm.io/gorm"
)

// TimetableEntry assigns a (course, staff) pair to a weekly slot of a
// section. A section has one entry per (day, period); the service also
// rejects a staff member being in two sections in the same slot.
type TimetableEntry struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	SectionID uint           `gorm:"not null;uniqueIndex:idx_section_slot" json:"section_id"`
	DayOfWeek int            `gorm:"not null;uniqueIndex:idx_section_slot" json:"day_of_week"` // 1 = Monday .. 6 = Saturday
	Period    int            `gorm:"not null;uniqueIndex:idx_section_slot" json:"period"`      // 1..8
	CourseID  uint           `gorm:"not null;index" json:"course_id"`
	StaffID   uint           `gorm:"not null;index" json:"staff_id"`

	// Relationships
	Section CourseSection `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"section,omitempty"`
	Course  Course        `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Staff   User          `gorm:"foreignKey:StaffID;constraint:OnDelete:CASCADE" json:"staff,omitempty"`
}
