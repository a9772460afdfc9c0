package model

import (
	"time"

	"gorm.io/gorm"
)

// StudentCourse is the enrollment record: the single authority for
// "who is taking what, in which section". Both manual elective
// allocation and the FCFS run write here, and attendance/marks read it.
type StudentCourse struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	StudentID uint           `gorm:"not null;uniqueIndex:idx_student_course" json:"student_id"`
	CourseID  uint           `gorm:"not null;uniqueIndex:idx_student_course;index" json:"course_id"`
	SectionID uint           `gorm:"not null;index" json:"section_id"`

	// Relationships
	Student User          `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Course  Course        `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Section CourseSection `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"section,omitempty"`
}
