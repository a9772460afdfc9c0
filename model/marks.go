package model

import (
	"time"

	"gorm.io/gorm"
)

// StudentToolMark is one recorded mark per (student, tool) pair.
// The composite unique index gives the upsert its conflict target: a
// second submission overwrites the stored value, it never duplicates.
type StudentToolMark struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	StudentID uint           `gorm:"not null;uniqueIndex:idx_student_tool" json:"student_id"`
	ToolID    uint           `gorm:"not null;uniqueIndex:idx_student_tool;index" json:"tool_id"`
	Mark      float64        `gorm:"not null;default:0" json:"mark"`

	// Relationships
	Student User           `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Tool    AssessmentTool `gorm:"foreignKey:ToolID;constraint:OnDelete:CASCADE" json:"tool,omitempty"`
}
