package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBadAttendanceStatus = errors.New("attendance status must be P, A or OD")
	ErrEmptySheet          = errors.New("attendance sheet has no entries")
)

// AttendanceService marks period attendance for a course section
type AttendanceService struct {
	db *gorm.DB
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{db: db}
}

// MarkEntry is one student's status on an attendance sheet
type MarkEntry struct {
	StudentID uint   `json:"student_id" validate:"required,min=1"`
	Status    string `json:"status" validate:"required,oneof=P A OD"`
}

// MarkSheet records attendance for one (course, section, date, period)
// in a single transaction. Every entry is validated before any write:
// the staff must be allocated to the section and every student enrolled
// in it. Re-marking a slot overwrites the earlier status.
func (s *AttendanceService) MarkSheet(staffID, courseID, sectionID uint, date time.Time, period int, entries []MarkEntry) error {
	if len(entries) == 0 {
		return ErrEmptySheet
	}
	for _, e := range entries {
		switch e.Status {
		case model.AttendancePresent, model.AttendanceAbsent, model.AttendanceOnDuty:
		default:
			return ErrBadAttendanceStatus
		}
	}

	var assigned int64
	if err := s.db.Model(&model.StaffCourse{}).
		Where("staff_id = ? AND course_id = ? AND section_id = ?", staffID, courseID, sectionID).
		Count(&assigned).Error; err != nil {
		return fmt.Errorf("failed to check staff assignment: %w", err)
	}
	if assigned == 0 {
		return ErrNotAssigned
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			var enrolled int64
			if err := tx.Model(&model.StudentCourse{}).
				Where("student_id = ? AND course_id = ? AND section_id = ?", e.StudentID, courseID, sectionID).
				Count(&enrolled).Error; err != nil {
				return err
			}
			if enrolled == 0 {
				return fmt.Errorf("student %d: %w", e.StudentID, ErrNotEnrolled)
			}

			record := model.AttendanceRecord{
				StudentID: e.StudentID,
				CourseID:  courseID,
				SectionID: sectionID,
				Date:      day,
				Period:    period,
				Status:    e.Status,
				MarkedBy:  staffID,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}, {Name: "date"}, {Name: "period"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "marked_by", "updated_at"}),
			}).Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AttendanceSummary is one student's attendance standing in a course
type AttendanceSummary struct {
	StudentID  uint    `json:"student_id"`
	CourseID   uint    `json:"course_id"`
	Total      int64   `json:"total_periods"`
	Attended   int64   `json:"attended_periods"` // present + on-duty
	Percentage float64 `json:"percentage"`
}

// StudentSummary derives a student's attendance percentage for a
// course; on-duty counts as attended.
func (s *AttendanceService) StudentSummary(studentID, courseID uint) (*AttendanceSummary, error) {
	summary := &AttendanceSummary{StudentID: studentID, CourseID: courseID}

	if err := s.db.Model(&model.AttendanceRecord{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&summary.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count periods: %w", err)
	}
	if err := s.db.Model(&model.AttendanceRecord{}).
		Where("student_id = ? AND course_id = ? AND status IN ?",
			studentID, courseID, []string{model.AttendancePresent, model.AttendanceOnDuty}).
		Count(&summary.Attended).Error; err != nil {
		return nil, fmt.Errorf("failed to count attended periods: %w", err)
	}

	if summary.Total > 0 {
		summary.Percentage = Round2(float64(summary.Attended) / float64(summary.Total) * 100)
	}
	return summary, nil
}
