package services

import (
	"errors"
	"fmt"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"gorm.io/gorm"
)

var (
	ErrBadSlot      = errors.New("day must be 1..6 and period 1..8")
	ErrSlotTaken    = errors.New("the section already has an entry in this slot")
	ErrStaffBusy    = errors.New("the staff member teaches elsewhere in this slot")
	ErrEntryMissing = errors.New("timetable entry not found")
)

const (
	maxTimetableDay    = 6
	maxTimetablePeriod = 8
)

// TimetableService places (course, staff) pairs into weekly slots of a
// section, refusing conflicting placements.
type TimetableService struct {
	db *gorm.DB
}

// NewTimetableService creates a new timetable service
func NewTimetableService(db *gorm.DB) *TimetableService {
	return &TimetableService{db: db}
}

// CreateEntry adds a slot assignment. Both conflict checks run before
// the write: the section's slot must be free, and the staff member must
// not already teach any section in the same slot. The existing entry is
// left untouched on conflict.
func (s *TimetableService) CreateEntry(sectionID uint, day, period int, courseID, staffID uint) (*model.TimetableEntry, error) {
	if day < 1 || day > maxTimetableDay || period < 1 || period > maxTimetablePeriod {
		return nil, ErrBadSlot
	}

	var section model.CourseSection
	if err := s.db.First(&section, sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to load section: %w", err)
	}

	var assigned int64
	if err := s.db.Model(&model.StaffCourse{}).
		Where("staff_id = ? AND course_id = ? AND section_id = ?", staffID, courseID, sectionID).
		Count(&assigned).Error; err != nil {
		return nil, fmt.Errorf("failed to check staff assignment: %w", err)
	}
	if assigned == 0 {
		return nil, ErrNotAssigned
	}

	var sectionClash int64
	if err := s.db.Model(&model.TimetableEntry{}).
		Where("section_id = ? AND day_of_week = ? AND period = ?", sectionID, day, period).
		Count(&sectionClash).Error; err != nil {
		return nil, fmt.Errorf("failed to check section slot: %w", err)
	}
	if sectionClash > 0 {
		return nil, ErrSlotTaken
	}

	var staffClash int64
	if err := s.db.Model(&model.TimetableEntry{}).
		Where("staff_id = ? AND day_of_week = ? AND period = ?", staffID, day, period).
		Count(&staffClash).Error; err != nil {
		return nil, fmt.Errorf("failed to check staff slot: %w", err)
	}
	if staffClash > 0 {
		return nil, ErrStaffBusy
	}

	entry := model.TimetableEntry{
		SectionID: sectionID,
		DayOfWeek: day,
		Period:    period,
		CourseID:  courseID,
		StaffID:   staffID,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create timetable entry: %w", err)
	}
	return &entry, nil
}

// DeleteEntry removes a slot assignment. The delete is hard; a
// soft-deleted row would keep occupying the unique slot index and the
// slot could never be reused.
func (s *TimetableService) DeleteEntry(entryID uint) error {
	result := s.db.Unscoped().Delete(&model.TimetableEntry{}, entryID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete timetable entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEntryMissing
	}
	return nil
}

// SectionWeek returns a section's entries ordered for display
func (s *TimetableService) SectionWeek(sectionID uint) ([]model.TimetableEntry, error) {
	var entries []model.TimetableEntry
	if err := s.db.Preload("Course").Preload("Staff").
		Where("section_id = ?", sectionID).
		Order("day_of_week ASC, period ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load timetable: %w", err)
	}
	return entries, nil
}
