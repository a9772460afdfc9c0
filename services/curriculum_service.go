package services

import (
	"errors"
	"fmt"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"gorm.io/gorm"
)

var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrSectionNotFound     = errors.New("course section not found")
	ErrDuplicateStaff      = errors.New("staff is already allocated to this course section")
	ErrCourseInOtherBucket = errors.New("course already belongs to another bucket in this semester")
)

// CurriculumService covers section numbering, staff-course allocation
// and elective-bucket membership.
type CurriculumService struct {
	db *gorm.DB
}

// NewCurriculumService creates a new curriculum service
func NewCurriculumService(db *gorm.DB) *CurriculumService {
	return &CurriculumService{db: db}
}

// CreateSection adds a section to a course. The number comes from the
// course's SectionSeq counter, incremented atomically inside the
// transaction, so two concurrent requests get distinct numbers instead
// of both scanning MAX(number) and colliding.
func (s *CurriculumService) CreateSection(courseID uint, capacity int) (*model.CourseSection, error) {
	var section model.CourseSection

	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Course{}).
			Where("id = ?", courseID).
			UpdateColumn("section_seq", gorm.Expr("section_seq + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCourseNotFound
		}

		var course model.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			return err
		}

		section = model.CourseSection{
			CourseID: courseID,
			Number:   course.SectionSeq,
			Capacity: capacity,
		}
		return tx.Create(&section).Error
	})
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// AllocateStaff assigns a staff member to a course section. The
// conflicting allocation, if any, is left untouched.
func (s *CurriculumService) AllocateStaff(staffID, courseID, sectionID uint) (*model.StaffCourse, error) {
	var section model.CourseSection
	if err := s.db.Where("id = ? AND course_id = ?", sectionID, courseID).First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to load section: %w", err)
	}

	var count int64
	if err := s.db.Model(&model.StaffCourse{}).
		Where("staff_id = ? AND course_id = ? AND section_id = ?", staffID, courseID, sectionID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing allocation: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateStaff
	}

	allocation := model.StaffCourse{StaffID: staffID, CourseID: courseID, SectionID: sectionID}
	if err := s.db.Create(&allocation).Error; err != nil {
		return nil, fmt.Errorf("failed to allocate staff: %w", err)
	}
	return &allocation, nil
}

// AddCourseToBucket places an elective course into a bucket, enforcing
// "at most one bucket per semester" across all of the semester's buckets.
func (s *CurriculumService) AddCourseToBucket(bucketID, courseID uint) (*model.BucketCourse, error) {
	var bucket model.ElectiveBucket
	if err := s.db.First(&bucket, bucketID).Error; err != nil {
		return nil, fmt.Errorf("failed to load bucket: %w", err)
	}

	var course model.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	var count int64
	if err := s.db.Model(&model.BucketCourse{}).
		Joins("JOIN elective_buckets ON elective_buckets.id = bucket_courses.bucket_id").
		Where("bucket_courses.course_id = ? AND elective_buckets.semester_id = ?", courseID, bucket.SemesterID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check bucket membership: %w", err)
	}
	if count > 0 {
		return nil, ErrCourseInOtherBucket
	}

	membership := model.BucketCourse{BucketID: bucketID, CourseID: courseID}
	if err := s.db.Create(&membership).Error; err != nil {
		return nil, fmt.Errorf("failed to add course to bucket: %w", err)
	}
	return &membership, nil
}
