package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBucketNotFound     = errors.New("elective bucket not found")
	ErrCourseNotInBucket  = errors.New("course does not belong to this bucket")
	ErrAlreadyAllocated   = errors.New("an allocated selection already exists for this bucket")
	ErrAlreadyEnrolled    = errors.New("student is already enrolled in this course")
	ErrNoSection          = errors.New("course has no section to enroll into")
	ErrConfigNotFound     = errors.New("CBCS configuration not found")
	ErrWrongPolicy        = errors.New("operation does not match the CBCS configuration's policy")
	ErrRoundNotOpen       = errors.New("the CBCS round is not open")
	ErrRunAlreadyDone     = errors.New("allocation has already been completed for this configuration")
	ErrTooManyPreferences = errors.New("too many ranked preferences")
	ErrBadPreferenceOrder = errors.New("preference orders must be 1..n without repeats")
	ErrChoiceMismatch     = errors.New("choice section/staff does not match the course")
)

const (
	// Top-ranked preferences honoured before the fallback fill
	topPreferenceCount = 3
	// Total elective courses a student ends an OPT run with
	electiveQuota = 6
	// Maximum ranked preferences a student may submit
	maxPreferences = 6
)

// ElectiveService is the elective allocation engine. It implements the
// direct ("allocated") policy and the FCFS ranked-preference ("opt")
// policy of a CBCS configuration.
type ElectiveService struct {
	db     *gorm.DB
	roster *RosterService // optional; the roster workbook is skipped when nil
}

// NewElectiveService creates a new elective service
func NewElectiveService(db *gorm.DB, roster *RosterService) *ElectiveService {
	return &ElectiveService{db: db, roster: roster}
}

// SelectElective handles the direct policy: one chosen course per
// bucket, allocated immediately and enrolled into the course's first
// section. A pending selection for the same bucket is overwritten (a
// change of mind); an allocated one is a conflict. No capacity check is
// performed on this path.
func (s *ElectiveService) SelectElective(studentID, bucketID, courseID uint) (*model.StudentElectiveSelection, error) {
	var bucket model.ElectiveBucket
	if err := s.db.First(&bucket, bucketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBucketNotFound
		}
		return nil, fmt.Errorf("failed to load bucket: %w", err)
	}

	if _, err := s.openConfig(bucket.SemesterID, model.CbcsTypeAllocated); err != nil {
		return nil, err
	}

	var membership model.BucketCourse
	if err := s.db.Where("bucket_id = ? AND course_id = ?", bucketID, courseID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotInBucket
		}
		return nil, fmt.Errorf("failed to check bucket membership: %w", err)
	}

	// App-level pre-check; the (student, bucket) unique index backs it up
	var existing model.StudentElectiveSelection
	hasExisting := false
	if err := s.db.Where("student_id = ? AND bucket_id = ?", studentID, bucketID).
		First(&existing).Error; err == nil {
		if existing.Status == model.SelectionAllocated {
			return nil, ErrAlreadyAllocated
		}
		hasExisting = true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing selection: %w", err)
	}

	var enrolled int64
	if err := s.db.Model(&model.StudentCourse{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&enrolled).Error; err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if enrolled > 0 {
		return nil, ErrAlreadyEnrolled
	}

	var section model.CourseSection
	if err := s.db.Where("course_id = ?", courseID).Order("number ASC").
		First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSection
		}
		return nil, fmt.Errorf("failed to load section: %w", err)
	}

	selection := model.StudentElectiveSelection{
		StudentID: studentID,
		BucketID:  bucketID,
		CourseID:  courseID,
		Status:    model.SelectionAllocated,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if hasExisting {
			if err := tx.Model(&model.StudentElectiveSelection{}).
				Where("id = ?", existing.ID).
				Updates(map[string]interface{}{
					"course_id": courseID,
					"status":    model.SelectionAllocated,
				}).Error; err != nil {
				return err
			}
			selection.ID = existing.ID
		} else {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "student_id"}, {Name: "bucket_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"course_id", "status", "updated_at"}),
			}).Create(&selection).Error; err != nil {
				return err
			}
		}

		enrollment := model.StudentCourse{StudentID: studentID, CourseID: courseID, SectionID: section.ID}
		return tx.Create(&enrollment).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record selection: %w", err)
	}

	s.appendToRoster(&bucket, courseID, section.ID, studentID)
	return &selection, nil
}

// appendToRoster is a best-effort side-effect: a roster failure is
// logged, it never undoes a committed selection.
func (s *ElectiveService) appendToRoster(bucket *model.ElectiveBucket, courseID, sectionID, studentID uint) {
	if s.roster == nil {
		return
	}

	var course model.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		log.Printf("elective: roster skipped, failed to load course %d: %v", courseID, err)
		return
	}
	var student model.User
	if err := s.db.First(&student, studentID).Error; err != nil {
		log.Printf("elective: roster skipped, failed to load student %d: %v", studentID, err)
		return
	}

	var assignment model.StaffCourse
	if err := s.db.Where("course_id = ? AND section_id = ?", courseID, sectionID).
		Order("id ASC").First(&assignment).Error; err != nil {
		log.Printf("elective: roster skipped, no staff allocated to course %d section %d", courseID, sectionID)
		return
	}

	if err := s.roster.AppendStudent(bucket, &course, assignment.StaffID, student.RegNo, student.Name); err != nil {
		log.Printf("elective: roster append failed for student %s: %v", student.RegNo, err)
	}
}

// ChoiceInput is one ranked preference under the OPT policy
type ChoiceInput struct {
	CourseID        uint `json:"course_id" validate:"required,min=1"`
	StaffID         uint `json:"staff_id" validate:"required,min=1"`
	SectionID       uint `json:"section_id" validate:"required,min=1"`
	PreferenceOrder int  `json:"preference_order" validate:"required,min=1,max=6"`
}

// SubmitChoices replaces a student's ranked preference list for an OPT
// round. The whole list is validated before any write; resubmitting
// replaces the previous list atomically.
func (s *ElectiveService) SubmitChoices(studentID, configID uint, choices []ChoiceInput) error {
	if len(choices) > maxPreferences {
		return ErrTooManyPreferences
	}

	var config model.CbcsConfig
	if err := s.db.First(&config, configID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConfigNotFound
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	if config.Type != model.CbcsTypeOpt {
		return ErrWrongPolicy
	}
	if config.Status != model.CbcsStatusOpen {
		return ErrRoundNotOpen
	}

	bucketByCourse, err := s.bucketMembership(config.SemesterID)
	if err != nil {
		return err
	}

	seenOrder := make(map[int]bool)
	seenCourse := make(map[uint]bool)
	for _, c := range choices {
		if c.PreferenceOrder < 1 || c.PreferenceOrder > len(choices) || seenOrder[c.PreferenceOrder] {
			return ErrBadPreferenceOrder
		}
		seenOrder[c.PreferenceOrder] = true
		if seenCourse[c.CourseID] {
			return ErrBadPreferenceOrder
		}
		seenCourse[c.CourseID] = true

		// Only courses in the round's elective buckets are rankable
		if _, ok := bucketByCourse[c.CourseID]; !ok {
			return ErrCourseNotInBucket
		}

		var section model.CourseSection
		if err := s.db.Where("id = ? AND course_id = ?", c.SectionID, c.CourseID).
			First(&section).Error; err != nil {
			return ErrChoiceMismatch
		}
		var assigned int64
		if err := s.db.Model(&model.StaffCourse{}).
			Where("staff_id = ? AND course_id = ? AND section_id = ?", c.StaffID, c.CourseID, c.SectionID).
			Count(&assigned).Error; err != nil {
			return fmt.Errorf("failed to check staff assignment: %w", err)
		}
		if assigned == 0 {
			return ErrChoiceMismatch
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Hard delete; a soft-deleted row would still occupy the unique
		// (student, config, order) index and block the resubmission
		if err := tx.Unscoped().Where("student_id = ? AND config_id = ?", studentID, configID).
			Delete(&model.StudentCourseChoice{}).Error; err != nil {
			return err
		}
		for _, c := range choices {
			choice := model.StudentCourseChoice{
				StudentID:       studentID,
				ConfigID:        configID,
				CourseID:        c.CourseID,
				StaffID:         c.StaffID,
				SectionID:       c.SectionID,
				PreferenceOrder: c.PreferenceOrder,
			}
			if err := tx.Create(&choice).Error; err != nil {
				return err
			}
		}
		return s.refreshPendingSelections(tx, studentID, choices, bucketByCourse)
	})
}

// refreshPendingSelections mirrors a submitted choice list as pending
// selections: one per bucket, carrying the student's top-ranked course
// in that bucket. Allocated selections are never touched; the run
// promotes pending ones when it enrolls.
func (s *ElectiveService) refreshPendingSelections(tx *gorm.DB, studentID uint, choices []ChoiceInput, bucketByCourse map[uint]uint) error {
	topByBucket := make(map[uint]uint) // bucket -> top-ranked course
	bestOrder := make(map[uint]int)
	var bucketIDs []uint
	for _, c := range choices {
		bucketID := bucketByCourse[c.CourseID]
		if order, ok := bestOrder[bucketID]; !ok || c.PreferenceOrder < order {
			if !ok {
				bucketIDs = append(bucketIDs, bucketID)
			}
			bestOrder[bucketID] = c.PreferenceOrder
			topByBucket[bucketID] = c.CourseID
		}
	}

	// Replace the student's pending rows for these buckets wholesale;
	// hard delete so the (student, bucket) unique index stays free
	if err := tx.Unscoped().
		Where("student_id = ? AND bucket_id IN ? AND status = ?",
			studentID, bucketIDs, model.SelectionPending).
		Delete(&model.StudentElectiveSelection{}).Error; err != nil {
		return err
	}

	for _, bucketID := range bucketIDs {
		var allocated int64
		if err := tx.Model(&model.StudentElectiveSelection{}).
			Where("student_id = ? AND bucket_id = ? AND status = ?",
				studentID, bucketID, model.SelectionAllocated).
			Count(&allocated).Error; err != nil {
			return err
		}
		if allocated > 0 {
			continue
		}
		selection := model.StudentElectiveSelection{
			StudentID: studentID,
			BucketID:  bucketID,
			CourseID:  topByBucket[bucketID],
			Status:    model.SelectionPending,
		}
		if err := tx.Create(&selection).Error; err != nil {
			return err
		}
	}
	return nil
}

// bucketMembership maps every elective course of a semester to its
// bucket.
func (s *ElectiveService) bucketMembership(semesterID uint) (map[uint]uint, error) {
	type membershipRow struct {
		CourseID uint
		BucketID uint
	}
	var rows []membershipRow
	if err := s.db.Model(&model.BucketCourse{}).
		Select("bucket_courses.course_id AS course_id, bucket_courses.bucket_id AS bucket_id").
		Joins("JOIN elective_buckets ON elective_buckets.id = bucket_courses.bucket_id").
		Where("elective_buckets.semester_id = ?", semesterID).
		Order("bucket_courses.course_id ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load bucket membership: %w", err)
	}

	membership := make(map[uint]uint, len(rows))
	for _, row := range rows {
		membership[row.CourseID] = row.BucketID
	}
	return membership, nil
}

// AllocationOutcome is one course a student received in a run
type AllocationOutcome struct {
	CourseID  uint   `json:"course_id"`
	SectionID uint   `json:"section_id"`
	Via       string `json:"via"` // preference, fallback
}

// AllocationSkip is one preference that could not be honoured
type AllocationSkip struct {
	CourseID uint   `json:"course_id"`
	Reason   string `json:"reason"`
}

// StudentAllocationReport is the per-student outcome of a run
type StudentAllocationReport struct {
	StudentID uint                `json:"student_id"`
	RegNo     string              `json:"reg_no"`
	Allocated []AllocationOutcome `json:"allocated"`
	Skipped   []AllocationSkip    `json:"skipped,omitempty"`
}

// RunAllocation executes the FCFS batch for an OPT configuration in a
// single transaction: students in order of their earliest submission,
// top-3 preferences first, then a fallback fill from the round's
// bucket courses up to the quota of 6. Every insert is capacity
// checked; a full section becomes a per-student skip in the report, a
// database failure aborts the whole batch.
func (s *ElectiveService) RunAllocation(configID uint) (*model.AllocationRun, error) {
	var config model.CbcsConfig
	if err := s.db.First(&config, configID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if config.Type != model.CbcsTypeOpt {
		return nil, ErrWrongPolicy
	}
	if config.Status == model.CbcsStatusCompleted {
		return nil, ErrRunAlreadyDone
	}

	run := &model.AllocationRun{
		ConfigID:  configID,
		RunID:     uuid.New().String(),
		Status:    "started",
		StartedAt: time.Now(),
	}

	bucketByCourse, err := s.bucketMembership(config.SemesterID)
	if err != nil {
		return nil, err
	}

	// Fallback pool: every course in the round's buckets
	poolCourseIDs := make([]uint, 0, len(bucketByCourse))
	for courseID := range bucketByCourse {
		poolCourseIDs = append(poolCourseIDs, courseID)
	}
	sort.Slice(poolCourseIDs, func(i, j int) bool { return poolCourseIDs[i] < poolCourseIDs[j] })

	var reports []StudentAllocationReport

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}

		// Students in FCFS order of their earliest choice submission
		type studentRow struct {
			StudentID uint
		}
		var students []studentRow
		if err := tx.Model(&model.StudentCourseChoice{}).
			Select("student_id").
			Where("config_id = ?", configID).
			Group("student_id").
			Order("MIN(created_at) ASC").
			Scan(&students).Error; err != nil {
			return err
		}

		for _, st := range students {
			var student model.User
			if err := tx.First(&student, st.StudentID).Error; err != nil {
				return err
			}
			report := StudentAllocationReport{StudentID: st.StudentID, RegNo: student.RegNo}

			held := make(map[uint]bool)
			var heldCount int
			if len(poolCourseIDs) > 0 {
				var enrollments []model.StudentCourse
				if err := tx.Where("student_id = ? AND course_id IN ?", st.StudentID, poolCourseIDs).
					Find(&enrollments).Error; err != nil {
					return err
				}
				for _, e := range enrollments {
					held[e.CourseID] = true
				}
				heldCount = len(enrollments)
			}

			var choices []model.StudentCourseChoice
			if err := tx.Where("student_id = ? AND config_id = ?", st.StudentID, configID).
				Order("preference_order ASC").
				Limit(topPreferenceCount).
				Find(&choices).Error; err != nil {
				return err
			}

			for _, choice := range choices {
				if held[choice.CourseID] {
					report.Skipped = append(report.Skipped, AllocationSkip{
						CourseID: choice.CourseID, Reason: "already enrolled",
					})
					continue
				}
				ok, err := s.enrollIfSeatFree(tx, st.StudentID, choice.CourseID, choice.SectionID)
				if err != nil {
					return err
				}
				if !ok {
					report.Skipped = append(report.Skipped, AllocationSkip{
						CourseID: choice.CourseID, Reason: "section full",
					})
					continue
				}
				if err := s.markAllocated(tx, st.StudentID, bucketByCourse[choice.CourseID], choice.CourseID); err != nil {
					return err
				}
				held[choice.CourseID] = true
				heldCount++
				report.Allocated = append(report.Allocated, AllocationOutcome{
					CourseID: choice.CourseID, SectionID: choice.SectionID, Via: "preference",
				})
			}

			// Fallback fill up to the quota
			for _, courseID := range poolCourseIDs {
				if heldCount >= electiveQuota {
					break
				}
				if held[courseID] {
					continue
				}
				sectionID, ok, err := s.enrollAnySection(tx, st.StudentID, courseID)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				if err := s.markAllocated(tx, st.StudentID, bucketByCourse[courseID], courseID); err != nil {
					return err
				}
				held[courseID] = true
				heldCount++
				report.Allocated = append(report.Allocated, AllocationOutcome{
					CourseID: courseID, SectionID: sectionID, Via: "fallback",
				})
			}

			reports = append(reports, report)
		}

		reportJSON, err := json.Marshal(reports)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := tx.Model(&model.AllocationRun{}).Where("id = ?", run.ID).Updates(map[string]interface{}{
			"status":       "completed",
			"completed_at": now,
			"report":       reportJSON,
		}).Error; err != nil {
			return err
		}
		run.Status = "completed"
		run.CompletedAt = &now
		run.Report = reportJSON

		return tx.Model(&model.CbcsConfig{}).
			Where("id = ?", configID).
			Update("status", model.CbcsStatusCompleted).Error
	})
	if err != nil {
		return nil, fmt.Errorf("allocation run failed: %w", err)
	}

	return run, nil
}

// markAllocated settles the student's selection for a bucket after a
// successful enrollment: a pending selection is promoted to the course
// actually received, a missing one is created, an allocated one (an
// earlier preference win in the same bucket) is left alone.
func (s *ElectiveService) markAllocated(tx *gorm.DB, studentID, bucketID, courseID uint) error {
	var existing model.StudentElectiveSelection
	err := tx.Where("student_id = ? AND bucket_id = ?", studentID, bucketID).
		First(&existing).Error
	switch {
	case err == nil:
		if existing.Status == model.SelectionAllocated {
			return nil
		}
		return tx.Model(&model.StudentElectiveSelection{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"course_id": courseID,
				"status":    model.SelectionAllocated,
			}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		selection := model.StudentElectiveSelection{
			StudentID: studentID,
			BucketID:  bucketID,
			CourseID:  courseID,
			Status:    model.SelectionAllocated,
		}
		return tx.Create(&selection).Error
	default:
		return err
	}
}

// enrollIfSeatFree enrolls the student into the section only when a
// seat is free. The seat count and the insert share the run's
// transaction, so the batch can never overcommit a section.
func (s *ElectiveService) enrollIfSeatFree(tx *gorm.DB, studentID, courseID, sectionID uint) (bool, error) {
	var section model.CourseSection
	if err := tx.First(&section, sectionID).Error; err != nil {
		return false, err
	}

	var taken int64
	if err := tx.Model(&model.StudentCourse{}).
		Where("section_id = ?", sectionID).
		Count(&taken).Error; err != nil {
		return false, err
	}
	if section.Capacity > 0 && taken >= int64(section.Capacity) {
		return false, nil
	}

	enrollment := model.StudentCourse{StudentID: studentID, CourseID: courseID, SectionID: sectionID}
	if err := tx.Create(&enrollment).Error; err != nil {
		return false, err
	}
	return true, nil
}

// enrollAnySection tries the course's sections in number order and
// takes the first free seat.
func (s *ElectiveService) enrollAnySection(tx *gorm.DB, studentID, courseID uint) (uint, bool, error) {
	var sections []model.CourseSection
	if err := tx.Where("course_id = ?", courseID).Order("number ASC").Find(&sections).Error; err != nil {
		return 0, false, err
	}
	for _, section := range sections {
		ok, err := s.enrollIfSeatFree(tx, studentID, courseID, section.ID)
		if err != nil {
			return 0, false, err
		}
		if ok {
			return section.ID, true, nil
		}
	}
	return 0, false, nil
}

func (s *ElectiveService) openConfig(semesterID uint, policyType string) (*model.CbcsConfig, error) {
	var config model.CbcsConfig
	if err := s.db.Where("semester_id = ? AND type = ?", semesterID, policyType).
		Order("created_at DESC").First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if config.Status != model.CbcsStatusOpen {
		return nil, ErrRoundNotOpen
	}
	return &config, nil
}
