package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createBucket(t *testing.T, db *gorm.DB, semesterID uint, number int) *model.ElectiveBucket {
	t.Helper()
	bucket := &model.ElectiveBucket{
		SemesterID: semesterID,
		Number:     number,
		Name:       fmt.Sprintf("Professional Elective %d", number),
	}
	require.NoError(t, db.Create(bucket).Error)
	return bucket
}

func addToBucket(t *testing.T, db *gorm.DB, bucketID, courseID uint) {
	t.Helper()
	require.NoError(t, db.Create(&model.BucketCourse{BucketID: bucketID, CourseID: courseID}).Error)
}

func createConfig(t *testing.T, db *gorm.DB, semesterID uint, cbcsType, status string) *model.CbcsConfig {
	t.Helper()
	config := &model.CbcsConfig{
		SemesterID: semesterID,
		Type:       cbcsType,
		Status:     status,
		OpensAt:    time.Now().Add(-time.Hour),
		ClosesAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(config).Error)
	return config
}

// electiveCourse is one bucket course with its section and staff,
// ready for selections and choices.
type electiveCourse struct {
	course  *model.Course
	section *model.CourseSection
	staff   *model.User
}

func createElectiveCourse(t *testing.T, db *gorm.DB, semesterID, bucketID uint, code string, capacity int) electiveCourse {
	t.Helper()
	course := createCourse(t, db, semesterID, code)
	section := createSection(t, db, course.ID, 1, capacity)
	staff := createStaff(t, db, "staff-"+code)
	assignStaff(t, db, staff.ID, course.ID, section.ID)
	addToBucket(t, db, bucketID, course.ID)
	return electiveCourse{course: course, section: section, staff: staff}
}

func TestSelectElectiveAllocatesAndEnrolls(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	ec := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 60)
	student := createStudent(t, db, "7376211CS101")
	createConfig(t, db, semester.ID, model.CbcsTypeAllocated, model.CbcsStatusOpen)

	selection, err := NewElectiveService(db, nil).SelectElective(student.ID, bucket.ID, ec.course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SelectionAllocated, selection.Status)

	var enrollment model.StudentCourse
	require.NoError(t, db.Where("student_id = ? AND course_id = ?", student.ID, ec.course.ID).
		First(&enrollment).Error)
	assert.Equal(t, ec.section.ID, enrollment.SectionID)
}

func TestSelectElectiveOverwritesPendingSelection(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	first := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 60)
	second := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8076", 60)
	student := createStudent(t, db, "7376211CS101")
	createConfig(t, db, semester.ID, model.CbcsTypeAllocated, model.CbcsStatusOpen)

	require.NoError(t, db.Create(&model.StudentElectiveSelection{
		StudentID: student.ID,
		BucketID:  bucket.ID,
		CourseID:  first.course.ID,
		Status:    model.SelectionPending,
	}).Error)

	selection, err := NewElectiveService(db, nil).SelectElective(student.ID, bucket.ID, second.course.ID)
	require.NoError(t, err)
	assert.Equal(t, second.course.ID, selection.CourseID)

	var count int64
	require.NoError(t, db.Model(&model.StudentElectiveSelection{}).
		Where("student_id = ? AND bucket_id = ?", student.ID, bucket.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count, "the pending selection is replaced, not duplicated")
}

func TestSelectElectiveRejectsSecondAllocation(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	first := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 60)
	second := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8076", 60)
	student := createStudent(t, db, "7376211CS101")
	createConfig(t, db, semester.ID, model.CbcsTypeAllocated, model.CbcsStatusOpen)

	service := NewElectiveService(db, nil)
	_, err := service.SelectElective(student.ID, bucket.ID, first.course.ID)
	require.NoError(t, err)

	_, err = service.SelectElective(student.ID, bucket.ID, second.course.ID)
	assert.ErrorIs(t, err, ErrAlreadyAllocated)
}

func TestSelectElectiveRequiresOpenRound(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	ec := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 60)
	student := createStudent(t, db, "7376211CS101")

	service := NewElectiveService(db, nil)

	_, err := service.SelectElective(student.ID, bucket.ID, ec.course.ID)
	assert.ErrorIs(t, err, ErrConfigNotFound)

	createConfig(t, db, semester.ID, model.CbcsTypeAllocated, model.CbcsStatusClosed)
	_, err = service.SelectElective(student.ID, bucket.ID, ec.course.ID)
	assert.ErrorIs(t, err, ErrRoundNotOpen)
}

func TestSelectElectiveRejectsCourseOutsideBucket(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 60)
	outside := createCourse(t, db, semester.ID, "CS8501")
	student := createStudent(t, db, "7376211CS101")
	createConfig(t, db, semester.ID, model.CbcsTypeAllocated, model.CbcsStatusOpen)

	_, err := NewElectiveService(db, nil).SelectElective(student.ID, bucket.ID, outside.ID)
	assert.ErrorIs(t, err, ErrCourseNotInBucket)
}

func TestSelectElectiveRejectsExistingEnrollment(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	ec := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 60)
	student := createStudent(t, db, "7376211CS101")
	createConfig(t, db, semester.ID, model.CbcsTypeAllocated, model.CbcsStatusOpen)
	enrollStudent(t, db, student.ID, ec.course.ID, ec.section.ID)

	_, err := NewElectiveService(db, nil).SelectElective(student.ID, bucket.ID, ec.course.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestSubmitChoicesValidatesBeforeWriting(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	ec1 := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 60)
	ec2 := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8076", 60)
	student := createStudent(t, db, "7376211CS101")
	config := createConfig(t, db, semester.ID, model.CbcsTypeOpt, model.CbcsStatusOpen)

	service := NewElectiveService(db, nil)

	// Duplicate preference order
	err := service.SubmitChoices(student.ID, config.ID, []ChoiceInput{
		{CourseID: ec1.course.ID, StaffID: ec1.staff.ID, SectionID: ec1.section.ID, PreferenceOrder: 1},
		{CourseID: ec2.course.ID, StaffID: ec2.staff.ID, SectionID: ec2.section.ID, PreferenceOrder: 1},
	})
	assert.ErrorIs(t, err, ErrBadPreferenceOrder)

	// Order beyond the list length
	err = service.SubmitChoices(student.ID, config.ID, []ChoiceInput{
		{CourseID: ec1.course.ID, StaffID: ec1.staff.ID, SectionID: ec1.section.ID, PreferenceOrder: 3},
	})
	assert.ErrorIs(t, err, ErrBadPreferenceOrder)

	// Section belongs to a different course
	err = service.SubmitChoices(student.ID, config.ID, []ChoiceInput{
		{CourseID: ec1.course.ID, StaffID: ec1.staff.ID, SectionID: ec2.section.ID, PreferenceOrder: 1},
	})
	assert.ErrorIs(t, err, ErrChoiceMismatch)

	// Staff not assigned to the section
	err = service.SubmitChoices(student.ID, config.ID, []ChoiceInput{
		{CourseID: ec1.course.ID, StaffID: ec2.staff.ID, SectionID: ec1.section.ID, PreferenceOrder: 1},
	})
	assert.ErrorIs(t, err, ErrChoiceMismatch)

	var count int64
	require.NoError(t, db.Model(&model.StudentCourseChoice{}).Count(&count).Error)
	assert.Zero(t, count, "no rejected list may leave partial rows behind")
}

func TestSubmitChoicesRejectsCourseOutsideBuckets(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	ec := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 60)
	student := createStudent(t, db, "7376211CS101")
	config := createConfig(t, db, semester.ID, model.CbcsTypeOpt, model.CbcsStatusOpen)

	// A core course with a real section and staff, but in no bucket
	core := createCourse(t, db, semester.ID, "CS8501")
	coreSection := createSection(t, db, core.ID, 1, 60)
	coreStaff := createStaff(t, db, "staff-CS8501")
	assignStaff(t, db, coreStaff.ID, core.ID, coreSection.ID)

	err := NewElectiveService(db, nil).SubmitChoices(student.ID, config.ID, []ChoiceInput{
		{CourseID: ec.course.ID, StaffID: ec.staff.ID, SectionID: ec.section.ID, PreferenceOrder: 1},
		{CourseID: core.ID, StaffID: coreStaff.ID, SectionID: coreSection.ID, PreferenceOrder: 2},
	})
	assert.ErrorIs(t, err, ErrCourseNotInBucket)

	var count int64
	require.NoError(t, db.Model(&model.StudentCourseChoice{}).Count(&count).Error)
	assert.Zero(t, count, "a list naming a non-elective course writes nothing")
}

func TestSubmitChoicesEnforcesPolicyAndWindow(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	ec := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 60)
	student := createStudent(t, db, "7376211CS101")

	service := NewElectiveService(db, nil)
	choices := []ChoiceInput{
		{CourseID: ec.course.ID, StaffID: ec.staff.ID, SectionID: ec.section.ID, PreferenceOrder: 1},
	}

	direct := createConfig(t, db, semester.ID, model.CbcsTypeAllocated, model.CbcsStatusOpen)
	assert.ErrorIs(t, service.SubmitChoices(student.ID, direct.ID, choices), ErrWrongPolicy)

	closed := createConfig(t, db, semester.ID, model.CbcsTypeOpt, model.CbcsStatusClosed)
	assert.ErrorIs(t, service.SubmitChoices(student.ID, closed.ID, choices), ErrRoundNotOpen)
}

func TestSubmitChoicesReplacesPreviousList(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	ec1 := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 60)
	ec2 := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8076", 60)
	student := createStudent(t, db, "7376211CS101")
	config := createConfig(t, db, semester.ID, model.CbcsTypeOpt, model.CbcsStatusOpen)

	service := NewElectiveService(db, nil)

	require.NoError(t, service.SubmitChoices(student.ID, config.ID, []ChoiceInput{
		{CourseID: ec1.course.ID, StaffID: ec1.staff.ID, SectionID: ec1.section.ID, PreferenceOrder: 1},
		{CourseID: ec2.course.ID, StaffID: ec2.staff.ID, SectionID: ec2.section.ID, PreferenceOrder: 2},
	}))
	require.NoError(t, service.SubmitChoices(student.ID, config.ID, []ChoiceInput{
		{CourseID: ec2.course.ID, StaffID: ec2.staff.ID, SectionID: ec2.section.ID, PreferenceOrder: 1},
	}))

	var choices []model.StudentCourseChoice
	require.NoError(t, db.Where("student_id = ? AND config_id = ?", student.ID, config.ID).
		Find(&choices).Error)
	require.Len(t, choices, 1)
	assert.Equal(t, ec2.course.ID, choices[0].CourseID)
	assert.Equal(t, 1, choices[0].PreferenceOrder)
}

func TestSubmitChoicesRecordsPendingSelection(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	ec1 := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 60)
	ec2 := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8076", 60)
	student := createStudent(t, db, "7376211CS101")
	config := createConfig(t, db, semester.ID, model.CbcsTypeOpt, model.CbcsStatusOpen)

	service := NewElectiveService(db, nil)
	require.NoError(t, service.SubmitChoices(student.ID, config.ID, []ChoiceInput{
		{CourseID: ec2.course.ID, StaffID: ec2.staff.ID, SectionID: ec2.section.ID, PreferenceOrder: 2},
		{CourseID: ec1.course.ID, StaffID: ec1.staff.ID, SectionID: ec1.section.ID, PreferenceOrder: 1},
	}))

	var selection model.StudentElectiveSelection
	require.NoError(t, db.Where("student_id = ? AND bucket_id = ?", student.ID, bucket.ID).
		First(&selection).Error)
	assert.Equal(t, model.SelectionPending, selection.Status)
	assert.Equal(t, ec1.course.ID, selection.CourseID, "the pending selection tracks the top-ranked course")

	// Resubmitting swaps the pending selection, never duplicates it
	require.NoError(t, service.SubmitChoices(student.ID, config.ID, []ChoiceInput{
		{CourseID: ec2.course.ID, StaffID: ec2.staff.ID, SectionID: ec2.section.ID, PreferenceOrder: 1},
	}))
	var selections []model.StudentElectiveSelection
	require.NoError(t, db.Where("student_id = ? AND bucket_id = ?", student.ID, bucket.ID).
		Find(&selections).Error)
	require.Len(t, selections, 1)
	assert.Equal(t, ec2.course.ID, selections[0].CourseID)
	assert.Equal(t, model.SelectionPending, selections[0].Status)
}

func TestRunAllocationPromotesPendingSelections(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	scarce := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 1)
	ec2 := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8076", 60)
	config := createConfig(t, db, semester.ID, model.CbcsTypeOpt, model.CbcsStatusOpen)

	early := createStudent(t, db, "7376211CS101")
	late := createStudent(t, db, "7376211CS102")

	service := NewElectiveService(db, nil)
	require.NoError(t, service.SubmitChoices(early.ID, config.ID, []ChoiceInput{
		{CourseID: scarce.course.ID, StaffID: scarce.staff.ID, SectionID: scarce.section.ID, PreferenceOrder: 1},
	}))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, service.SubmitChoices(late.ID, config.ID, []ChoiceInput{
		{CourseID: scarce.course.ID, StaffID: scarce.staff.ID, SectionID: scarce.section.ID, PreferenceOrder: 1},
	}))

	_, err := service.RunAllocation(config.ID)
	require.NoError(t, err)

	// The preference winner keeps the course it asked for
	var earlySelection model.StudentElectiveSelection
	require.NoError(t, db.Where("student_id = ? AND bucket_id = ?", early.ID, bucket.ID).
		First(&earlySelection).Error)
	assert.Equal(t, model.SelectionAllocated, earlySelection.Status)
	assert.Equal(t, scarce.course.ID, earlySelection.CourseID)

	// The loser's pending selection settles on the fallback course
	var lateSelection model.StudentElectiveSelection
	require.NoError(t, db.Where("student_id = ? AND bucket_id = ?", late.ID, bucket.ID).
		First(&lateSelection).Error)
	assert.Equal(t, model.SelectionAllocated, lateSelection.Status)
	assert.Equal(t, ec2.course.ID, lateSelection.CourseID)
}

func decodeRunReport(t *testing.T, run *model.AllocationRun) []StudentAllocationReport {
	t.Helper()
	var reports []StudentAllocationReport
	require.NoError(t, json.Unmarshal(run.Report, &reports))
	return reports
}

func TestRunAllocationHonoursPreferencesInSubmissionOrder(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	scarce := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 1)
	ec2 := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8076", 60)
	ec3 := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8077", 60)
	ec4 := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8078", 60)
	config := createConfig(t, db, semester.ID, model.CbcsTypeOpt, model.CbcsStatusOpen)

	early := createStudent(t, db, "7376211CS101")
	late := createStudent(t, db, "7376211CS102")

	service := NewElectiveService(db, nil)

	require.NoError(t, service.SubmitChoices(early.ID, config.ID, []ChoiceInput{
		{CourseID: scarce.course.ID, StaffID: scarce.staff.ID, SectionID: scarce.section.ID, PreferenceOrder: 1},
		{CourseID: ec2.course.ID, StaffID: ec2.staff.ID, SectionID: ec2.section.ID, PreferenceOrder: 2},
	}))
	// Distinct submission timestamps decide the FCFS order
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, service.SubmitChoices(late.ID, config.ID, []ChoiceInput{
		{CourseID: scarce.course.ID, StaffID: scarce.staff.ID, SectionID: scarce.section.ID, PreferenceOrder: 1},
		{CourseID: ec3.course.ID, StaffID: ec3.staff.ID, SectionID: ec3.section.ID, PreferenceOrder: 2},
	}))

	run, err := service.RunAllocation(config.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", run.Status)
	require.NotNil(t, run.CompletedAt)

	reports := decodeRunReport(t, run)
	require.Len(t, reports, 2)
	assert.Equal(t, early.ID, reports[0].StudentID)
	assert.Equal(t, late.ID, reports[1].StudentID)

	// The earlier submitter takes the single seat
	var seatHolder model.StudentCourse
	require.NoError(t, db.Where("course_id = ?", scarce.course.ID).First(&seatHolder).Error)
	assert.Equal(t, early.ID, seatHolder.StudentID)

	require.NotEmpty(t, reports[1].Skipped)
	assert.Equal(t, scarce.course.ID, reports[1].Skipped[0].CourseID)
	assert.Equal(t, "section full", reports[1].Skipped[0].Reason)

	// Both end up with every pool course they could hold: 4 and 3
	var earlyCount, lateCount int64
	require.NoError(t, db.Model(&model.StudentCourse{}).Where("student_id = ?", early.ID).Count(&earlyCount).Error)
	require.NoError(t, db.Model(&model.StudentCourse{}).Where("student_id = ?", late.ID).Count(&lateCount).Error)
	assert.EqualValues(t, 4, earlyCount)
	assert.EqualValues(t, 3, lateCount)

	// ec4 was nobody's preference; it arrives via the fallback fill
	hasFallback := false
	for _, outcome := range reports[0].Allocated {
		if outcome.CourseID == ec4.course.ID {
			hasFallback = true
			assert.Equal(t, "fallback", outcome.Via)
		}
	}
	assert.True(t, hasFallback)

	var after model.CbcsConfig
	require.NoError(t, db.First(&after, config.ID).Error)
	assert.Equal(t, model.CbcsStatusCompleted, after.Status)
}

func TestRunAllocationUsesOnlyTopThreePreferences(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	var courses []electiveCourse
	for i := 0; i < 4; i++ {
		courses = append(courses, createElectiveCourse(t, db, semester.ID, bucket.ID,
			fmt.Sprintf("CS807%d", i+5), 60))
	}
	config := createConfig(t, db, semester.ID, model.CbcsTypeOpt, model.CbcsStatusOpen)
	student := createStudent(t, db, "7376211CS101")

	service := NewElectiveService(db, nil)

	var choices []ChoiceInput
	for i, ec := range courses {
		choices = append(choices, ChoiceInput{
			CourseID:        ec.course.ID,
			StaffID:         ec.staff.ID,
			SectionID:       ec.section.ID,
			PreferenceOrder: i + 1,
		})
	}
	require.NoError(t, service.SubmitChoices(student.ID, config.ID, choices))

	run, err := service.RunAllocation(config.ID)
	require.NoError(t, err)

	reports := decodeRunReport(t, run)
	require.Len(t, reports, 1)

	via := make(map[uint]string)
	for _, outcome := range reports[0].Allocated {
		via[outcome.CourseID] = outcome.Via
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, "preference", via[courses[i].course.ID])
	}
	// The fourth preference is outside the top-3 window
	assert.Equal(t, "fallback", via[courses[3].course.ID])
}

func TestRunAllocationStopsAtQuota(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	var courses []electiveCourse
	for i := 0; i < 8; i++ {
		courses = append(courses, createElectiveCourse(t, db, semester.ID, bucket.ID,
			fmt.Sprintf("CS80%d", 70+i), 60))
	}
	config := createConfig(t, db, semester.ID, model.CbcsTypeOpt, model.CbcsStatusOpen)
	student := createStudent(t, db, "7376211CS101")

	service := NewElectiveService(db, nil)
	require.NoError(t, service.SubmitChoices(student.ID, config.ID, []ChoiceInput{
		{CourseID: courses[0].course.ID, StaffID: courses[0].staff.ID,
			SectionID: courses[0].section.ID, PreferenceOrder: 1},
	}))

	_, err := service.RunAllocation(config.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.StudentCourse{}).Where("student_id = ?", student.ID).Count(&count).Error)
	assert.EqualValues(t, 6, count)
}

func TestRunAllocationRejectsCompletedConfig(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	bucket := createBucket(t, db, semester.ID, 1)
	ec := createElectiveCourse(t, db, semester.ID, bucket.ID, "CS8075", 60)
	config := createConfig(t, db, semester.ID, model.CbcsTypeOpt, model.CbcsStatusOpen)
	student := createStudent(t, db, "7376211CS101")

	service := NewElectiveService(db, nil)
	require.NoError(t, service.SubmitChoices(student.ID, config.ID, []ChoiceInput{
		{CourseID: ec.course.ID, StaffID: ec.staff.ID, SectionID: ec.section.ID, PreferenceOrder: 1},
	}))

	_, err := service.RunAllocation(config.ID)
	require.NoError(t, err)

	_, err = service.RunAllocation(config.ID)
	assert.ErrorIs(t, err, ErrRunAlreadyDone)
}

func TestRunAllocationRejectsDirectPolicy(t *testing.T) {
	db := newTestDB(t)
	semester := createSemester(t, db, 5)
	config := createConfig(t, db, semester.ID, model.CbcsTypeAllocated, model.CbcsStatusOpen)

	_, err := NewElectiveService(db, nil).RunAllocation(config.ID)
	assert.ErrorIs(t, err, ErrWrongPolicy)
}
