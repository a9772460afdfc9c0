package services

import (
	"testing"
	"time"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type attendanceFixture struct {
	db      *gorm.DB
	service *AttendanceService
	staff   *model.User
	course  *model.Course
	section *model.CourseSection
	student *model.User
}

func newAttendanceFixture(t *testing.T) *attendanceFixture {
	t.Helper()
	db := newTestDB(t)

	semester := createSemester(t, db, 5)
	course := createCourse(t, db, semester.ID, "CS8501")
	section := createSection(t, db, course.ID, 1, 60)
	staff := createStaff(t, db, "staff1")
	student := createStudent(t, db, "7376211CS101")
	assignStaff(t, db, staff.ID, course.ID, section.ID)
	enrollStudent(t, db, student.ID, course.ID, section.ID)

	return &attendanceFixture{
		db:      db,
		service: NewAttendanceService(db),
		staff:   staff,
		course:  course,
		section: section,
		student: student,
	}
}

func TestMarkSheetRecordsStatuses(t *testing.T) {
	f := newAttendanceFixture(t)
	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	err := f.service.MarkSheet(f.staff.ID, f.course.ID, f.section.ID, day, 1, []MarkEntry{
		{StudentID: f.student.ID, Status: model.AttendancePresent},
	})
	require.NoError(t, err)

	var record model.AttendanceRecord
	require.NoError(t, f.db.Where("student_id = ?", f.student.ID).First(&record).Error)
	assert.Equal(t, model.AttendancePresent, record.Status)
	assert.Equal(t, 1, record.Period)
	assert.Equal(t, f.staff.ID, record.MarkedBy)
}

func TestMarkSheetOverwritesOnRemark(t *testing.T) {
	f := newAttendanceFixture(t)
	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, f.service.MarkSheet(f.staff.ID, f.course.ID, f.section.ID, day, 1, []MarkEntry{
		{StudentID: f.student.ID, Status: model.AttendanceAbsent},
	}))
	require.NoError(t, f.service.MarkSheet(f.staff.ID, f.course.ID, f.section.ID, day, 1, []MarkEntry{
		{StudentID: f.student.ID, Status: model.AttendancePresent},
	}))

	var records []model.AttendanceRecord
	require.NoError(t, f.db.Where("student_id = ?", f.student.ID).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, model.AttendancePresent, records[0].Status)
}

func TestMarkSheetRejectsUnknownStatus(t *testing.T) {
	f := newAttendanceFixture(t)
	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	err := f.service.MarkSheet(f.staff.ID, f.course.ID, f.section.ID, day, 1, []MarkEntry{
		{StudentID: f.student.ID, Status: "L"},
	})
	assert.ErrorIs(t, err, ErrBadAttendanceStatus)
}

func TestMarkSheetRejectsEmptySheet(t *testing.T) {
	f := newAttendanceFixture(t)

	err := f.service.MarkSheet(f.staff.ID, f.course.ID, f.section.ID, time.Now(), 1, nil)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestMarkSheetRequiresStaffAssignment(t *testing.T) {
	f := newAttendanceFixture(t)
	other := createStaff(t, f.db, "staff2")

	err := f.service.MarkSheet(other.ID, f.course.ID, f.section.ID, time.Now(), 1, []MarkEntry{
		{StudentID: f.student.ID, Status: model.AttendancePresent},
	})
	assert.ErrorIs(t, err, ErrNotAssigned)
}

func TestMarkSheetRejectsUnenrolledStudent(t *testing.T) {
	f := newAttendanceFixture(t)
	outsider := createStudent(t, f.db, "7376211CS199")

	err := f.service.MarkSheet(f.staff.ID, f.course.ID, f.section.ID, time.Now(), 1, []MarkEntry{
		{StudentID: f.student.ID, Status: model.AttendancePresent},
		{StudentID: outsider.ID, Status: model.AttendancePresent},
	})
	assert.ErrorIs(t, err, ErrNotEnrolled)

	// The whole sheet is rolled back, including the valid entry
	var count int64
	require.NoError(t, f.db.Model(&model.AttendanceRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStudentSummaryCountsOnDutyAsAttended(t *testing.T) {
	f := newAttendanceFixture(t)
	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	statuses := []string{model.AttendancePresent, model.AttendanceAbsent, model.AttendanceOnDuty}
	for i, status := range statuses {
		require.NoError(t, f.service.MarkSheet(f.staff.ID, f.course.ID, f.section.ID, day, i+1, []MarkEntry{
			{StudentID: f.student.ID, Status: status},
		}))
	}

	summary, err := f.service.StudentSummary(f.student.ID, f.course.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.Total)
	assert.EqualValues(t, 2, summary.Attended)
	assert.Equal(t, 66.67, summary.Percentage)
}

func TestStudentSummaryEmpty(t *testing.T) {
	f := newAttendanceFixture(t)

	summary, err := f.service.StudentSummary(f.student.ID, f.course.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Equal(t, 0.0, summary.Percentage)
}
