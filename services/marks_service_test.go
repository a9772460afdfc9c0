package services

import (
	"testing"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type marksFixture struct {
	db      *gorm.DB
	service *MarksService
	staff   *model.User
	student *model.User
	course  *model.Course
	section *model.CourseSection
	outcome *model.CourseOutcome
	tool    *model.AssessmentTool
}

func newMarksFixture(t *testing.T) *marksFixture {
	t.Helper()
	db := newTestDB(t)

	semester := createSemester(t, db, 5)
	course := createCourse(t, db, semester.ID, "CS8501")
	section := createSection(t, db, course.ID, 1, 60)
	staff := createStaff(t, db, "staff1")
	student := createStudent(t, db, "7376211CS101")
	outcome := createOutcome(t, db, course.ID, 1, model.COTypeTheory)
	tool := createTool(t, db, outcome.ID, "Quiz 1", 100, 50)

	assignStaff(t, db, staff.ID, course.ID, section.ID)
	enrollStudent(t, db, student.ID, course.ID, section.ID)

	return &marksFixture{
		db:      db,
		service: NewMarksService(db, nil),
		staff:   staff,
		student: student,
		course:  course,
		section: section,
		outcome: outcome,
		tool:    tool,
	}
}

func TestSubmitMarkOverwritesOnResubmission(t *testing.T) {
	f := newMarksFixture(t)

	require.NoError(t, f.service.SubmitMark(f.staff.ID, f.student.ID, f.tool.ID, 40))
	require.NoError(t, f.service.SubmitMark(f.staff.ID, f.student.ID, f.tool.ID, 35))

	var records []model.StudentToolMark
	require.NoError(t, f.db.Where("student_id = ? AND tool_id = ?", f.student.ID, f.tool.ID).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, 35.0, records[0].Mark)
}

func TestSubmitMarkRejectsOutOfRange(t *testing.T) {
	f := newMarksFixture(t)

	assert.ErrorIs(t, f.service.SubmitMark(f.staff.ID, f.student.ID, f.tool.ID, 51), ErrMarkOutOfRange)
	assert.ErrorIs(t, f.service.SubmitMark(f.staff.ID, f.student.ID, f.tool.ID, -1), ErrMarkOutOfRange)

	var count int64
	require.NoError(t, f.db.Model(&model.StudentToolMark{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitMarkRejectsUnassignedStaff(t *testing.T) {
	f := newMarksFixture(t)
	other := createStaff(t, f.db, "staff2")

	assert.ErrorIs(t, f.service.SubmitMark(other.ID, f.student.ID, f.tool.ID, 30), ErrNotAssigned)
}

func TestSubmitMarkRequiresEnrollment(t *testing.T) {
	f := newMarksFixture(t)
	outsider := createStudent(t, f.db, "7376211CS199")

	assert.ErrorIs(t, f.service.SubmitMark(f.staff.ID, outsider.ID, f.tool.ID, 30), ErrNotEnrolled)
}

func TestSubmitMarkUnknownTool(t *testing.T) {
	f := newMarksFixture(t)

	assert.ErrorIs(t, f.service.SubmitMark(f.staff.ID, f.student.ID, 9999, 10), ErrToolNotFound)
}

func TestImportMarksClampsAndSkips(t *testing.T) {
	f := newMarksFixture(t)
	second := createStudent(t, f.db, "7376211CS102")
	enrollStudent(t, f.db, second.ID, f.course.ID, f.section.ID)

	summary, err := f.service.ImportMarks(f.staff.ID, f.tool.ID, []ImportRow{
		{RegNo: f.student.RegNo, Mark: 45},
		{RegNo: second.RegNo, Mark: 120}, // clamped to max 50
		{RegNo: "NO-SUCH-REG", Mark: 10}, // skipped
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 1, summary.Clamped)
	require.Len(t, summary.Skipped, 1)
	assert.Contains(t, summary.Skipped[0], "NO-SUCH-REG")

	var clamped model.StudentToolMark
	require.NoError(t, f.db.Where("student_id = ? AND tool_id = ?", second.ID, f.tool.ID).First(&clamped).Error)
	assert.Equal(t, 50.0, clamped.Mark)
}

func TestImportMarksSkipsUnenrolled(t *testing.T) {
	f := newMarksFixture(t)
	outsider := createStudent(t, f.db, "7376211CS150")

	summary, err := f.service.ImportMarks(f.staff.ID, f.tool.ID, []ImportRow{
		{RegNo: outsider.RegNo, Mark: 20},
	})
	require.NoError(t, err)

	assert.Zero(t, summary.Imported)
	require.Len(t, summary.Skipped, 1)
	assert.Contains(t, summary.Skipped[0], "not enrolled")
}

func TestCourseReportDerivesMarksAndFinal(t *testing.T) {
	f := newMarksFixture(t)

	// Second tool under the same CO: 60/40 split
	require.NoError(t, f.db.Model(&model.AssessmentTool{}).
		Where("id = ?", f.tool.ID).Update("weightage", 60).Error)
	tool2 := createTool(t, f.db, f.outcome.ID, "Assignment 1", 40, 25)

	require.NoError(t, f.service.SubmitMark(f.staff.ID, f.student.ID, f.tool.ID, 44))
	require.NoError(t, f.service.SubmitMark(f.staff.ID, f.student.ID, tool2.ID, 22))

	report, err := f.service.CourseReport(f.course.ID)
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	require.Len(t, report.Students, 1)

	row := report.Students[0]
	assert.Equal(t, f.student.RegNo, row.RegNo)
	require.Len(t, row.OutcomeMarks, 1)
	assert.Equal(t, 88.0, row.OutcomeMarks[0].Mark)
	assert.Equal(t, 88.0, row.TypeAverages[model.COTypeTheory])
	assert.Equal(t, 88.0, row.Final)
}

func TestCourseReportTreatsUnattemptedAsZero(t *testing.T) {
	f := newMarksFixture(t)

	report, err := f.service.CourseReport(f.course.ID)
	require.NoError(t, err)

	require.Len(t, report.Students, 1)
	row := report.Students[0]
	assert.Equal(t, 0.0, row.ToolMarks[f.tool.ID])
	require.Len(t, row.OutcomeMarks, 1)
	assert.Equal(t, 0.0, row.OutcomeMarks[0].Mark)
}
