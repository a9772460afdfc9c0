package services

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseReportCSVLayout(t *testing.T) {
	f := newMarksFixture(t)

	require.NoError(t, f.db.Model(f.tool).Update("weightage", 60).Error)
	tool2 := createTool(t, f.db, f.outcome.ID, "Assignment 1", 40, 25)

	require.NoError(t, f.service.SubmitMark(f.staff.ID, f.student.ID, f.tool.ID, 44))
	require.NoError(t, f.service.SubmitMark(f.staff.ID, f.student.ID, tool2.ID, 22))

	export := NewExportService(f.service, nil)
	data, err := export.CourseReportCSV(f.course.ID)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header := records[0]
	assert.Equal(t, []string{
		"Reg No", "Name",
		"CO1 Quiz 1 (max 50)", "CO1 Assignment 1 (max 25)",
		"CO1",
		"THEORY Avg",
		"Final",
	}, header)

	row := records[1]
	assert.Equal(t, f.student.RegNo, row[0])
	assert.Equal(t, "44", row[2])
	assert.Equal(t, "22", row[3])
	assert.Equal(t, "88.00", row[4])
	assert.Equal(t, "88.00", row[5])
	assert.Equal(t, "88.00", row[6])
}

func TestCourseReportCSVNoMarks(t *testing.T) {
	f := newMarksFixture(t)

	data, err := NewExportService(f.service, nil).CourseReportCSV(f.course.ID)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "0", records[1][2])
	assert.Equal(t, "0.00", records[1][len(records[1])-1])
}
