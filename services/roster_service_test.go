package services

import (
	"testing"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func rosterCell(t *testing.T, path, sheet, cell string) string {
	t.Helper()
	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer file.Close()

	value, err := file.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return value
}

func TestAppendStudentCreatesWorkbookAndBlock(t *testing.T) {
	service := NewRosterService(t.TempDir(), nil)

	bucket := &model.ElectiveBucket{SemesterID: 5, Number: 1, Name: "Professional Elective I"}
	course := &model.Course{Code: "CS8075", Title: "Data Warehousing and Data Mining"}

	require.NoError(t, service.AppendStudent(bucket, course, 7, "7376211CS101", "Arun Kumar"))

	path := service.WorkbookPath(bucket)
	assert.Equal(t, "Data Warehousing and Data Mining", rosterCell(t, path, "CS8075", "A1"))
	assert.Equal(t, "staffId:7", rosterCell(t, path, "CS8075", "A2"))
	assert.Equal(t, "Reg No", rosterCell(t, path, "CS8075", "A3"))
	assert.Equal(t, "Name", rosterCell(t, path, "CS8075", "B3"))
	assert.Equal(t, "7376211CS101", rosterCell(t, path, "CS8075", "A4"))
	assert.Equal(t, "Arun Kumar", rosterCell(t, path, "CS8075", "B4"))
}

func TestAppendStudentAppendsBelowExistingRows(t *testing.T) {
	service := NewRosterService(t.TempDir(), nil)

	bucket := &model.ElectiveBucket{SemesterID: 5, Number: 1, Name: "Professional Elective I"}
	course := &model.Course{Code: "CS8075", Title: "Data Warehousing and Data Mining"}

	require.NoError(t, service.AppendStudent(bucket, course, 7, "7376211CS101", "Arun Kumar"))
	require.NoError(t, service.AppendStudent(bucket, course, 7, "7376211CS102", "Divya R"))

	path := service.WorkbookPath(bucket)
	assert.Equal(t, "7376211CS101", rosterCell(t, path, "CS8075", "A4"))
	assert.Equal(t, "7376211CS102", rosterCell(t, path, "CS8075", "A5"))
	assert.Equal(t, "Divya R", rosterCell(t, path, "CS8075", "B5"))
}

func TestAppendStudentSeparatesStaffBlocks(t *testing.T) {
	service := NewRosterService(t.TempDir(), nil)

	bucket := &model.ElectiveBucket{SemesterID: 5, Number: 1, Name: "Professional Elective I"}
	course := &model.Course{Code: "CS8075", Title: "Data Warehousing and Data Mining"}

	require.NoError(t, service.AppendStudent(bucket, course, 7, "7376211CS101", "Arun Kumar"))
	require.NoError(t, service.AppendStudent(bucket, course, 9, "7376211CS102", "Divya R"))

	// The second staff member gets the next column pair
	path := service.WorkbookPath(bucket)
	assert.Equal(t, "staffId:9", rosterCell(t, path, "CS8075", "C2"))
	assert.Equal(t, "Reg No", rosterCell(t, path, "CS8075", "C3"))
	assert.Equal(t, "7376211CS102", rosterCell(t, path, "CS8075", "C4"))
	assert.Equal(t, "Divya R", rosterCell(t, path, "CS8075", "D4"))

	// The first block is untouched
	assert.Equal(t, "7376211CS101", rosterCell(t, path, "CS8075", "A4"))
}

func TestAppendStudentOneSheetPerCourse(t *testing.T) {
	service := NewRosterService(t.TempDir(), nil)

	bucket := &model.ElectiveBucket{SemesterID: 5, Number: 1, Name: "Professional Elective I"}
	mining := &model.Course{Code: "CS8075", Title: "Data Warehousing and Data Mining"}
	cloud := &model.Course{Code: "CS8078", Title: "Cloud Computing"}

	require.NoError(t, service.AppendStudent(bucket, mining, 7, "7376211CS101", "Arun Kumar"))
	require.NoError(t, service.AppendStudent(bucket, cloud, 9, "7376211CS102", "Divya R"))

	path := service.WorkbookPath(bucket)
	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer file.Close()

	sheets := file.GetSheetList()
	assert.Contains(t, sheets, "CS8075")
	assert.Contains(t, sheets, "CS8078")
	assert.Equal(t, "Cloud Computing", rosterCell(t, path, "CS8078", "A1"))
}

func TestWorkbookPathPerSemesterAndBucket(t *testing.T) {
	service := NewRosterService("/var/rosters", nil)

	path := service.WorkbookPath(&model.ElectiveBucket{SemesterID: 5, Number: 2})
	assert.Equal(t, "/var/rosters/roster-sem5-bucket2.xlsx", path)
}
