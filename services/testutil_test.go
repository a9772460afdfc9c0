package services

import (
	"fmt"
	"testing"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory SQLite database and migrates
// every model the services touch.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every session on the same memory DB
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.StaffCourse{},
		&model.Semester{},
		&model.Course{},
		&model.CourseSection{},
		&model.CourseOutcome{},
		&model.AssessmentTool{},
		&model.StudentCourse{},
		&model.StudentToolMark{},
		&model.CbcsConfig{},
		&model.ElectiveBucket{},
		&model.BucketCourse{},
		&model.StudentElectiveSelection{},
		&model.StudentCourseChoice{},
		&model.AllocationRun{},
		&model.AttendanceRecord{},
		&model.TimetableEntry{},
	))

	return db
}

func createSemester(t *testing.T, db *gorm.DB, number int) *model.Semester {
	t.Helper()
	semester := &model.Semester{Number: number, AcademicYear: "2025-26", IsActive: true}
	require.NoError(t, db.Create(semester).Error)
	return semester
}

func createCourse(t *testing.T, db *gorm.DB, semesterID uint, code string) *model.Course {
	t.Helper()
	course := &model.Course{
		SemesterID: semesterID,
		Code:       code,
		Title:      "Course " + code,
		Category:   model.CategoryCore,
		Credits:    3,
		IsActive:   true,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func createSection(t *testing.T, db *gorm.DB, courseID uint, number, capacity int) *model.CourseSection {
	t.Helper()
	section := &model.CourseSection{CourseID: courseID, Number: number, Capacity: capacity}
	require.NoError(t, db.Create(section).Error)
	return section
}

func createStudent(t *testing.T, db *gorm.DB, regNo string) *model.User {
	t.Helper()
	student := &model.User{
		Email:        regNo + "@college.test",
		PasswordHash: "x",
		Name:         "Student " + regNo,
		Role:         model.RoleStudent,
		RegNo:        regNo,
		Semester:     5,
	}
	require.NoError(t, db.Create(student).Error)
	return student
}

func createStaff(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	staff := &model.User{
		Email:        name + "@college.test",
		PasswordHash: "x",
		Name:         name,
		Role:         model.RoleStaff,
	}
	require.NoError(t, db.Create(staff).Error)
	return staff
}

func assignStaff(t *testing.T, db *gorm.DB, staffID, courseID, sectionID uint) {
	t.Helper()
	require.NoError(t, db.Create(&model.StaffCourse{
		StaffID:   staffID,
		CourseID:  courseID,
		SectionID: sectionID,
	}).Error)
}

func enrollStudent(t *testing.T, db *gorm.DB, studentID, courseID, sectionID uint) {
	t.Helper()
	require.NoError(t, db.Create(&model.StudentCourse{
		StudentID: studentID,
		CourseID:  courseID,
		SectionID: sectionID,
	}).Error)
}

func createOutcome(t *testing.T, db *gorm.DB, courseID uint, number int, coType string) *model.CourseOutcome {
	t.Helper()
	outcome := &model.CourseOutcome{CourseID: courseID, Number: number, Type: coType, Weight: 100}
	require.NoError(t, db.Create(outcome).Error)
	return outcome
}

func createTool(t *testing.T, db *gorm.DB, outcomeID uint, name string, weightage, maxMarks float64) *model.AssessmentTool {
	t.Helper()
	tool := &model.AssessmentTool{
		CourseOutcomeID: outcomeID,
		Name:            name,
		Weightage:       weightage,
		MaxMarks:        maxMarks,
	}
	require.NoError(t, db.Create(tool).Error)
	return tool
}
