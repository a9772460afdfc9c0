package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrToolNotFound   = errors.New("assessment tool not found")
	ErrNotEnrolled    = errors.New("student is not enrolled in this course")
	ErrNotAssigned    = errors.New("staff is not assigned to this course section")
	ErrMarkOutOfRange = errors.New("mark is outside the tool's 0..max range")
)

const reportCacheTTL = 10 * time.Minute

// MarksService is the mark aggregation engine: it records per-tool
// marks and derives CO marks, per-type averages and the final internal
// average for a course.
type MarksService struct {
	db    *gorm.DB
	cache *cache.RedisCache // optional; reports are recomputed when nil
}

// NewMarksService creates a new marks service
func NewMarksService(db *gorm.DB, redisCache *cache.RedisCache) *MarksService {
	return &MarksService{db: db, cache: redisCache}
}

// ToolScore pairs one tool's configuration with a student's raw mark.
// Raw is 0 when the student has no recorded attempt; a missing attempt
// scores 0, it is never excluded from the CO mark.
type ToolScore struct {
	Weightage float64
	MaxMarks  float64
	Raw       float64
}

// OutcomeMark is one computed CO mark with the CO's weight
type OutcomeMark struct {
	OutcomeID uint    `json:"outcome_id"`
	Number    int     `json:"number"`
	Type      string  `json:"type"`
	Weight    float64 `json:"weight"`
	Mark      float64 `json:"mark"`
}

// CourseSummary is the per-student rollup across a course's COs
type CourseSummary struct {
	TypeAverages map[string]float64 `json:"type_averages"` // only non-empty types appear
	Final        float64            `json:"final"`
}

// Round2 rounds to 2 decimal places, half away from zero
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeCOMark turns a CO's tool scores into a 0..100 mark.
// contribution per tool = (raw/max) * (weightage/100). A tool with a
// zero or negative max cannot contribute; that is logged and treated as
// 0 rather than failing the whole computation, so one bad tool degrades
// the report instead of blocking it.
func ComputeCOMark(tools []ToolScore) float64 {
	var total float64
	for _, t := range tools {
		if t.MaxMarks <= 0 {
			log.Printf("marks: tool with max_marks=%.2f skipped in CO computation", t.MaxMarks)
			continue
		}
		total += (t.Raw / t.MaxMarks) * (t.Weightage / 100)
	}
	return Round2(100 * total)
}

// ComputeCourseSummary rolls CO marks into per-type averages and the
// weighted final average. Only types that actually have at least one CO
// participate: a course with zero practical COs is averaged over its
// real COs, never diluted by an implicit zero-practical group.
func ComputeCourseSummary(outcomes []OutcomeMark) CourseSummary {
	summary := CourseSummary{TypeAverages: make(map[string]float64)}

	typeSum := make(map[string]float64)
	typeCount := make(map[string]int)
	var weightedSum, weightTotal float64

	for _, om := range outcomes {
		typeSum[om.Type] += om.Mark
		typeCount[om.Type]++
		weightedSum += om.Mark * (om.Weight / 100)
		weightTotal += om.Weight / 100
	}

	for coType, count := range typeCount {
		summary.TypeAverages[coType] = Round2(typeSum[coType] / float64(count))
	}

	if weightTotal > 0 {
		summary.Final = Round2(weightedSum / weightTotal)
	}
	return summary
}

// SubmitMark validates and upserts one (student, tool) mark.
// The unique index on (student_id, tool_id) makes the second submission
// overwrite the first; last writer wins.
func (s *MarksService) SubmitMark(staffID, studentID, toolID uint, mark float64) error {
	var tool model.AssessmentTool
	if err := s.db.Preload("CourseOutcome").First(&tool, toolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrToolNotFound
		}
		return fmt.Errorf("failed to load tool: %w", err)
	}

	if mark < 0 || mark > tool.MaxMarks {
		return ErrMarkOutOfRange
	}

	courseID := tool.CourseOutcome.CourseID

	var enrollment model.StudentCourse
	if err := s.db.Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("failed to check enrollment: %w", err)
	}

	if err := s.checkStaffAssignment(staffID, courseID, enrollment.SectionID); err != nil {
		return err
	}

	record := model.StudentToolMark{StudentID: studentID, ToolID: toolID, Mark: mark}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "tool_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"mark", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save mark: %w", err)
	}

	s.InvalidateReport(courseID)
	return nil
}

// ImportRow is one (register number, mark) pair from a bulk CSV import
type ImportRow struct {
	RegNo string
	Mark  float64
}

// ImportSummary reports what a bulk import did
type ImportSummary struct {
	Imported int      `json:"imported"`
	Clamped  int      `json:"clamped"`
	Skipped  []string `json:"skipped,omitempty"`
}

// ImportMarks applies a bulk import against one tool inside a single
// transaction. Imported rows take the same validation and upsert path
// as individual submissions, except that out-of-range values are
// clamped to [0, max] and logged instead of rejected: a bad cell
// degrades one mark, it does not abort the sheet.
func (s *MarksService) ImportMarks(staffID, toolID uint, rows []ImportRow) (*ImportSummary, error) {
	var tool model.AssessmentTool
	if err := s.db.Preload("CourseOutcome").First(&tool, toolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrToolNotFound
		}
		return nil, fmt.Errorf("failed to load tool: %w", err)
	}
	courseID := tool.CourseOutcome.CourseID

	summary := &ImportSummary{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			var student model.User
			if err := tx.Where("reg_no = ? AND role = ?", row.RegNo, model.RoleStudent).
				First(&student).Error; err != nil {
				summary.Skipped = append(summary.Skipped, fmt.Sprintf("%s: unknown register number", row.RegNo))
				continue
			}

			var enrollment model.StudentCourse
			if err := tx.Where("student_id = ? AND course_id = ?", student.ID, courseID).
				First(&enrollment).Error; err != nil {
				summary.Skipped = append(summary.Skipped, fmt.Sprintf("%s: not enrolled", row.RegNo))
				continue
			}

			if err := s.checkStaffAssignmentTx(tx, staffID, courseID, enrollment.SectionID); err != nil {
				summary.Skipped = append(summary.Skipped, fmt.Sprintf("%s: %v", row.RegNo, err))
				continue
			}

			mark := row.Mark
			if mark < 0 || mark > tool.MaxMarks {
				clamped := math.Min(math.Max(mark, 0), tool.MaxMarks)
				log.Printf("marks: import clamped %s from %.2f to %.2f (tool %d)", row.RegNo, mark, clamped, toolID)
				mark = clamped
				summary.Clamped++
			}

			record := model.StudentToolMark{StudentID: student.ID, ToolID: toolID, Mark: mark}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "student_id"}, {Name: "tool_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"mark", "updated_at"}),
			}).Create(&record).Error; err != nil {
				return fmt.Errorf("failed to save mark for %s: %w", row.RegNo, err)
			}
			summary.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateReport(courseID)
	return summary, nil
}

// ToolColumn describes one tool column of a course report
type ToolColumn struct {
	ToolID    uint    `json:"tool_id"`
	Name      string  `json:"name"`
	Weightage float64 `json:"weightage"`
	MaxMarks  float64 `json:"max_marks"`
}

// OutcomeColumn describes one CO of a course report with its tools
type OutcomeColumn struct {
	OutcomeID uint         `json:"outcome_id"`
	Number    int          `json:"number"`
	Type      string       `json:"type"`
	Weight    float64      `json:"weight"`
	Tools     []ToolColumn `json:"tools"`
}

// StudentReport is one student's row of a course report
type StudentReport struct {
	StudentID    uint               `json:"student_id"`
	RegNo        string             `json:"reg_no"`
	Name         string             `json:"name"`
	ToolMarks    map[uint]float64   `json:"tool_marks"` // keyed by tool ID, 0 when unattempted
	OutcomeMarks []OutcomeMark      `json:"outcome_marks"`
	TypeAverages map[string]float64 `json:"type_averages"`
	Final        float64            `json:"final"`
}

// CourseReport is the full derived mark report for a course
type CourseReport struct {
	CourseID    uint            `json:"course_id"`
	CourseCode  string          `json:"course_code"`
	CourseTitle string          `json:"course_title"`
	Outcomes    []OutcomeColumn `json:"outcomes"`
	Students    []StudentReport `json:"students"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// CourseReport derives the full report for a course, serving from the
// Redis cache when a fresh copy exists. The aggregate view is always
// re-derived from the raw marks, never stored relationally.
func (s *MarksService) CourseReport(courseID uint) (*CourseReport, error) {
	ctx := context.Background()
	if s.cache != nil {
		var cached CourseReport
		if err := s.cache.GetJSON(ctx, reportCacheKey(courseID), &cached); err == nil {
			return &cached, nil
		}
	}

	report, err := s.buildCourseReport(courseID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, reportCacheKey(courseID), report, reportCacheTTL); err != nil {
			log.Printf("marks: failed to cache report for course %d: %v", courseID, err)
		}
	}
	return report, nil
}

// InvalidateReport drops the cached report after any mark/tool write
func (s *MarksService) InvalidateReport(courseID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.Background(), reportCacheKey(courseID)); err != nil {
		log.Printf("marks: failed to invalidate report cache for course %d: %v", courseID, err)
	}
}

func reportCacheKey(courseID uint) string {
	return fmt.Sprintf("marks:report:%d", courseID)
}

func (s *MarksService) buildCourseReport(courseID uint) (*CourseReport, error) {
	var course model.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	var outcomes []model.CourseOutcome
	if err := s.db.Preload("Tools").
		Where("course_id = ?", courseID).
		Order("number ASC").
		Find(&outcomes).Error; err != nil {
		return nil, fmt.Errorf("failed to load outcomes: %w", err)
	}

	var enrollments []model.StudentCourse
	if err := s.db.Preload("Student").
		Where("course_id = ?", courseID).
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to load enrollments: %w", err)
	}

	report := &CourseReport{
		CourseID:    course.ID,
		CourseCode:  course.Code,
		CourseTitle: course.Title,
		GeneratedAt: time.Now(),
	}

	var toolIDs []uint
	for _, co := range outcomes {
		col := OutcomeColumn{OutcomeID: co.ID, Number: co.Number, Type: co.Type, Weight: co.Weight}
		for _, t := range co.Tools {
			col.Tools = append(col.Tools, ToolColumn{
				ToolID: t.ID, Name: t.Name, Weightage: t.Weightage, MaxMarks: t.MaxMarks,
			})
			toolIDs = append(toolIDs, t.ID)
		}
		report.Outcomes = append(report.Outcomes, col)
	}

	// All recorded marks for the course's tools, indexed per student
	marksByStudent := make(map[uint]map[uint]float64)
	if len(toolIDs) > 0 {
		var marks []model.StudentToolMark
		if err := s.db.Where("tool_id IN ?", toolIDs).Find(&marks).Error; err != nil {
			return nil, fmt.Errorf("failed to load marks: %w", err)
		}
		for _, m := range marks {
			if marksByStudent[m.StudentID] == nil {
				marksByStudent[m.StudentID] = make(map[uint]float64)
			}
			marksByStudent[m.StudentID][m.ToolID] = m.Mark
		}
	}

	for _, e := range enrollments {
		row := StudentReport{
			StudentID: e.StudentID,
			RegNo:     e.Student.RegNo,
			Name:      e.Student.Name,
			ToolMarks: make(map[uint]float64),
		}
		studentMarks := marksByStudent[e.StudentID]

		for _, co := range outcomes {
			scores := make([]ToolScore, 0, len(co.Tools))
			for _, t := range co.Tools {
				raw := studentMarks[t.ID] // 0 when absent
				row.ToolMarks[t.ID] = raw
				scores = append(scores, ToolScore{Weightage: t.Weightage, MaxMarks: t.MaxMarks, Raw: raw})
			}
			row.OutcomeMarks = append(row.OutcomeMarks, OutcomeMark{
				OutcomeID: co.ID,
				Number:    co.Number,
				Type:      co.Type,
				Weight:    co.Weight,
				Mark:      ComputeCOMark(scores),
			})
		}

		summary := ComputeCourseSummary(row.OutcomeMarks)
		row.TypeAverages = summary.TypeAverages
		row.Final = summary.Final
		report.Students = append(report.Students, row)
	}

	return report, nil
}

func (s *MarksService) checkStaffAssignment(staffID, courseID, sectionID uint) error {
	return s.checkStaffAssignmentTx(s.db, staffID, courseID, sectionID)
}

func (s *MarksService) checkStaffAssignmentTx(tx *gorm.DB, staffID, courseID, sectionID uint) error {
	var count int64
	if err := tx.Model(&model.StaffCourse{}).
		Where("staff_id = ? AND course_id = ? AND section_id = ?", staffID, courseID, sectionID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check staff assignment: %w", err)
	}
	if count == 0 {
		return ErrNotAssigned
	}
	return nil
}
