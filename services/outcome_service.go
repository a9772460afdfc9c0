package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"gorm.io/gorm"
)

var (
	ErrOutcomeNotFound   = errors.New("course outcome not found")
	ErrWeightageSum      = errors.New("tool weightages must sum to exactly 100")
	ErrDuplicateToolName = errors.New("duplicate tool name within the outcome")
	ErrConfirmRequired   = errors.New("shrinking the partition deletes outcomes and their marks; confirmation required")
	ErrNegativePartition = errors.New("partition counts cannot be negative")
)

// OutcomeService manages the CO partition of a course and the
// assessment tools under each CO.
type OutcomeService struct {
	db    *gorm.DB
	marks *MarksService
}

// NewOutcomeService creates a new outcome service
func NewOutcomeService(db *gorm.DB, marks *MarksService) *OutcomeService {
	return &OutcomeService{db: db, marks: marks}
}

// ToolInput is one tool of a tool-set save. ID 0 means a new tool;
// tools present in the DB but absent from the input are deleted along
// with their recorded marks.
type ToolInput struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name" validate:"required,min=1,max=100"`
	Weightage float64 `json:"weightage" validate:"required,gt=0,lte=100"`
	MaxMarks  float64 `json:"max_marks" validate:"required,gt=0"`
}

// SaveToolSet replaces the tool set of a CO in one transaction.
// Nothing is written unless the post-edit weightages sum to exactly 100
// and no two names collide case-insensitively.
func (s *OutcomeService) SaveToolSet(outcomeID uint, tools []ToolInput) error {
	var sum float64
	seen := make(map[string]bool)
	for _, t := range tools {
		sum += t.Weightage
		key := strings.ToLower(strings.TrimSpace(t.Name))
		if seen[key] {
			return ErrDuplicateToolName
		}
		seen[key] = true
	}
	if math.Abs(sum-100) > 1e-9 {
		return ErrWeightageSum
	}

	var outcome model.CourseOutcome
	if err := s.db.First(&outcome, outcomeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOutcomeNotFound
		}
		return fmt.Errorf("failed to load outcome: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing []model.AssessmentTool
		if err := tx.Where("course_outcome_id = ?", outcomeID).Find(&existing).Error; err != nil {
			return err
		}

		kept := make(map[uint]bool)
		for _, t := range tools {
			if t.ID != 0 {
				kept[t.ID] = true
			}
		}

		// Removing a tool cascades to its recorded marks
		for _, ex := range existing {
			if kept[ex.ID] {
				continue
			}
			if err := tx.Where("tool_id = ?", ex.ID).Delete(&model.StudentToolMark{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&model.AssessmentTool{}, ex.ID).Error; err != nil {
				return err
			}
		}

		for _, t := range tools {
			if t.ID != 0 {
				if err := tx.Model(&model.AssessmentTool{}).
					Where("id = ? AND course_outcome_id = ?", t.ID, outcomeID).
					Updates(map[string]interface{}{
						"name":      strings.TrimSpace(t.Name),
						"weightage": t.Weightage,
						"max_marks": t.MaxMarks,
					}).Error; err != nil {
					return err
				}
				continue
			}
			tool := model.AssessmentTool{
				CourseOutcomeID: outcomeID,
				Name:            strings.TrimSpace(t.Name),
				Weightage:       t.Weightage,
				MaxMarks:        t.MaxMarks,
			}
			if err := tx.Create(&tool).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save tool set: %w", err)
	}

	s.marks.InvalidateReport(outcome.CourseID)
	return nil
}

// PartitionInput is the requested CO partition of a course
type PartitionInput struct {
	TheoryCount       int `json:"theory_count" validate:"min=0,max=20"`
	PracticalCount    int `json:"practical_count" validate:"min=0,max=20"`
	ExperientialCount int `json:"experiential_count" validate:"min=0,max=20"`
}

// coTypeOrder fixes the renumbering order: theory block first, then
// practical, then experiential.
var coTypeOrder = []string{model.COTypeTheory, model.COTypePractical, model.COTypeExperiential}

// ResizePartitions changes how many theory/practical/experiential COs a
// course has. Shrinking a category deletes its highest-numbered COs
// together with their tools and marks, which is why callers must pass
// confirm=true whenever any category shrinks. Afterwards every CO of
// the course is renumbered 1..N, theory block first.
func (s *OutcomeService) ResizePartitions(courseID uint, input PartitionInput, confirm bool) error {
	if input.TheoryCount < 0 || input.PracticalCount < 0 || input.ExperientialCount < 0 {
		return ErrNegativePartition
	}

	var course model.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to load course: %w", err)
	}

	wanted := map[string]int{
		model.COTypeTheory:       input.TheoryCount,
		model.COTypePractical:    input.PracticalCount,
		model.COTypeExperiential: input.ExperientialCount,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var outcomes []model.CourseOutcome
		if err := tx.Where("course_id = ?", courseID).Order("number ASC").Find(&outcomes).Error; err != nil {
			return err
		}

		byType := make(map[string][]model.CourseOutcome)
		for _, co := range outcomes {
			byType[co.Type] = append(byType[co.Type], co)
		}

		for _, coType := range coTypeOrder {
			if len(byType[coType]) > wanted[coType] && !confirm {
				return ErrConfirmRequired
			}
		}

		for _, coType := range coTypeOrder {
			current := byType[coType]
			target := wanted[coType]

			// Shrink: delete from the tail (highest number within the type)
			for len(current) > target {
				victim := current[len(current)-1]
				var toolIDs []uint
				if err := tx.Model(&model.AssessmentTool{}).
					Where("course_outcome_id = ?", victim.ID).
					Pluck("id", &toolIDs).Error; err != nil {
					return err
				}
				if len(toolIDs) > 0 {
					if err := tx.Where("tool_id IN ?", toolIDs).Delete(&model.StudentToolMark{}).Error; err != nil {
						return err
					}
					if err := tx.Where("course_outcome_id = ?", victim.ID).Delete(&model.AssessmentTool{}).Error; err != nil {
						return err
					}
				}
				if err := tx.Delete(&model.CourseOutcome{}, victim.ID).Error; err != nil {
					return err
				}
				current = current[:len(current)-1]
			}

			// Grow: append with placeholder numbers; renumbering fixes them
			for i := len(current); i < target; i++ {
				co := model.CourseOutcome{
					CourseID: courseID,
					Type:     coType,
					Number:   1000 + i,
					Weight:   100,
				}
				if err := tx.Create(&co).Error; err != nil {
					return err
				}
				current = append(current, co)
			}
			byType[coType] = current
		}

		// Renumber contiguously in fixed type order
		number := 0
		for _, coType := range coTypeOrder {
			cos := byType[coType]
			sort.Slice(cos, func(i, j int) bool { return cos[i].Number < cos[j].Number })
			for _, co := range cos {
				number++
				if err := tx.Model(&model.CourseOutcome{}).
					Where("id = ?", co.ID).
					Update("number", number).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(&model.Course{}).Where("id = ?", courseID).Updates(map[string]interface{}{
			"theory_count":       input.TheoryCount,
			"practical_count":    input.PracticalCount,
			"experiential_count": input.ExperientialCount,
		}).Error
	})
	if err != nil {
		return err
	}

	s.marks.InvalidateReport(courseID)
	return nil
}
