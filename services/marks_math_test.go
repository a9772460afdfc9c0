package services

import (
	"testing"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 56.67, Round2(56.666666))
	assert.Equal(t, 88.0, Round2(88.0))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 33.33, Round2(100.0/3.0))
}

func TestComputeCOMarkWeightsContributions(t *testing.T) {
	// 44/50 on a 60% tool plus 22/25 on a 40% tool is 88% of the CO
	mark := ComputeCOMark([]ToolScore{
		{Weightage: 60, MaxMarks: 50, Raw: 44},
		{Weightage: 40, MaxMarks: 25, Raw: 22},
	})
	assert.Equal(t, 88.0, mark)
}

func TestComputeCOMarkMissingAttemptScoresZero(t *testing.T) {
	// The absent second tool contributes 0; it is not excluded
	mark := ComputeCOMark([]ToolScore{
		{Weightage: 50, MaxMarks: 100, Raw: 80},
		{Weightage: 50, MaxMarks: 50, Raw: 0},
	})
	assert.Equal(t, 40.0, mark)
}

func TestComputeCOMarkSkipsZeroMaxTool(t *testing.T) {
	mark := ComputeCOMark([]ToolScore{
		{Weightage: 50, MaxMarks: 0, Raw: 10},
		{Weightage: 50, MaxMarks: 100, Raw: 100},
	})
	assert.Equal(t, 50.0, mark)
}

func TestComputeCOMarkFullScores(t *testing.T) {
	mark := ComputeCOMark([]ToolScore{
		{Weightage: 30, MaxMarks: 20, Raw: 20},
		{Weightage: 70, MaxMarks: 75, Raw: 75},
	})
	assert.Equal(t, 100.0, mark)
}

func TestComputeCourseSummaryEqualWeights(t *testing.T) {
	summary := ComputeCourseSummary([]OutcomeMark{
		{Number: 1, Type: model.COTypeTheory, Weight: 100, Mark: 80},
		{Number: 2, Type: model.COTypeTheory, Weight: 100, Mark: 50},
		{Number: 3, Type: model.COTypePractical, Weight: 100, Mark: 40},
	})

	assert.Equal(t, 56.67, summary.Final)
	assert.Equal(t, 65.0, summary.TypeAverages[model.COTypeTheory])
	assert.Equal(t, 40.0, summary.TypeAverages[model.COTypePractical])
}

func TestComputeCourseSummaryOmitsEmptyTypes(t *testing.T) {
	// A course with no practical COs averages over its real COs only
	summary := ComputeCourseSummary([]OutcomeMark{
		{Number: 1, Type: model.COTypeTheory, Weight: 100, Mark: 90},
		{Number: 2, Type: model.COTypeTheory, Weight: 100, Mark: 70},
	})

	assert.Equal(t, 80.0, summary.Final)
	assert.Contains(t, summary.TypeAverages, model.COTypeTheory)
	assert.NotContains(t, summary.TypeAverages, model.COTypePractical)
	assert.NotContains(t, summary.TypeAverages, model.COTypeExperiential)
}

func TestComputeCourseSummaryRespectsWeights(t *testing.T) {
	summary := ComputeCourseSummary([]OutcomeMark{
		{Number: 1, Type: model.COTypeTheory, Weight: 75, Mark: 100},
		{Number: 2, Type: model.COTypeTheory, Weight: 25, Mark: 0},
	})

	assert.Equal(t, 75.0, summary.Final)
}

func TestComputeCourseSummaryEmpty(t *testing.T) {
	summary := ComputeCourseSummary(nil)
	assert.Equal(t, 0.0, summary.Final)
	assert.Empty(t, summary.TypeAverages)
}
