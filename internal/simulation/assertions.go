package simulation

import (
	"testing"

	"github.com/nvandessel/conjoint/internal/models"
)

// AssertChoicesValid asserts that every choice in responses is a concept that
// exists in design for the respondent's version and task.
func AssertChoicesValid(t *testing.T, design *models.DesignTable, responses *models.ResponseTable) {
	t.Helper()
	for i := 0; i < responses.Len(); i++ {
		row := responses.Row(i)
		if len(row.Choices) != responses.NumTasks() {
			t.Errorf("AssertChoicesValid: %s has %d choices, want %d", row.RespondentID, len(row.Choices), responses.NumTasks())
			continue
		}
		for task, choice := range row.Choices {
			found := false
			for _, d := range design.Select(row.Version, task+1) {
				if d.Concept == choice {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("AssertChoicesValid: %s task %d chose concept %d, not in version %d", row.RespondentID, task+1, choice, row.Version)
			}
		}
	}
}

// AssertDriverRespected asserts that every chosen concept carries the maximal
// driver level among the concepts of its task.
func AssertDriverRespected(t *testing.T, design *models.DesignTable, responses *models.ResponseTable) {
	t.Helper()
	col := design.AttributeIndex(responses.Driver())
	if col < 0 {
		t.Fatalf("AssertDriverRespected: driver %q is not a design column", responses.Driver())
	}
	for i := 0; i < responses.Len(); i++ {
		row := responses.Row(i)
		for task, choice := range row.Choices {
			maxLevel, chosenLevel := -1, -1
			for _, d := range design.Select(row.Version, task+1) {
				if d.Levels[col] > maxLevel {
					maxLevel = d.Levels[col]
				}
				if d.Concept == choice {
					chosenLevel = d.Levels[col]
				}
			}
			if chosenLevel != maxLevel {
				t.Errorf("AssertDriverRespected: %s task %d chose level %d, max is %d", row.RespondentID, task+1, chosenLevel, maxLevel)
			}
		}
	}
}

// AssertSharesSumToOne asserts that each task's shares add up to 1.
func AssertSharesSumToOne(t *testing.T, shares []TaskShares) {
	t.Helper()
	for _, ts := range shares {
		sum := 0.0
		for _, s := range ts.Shares {
			sum += s
		}
		if sum < 0.999999 || sum > 1.000001 {
			t.Errorf("AssertSharesSumToOne: task %d shares sum to %.6f", ts.Task, sum)
		}
	}
}
