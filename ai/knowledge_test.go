package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectContextMatchesExerciseRule(t *testing.T) {
	rule := SelectContext("Go for a 10-minute run", "", "fitness")
	assert.Equal(t, "exercise", rule.Name)
}

func TestSelectContextMatchesOnDescription(t *testing.T) {
	rule := SelectContext("Evening ritual", "Write in a journal for five minutes", "mindfulness")
	assert.Equal(t, "mindfulness", rule.Name)
}

func TestSelectContextMatchesOnCategory(t *testing.T) {
	// Nothing in the title or description matches, but the category does.
	rule := SelectContext("Try something new", "", "fitness")
	assert.Equal(t, "exercise", rule.Name)
}

func TestSelectContextFallsBackToDefault(t *testing.T) {
	rule := SelectContext("Do a mystery thing", "no matching words here", "misc")
	assert.Equal(t, "default", rule.Name)
	assert.Empty(t, rule.Tags)
	assert.NotEmpty(t, rule.Instruction)
}

func TestSelectContextIsCaseInsensitive(t *testing.T) {
	rule := SelectContext("COOK A MEAL FROM SCRATCH", "", "FOOD")
	assert.Equal(t, "cooking", rule.Name)
}

func TestSelectContextFirstMatchWins(t *testing.T) {
	// "hike" is an exercise tag and appears before the outdoors rule.
	rule := SelectContext("Hike a new trail", "somewhere in nature", "adventure")
	assert.Equal(t, "exercise", rule.Name)
}

func TestSelectContextIsDeterministic(t *testing.T) {
	first := SelectContext("Go for a 10-minute run", "", "fitness")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first.Name, SelectContext("Go for a 10-minute run", "", "fitness").Name)
	}
}
