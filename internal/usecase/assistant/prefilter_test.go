package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
)

func TestPreFilter_ExplicitTaskPhrasing(t *testing.T) {
	result := PreFilter("ajoute une tâche pour contacter le fournisseur")

	assert.Equal(t, entities.IntentTaskCreation, result.Type)
	assert.Equal(t, 1.0, result.Confidence)
	assert.NotEmpty(t, result.Reasoning)
	assert.Equal(t, "ajoute une tâche pour contacter le fournisseur", result.ExtractedContent)
}

func TestPreFilter_SoftPhrasingStaysConservative(t *testing.T) {
	result := PreFilter("peut-être ajouter une tâche un jour")

	assert.Equal(t, entities.IntentNormalQuery, result.Type)
	assert.Equal(t, 1.0, result.Confidence)
	assert.NotEmpty(t, result.Reasoning)
}

func TestPreFilter_ExplicitAgendaPhrasing(t *testing.T) {
	result := PreFilter("Ajoute un point à l'ordre du jour pour discuter du budget")

	assert.Equal(t, entities.IntentMeetingPoint, result.Type)
	assert.Greater(t, result.Confidence, confidenceGate)
}

func TestPreFilter_EnglishTaskPhrasing(t *testing.T) {
	result := PreFilter("Create a task to send the contract before Friday")

	assert.Equal(t, entities.IntentTaskCreation, result.Type)
	assert.Greater(t, result.Confidence, confidenceGate)
}

func TestPreFilter_KeywordsAloneAreNotEnough(t *testing.T) {
	// Task keyword plus action verb, but no explicit imperative
	result := PreFilter("cette tâche de contacter le client était difficile")

	assert.Equal(t, entities.IntentNormalQuery, result.Type)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestPreFilter_PlainQuestion(t *testing.T) {
	result := PreFilter("Qui était présent à la réunion de lundi ?")

	assert.Equal(t, entities.IntentNormalQuery, result.Type)
	assert.NotEmpty(t, result.Reasoning)
}

func TestPreFilter_EmptyInput(t *testing.T) {
	result := PreFilter("   ")

	assert.Equal(t, entities.IntentNormalQuery, result.Type)
	assert.NotEmpty(t, result.Reasoning)
}

func TestPreFilter_NeverExceedsOne(t *testing.T) {
	// Stacks every family: imperative, assignment, keyword, verb
	result := PreFilter("ajoute une tâche et assigne la à Alice pour contacter le fournisseur avant la deadline")

	assert.Equal(t, entities.IntentTaskCreation, result.Type)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}
