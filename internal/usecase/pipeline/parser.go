package pipeline

import (
	"encoding/json"
	"fmt"

	pkgai "github.com/johnquangdev/meeting-actions/pkg/ai"
)

// maxDescriptionLen caps task descriptions to keep them scannable
const maxDescriptionLen = 200

// ExtractedTask is one entry of the extraction contract: grouped actions
// with assignees drawn from the supplied roster, or none when assignment
// is not unambiguous.
type ExtractedTask struct {
	Description   string   `json:"description"`
	AssignedNames []string `json:"assigned_names"`
}

type taskListPayload struct {
	Tasks []ExtractedTask `json:"tasks"`
}

// RecommendationResult is the recommendation contract. Valuable=false
// means the model deliberately judged no recommendation worth making.
type RecommendationResult struct {
	Valuable       bool   `json:"valuable"`
	Recommendation string `json:"recommendation"`
	EmailDraft     string `json:"email_draft,omitempty"`
}

// Parser validates model responses against the pipeline contracts
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseTaskList parses an extraction response. Any malformed payload fails
// the whole batch; callers must not persist partial results.
func (p *Parser) ParseTaskList(content string) ([]ExtractedTask, error) {
	obj, ok := pkgai.FirstJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("no JSON object in extraction response")
	}

	var payload taskListPayload
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	if payload.Tasks == nil {
		return nil, fmt.Errorf("missing tasks field in extraction response")
	}

	tasks := make([]ExtractedTask, 0, len(payload.Tasks))
	for i, task := range payload.Tasks {
		if task.Description == "" {
			return nil, fmt.Errorf("task %d has empty description", i)
		}
		if len(task.Description) > maxDescriptionLen {
			task.Description = task.Description[:maxDescriptionLen]
		}
		if task.AssignedNames == nil {
			task.AssignedNames = make([]string, 0)
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// ParseRecommendation parses a recommendation response
func (p *Parser) ParseRecommendation(content string) (*RecommendationResult, error) {
	obj, ok := pkgai.FirstJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("no JSON object in recommendation response")
	}

	var result RecommendationResult
	if err := json.Unmarshal([]byte(obj), &result); err != nil {
		return nil, fmt.Errorf("failed to parse recommendation response: %w", err)
	}
	if result.Valuable && result.Recommendation == "" {
		return nil, fmt.Errorf("recommendation marked valuable but text is empty")
	}

	return &result, nil
}

// ParseProcessed parses the clean-and-summarize response
func (p *Parser) ParseProcessed(content string) (transcript, summary string, err error) {
	obj, ok := pkgai.FirstJSONObject(content)
	if !ok {
		return "", "", fmt.Errorf("no JSON object in processing response")
	}

	var payload struct {
		CleanedTranscript string `json:"cleaned_transcript"`
		Summary           string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return "", "", fmt.Errorf("failed to parse processing response: %w", err)
	}
	if payload.CleanedTranscript == "" || payload.Summary == "" {
		return "", "", fmt.Errorf("processing response missing cleaned_transcript or summary")
	}

	return payload.CleanedTranscript, payload.Summary, nil
}
