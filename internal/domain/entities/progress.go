package entities

import "fmt"

// PipelineStage names where a meeting stands in the pipeline. Zero tasks
// after the analysis stage is its own stage, not a fallthrough: callers can
// treat it as a plausible terminal state for meetings without action items.
type PipelineStage string

const (
	StageTranscribing  PipelineStage = "transcribing"
	StageAwaitingTasks PipelineStage = "awaiting_tasks"
	StageRecommending  PipelineStage = "recommending"
	StageComplete      PipelineStage = "complete"
)

// PipelineProgress is derived, never persisted. There is deliberately no
// job-status row; completion is inferred from the four counts.
type PipelineProgress struct {
	HasSummary           bool          `json:"has_summary"`
	HasCleanedTranscript bool          `json:"has_cleaned_transcript"`
	TaskCount            int           `json:"task_count"`
	RecommendationCount  int           `json:"recommendation_count"`
	ProgressPercentage   int           `json:"progress_percentage"`
	IsComplete           bool          `json:"is_complete"`
	Stage                PipelineStage `json:"stage"`
	CurrentStep          string        `json:"current_step"`
}

// DeriveProgress computes progress as a pure, total function of the four
// counts. Thresholds: 0 until transcript and summary exist, 25 once both
// do, 50 once at least one task exists, then scaled by the recommendation
// ratio, 100 only when every task has a recommendation.
func DeriveProgress(hasTranscript, hasSummary bool, taskCount, recommendationCount int) PipelineProgress {
	p := PipelineProgress{
		HasSummary:           hasSummary,
		HasCleanedTranscript: hasTranscript,
		TaskCount:            taskCount,
		RecommendationCount:  recommendationCount,
		Stage:                StageTranscribing,
		CurrentStep:          "Transcription and analysis in progress...",
	}

	if !hasTranscript || !hasSummary {
		return p
	}

	p.ProgressPercentage = 25
	p.Stage = StageAwaitingTasks
	p.CurrentStep = "Analysis finished, creating tasks..."

	if taskCount == 0 {
		return p
	}

	p.ProgressPercentage = 50
	p.Stage = StageRecommending
	p.CurrentStep = fmt.Sprintf("%d tasks created, generating recommendations...", taskCount)

	if recommendationCount > 0 {
		pct := 75 + int(float64(recommendationCount)/float64(taskCount)*25)
		if pct > 100 {
			pct = 100
		}
		p.ProgressPercentage = pct
		p.CurrentStep = fmt.Sprintf("Generating recommendations (%d/%d)...", recommendationCount, taskCount)
	}

	if recommendationCount >= taskCount {
		p.ProgressPercentage = 100
		p.IsComplete = true
		p.Stage = StageComplete
		p.CurrentStep = "Processing finished"
	}

	return p
}
