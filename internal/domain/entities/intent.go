package entities

// IntentType classifies a free-text message
type IntentType string

const (
	IntentTaskCreation IntentType = "task_creation"
	IntentMeetingPoint IntentType = "meeting_point"
	IntentNormalQuery  IntentType = "normal_query"
)

// IntentClassification is produced fresh per message and never persisted
type IntentClassification struct {
	Type             IntentType `json:"type"`
	Confidence       float64    `json:"confidence"`
	ExtractedContent string     `json:"extracted_content"`
	Reasoning        string     `json:"reasoning"`
}

// AgentName identifies an orchestrator sub-handler
type AgentName string

const (
	AgentTodo            AgentName = "todo"
	AgentSummary         AgentName = "summary"
	AgentRecommendations AgentName = "recommendations"
)

// Action is one mutation a sub-handler performed (or tried to)
type Action struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

// AgentResult is the isolated outcome of one dispatched sub-handler.
// A failed branch carries Success=false and an empty action list; it never
// aborts sibling branches.
type AgentResult struct {
	Agent   AgentName `json:"agent"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	Actions []Action  `json:"actions"`
}

// ChatOutcome is the synthesized orchestrator response
type ChatOutcome struct {
	Response string        `json:"response"`
	Actions  []Action      `json:"actions"`
	Results  []AgentResult `json:"results,omitempty"`
}
