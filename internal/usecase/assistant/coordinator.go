package assistant

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	"github.com/johnquangdev/meeting-actions/internal/domain/repositories"
	pkgai "github.com/johnquangdev/meeting-actions/pkg/ai"
)

const intentSystemPrompt = `You are a coordinator for a meeting assistant.
Given a user's edit request about a meeting, decide which agents must act.
Available agents: "todo" (create/complete/delete tasks), "summary" (rewrite the meeting summary), "recommendations" (edit per-task recommendations).
Respond with JSON only: {"agents_to_call": ["todo"], "explanation": "short plan in the user's language"}`

// failureCaution is appended once when any branch fails. Internal error
// detail never reaches the end user.
const failureCaution = "Some requested changes could not be applied. Please review the meeting and try again."

// LLM is the inference backend used by the orchestrator
type LLM interface {
	Infer(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}

type intentPlan struct {
	AgentsToCall []string `json:"agents_to_call"`
	Explanation  string   `json:"explanation"`
}

// Coordinator turns one free-text edit request into sub-agent dispatches and
// synthesizes a single coherent response.
type Coordinator struct {
	meetings repositories.MeetingRepository
	tasks    repositories.TaskRepository
	recs     repositories.RecommendationRepository
	llm      LLM
	logger   *zap.Logger
}

// NewCoordinator creates the orchestrator
func NewCoordinator(
	meetings repositories.MeetingRepository,
	tasks repositories.TaskRepository,
	recs repositories.RecommendationRepository,
	llm LLM,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		meetings: meetings,
		tasks:    tasks,
		recs:     recs,
		llm:      llm,
		logger:   logger,
	}
}

// HandleChatEdit classifies the message, dispatches every selected agent
// independently, and synthesizes one response. It degrades rather than
// refuses: classification failure falls back to the todo agent.
func (c *Coordinator) HandleChatEdit(ctx context.Context, meetingID uuid.UUID, message string, history []string) (*entities.ChatOutcome, error) {
	plan := c.classify(ctx, message, history)

	results := c.dispatch(ctx, plan, meetingID, message)

	return c.synthesize(results), nil
}

// HandleMessage gates unsolicited free text: only unambiguous explicit
// phrasing triggers the orchestrator; everything else gets a plain answer
// with no side effects.
func (c *Coordinator) HandleMessage(ctx context.Context, meetingID uuid.UUID, message string) (*entities.ChatOutcome, entities.IntentClassification, error) {
	classification := PreFilter(message)

	if classification.Type == entities.IntentNormalQuery {
		response := c.answer(ctx, meetingID, message)
		return &entities.ChatOutcome{Response: response, Actions: []entities.Action{}}, classification, nil
	}

	outcome, err := c.HandleChatEdit(ctx, meetingID, classification.ExtractedContent, nil)
	return outcome, classification, err
}

// classify asks the backend which agents to run. Parse failure falls back to
// the most common case instead of refusing.
func (c *Coordinator) classify(ctx context.Context, message string, history []string) intentPlan {
	prompt := message
	if len(history) > 0 {
		prompt = "Previous messages:\n" + strings.Join(history, "\n") + "\n\nCurrent request:\n" + message
	}

	fallback := intentPlan{
		AgentsToCall: []string{string(entities.AgentTodo)},
		Explanation:  "I will update the meeting's tasks.",
	}

	response, err := c.llm.Infer(ctx, intentSystemPrompt, prompt, 0.2, 500)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("intent classification failed, falling back to todo agent", zap.Error(err))
		}
		return fallback
	}

	raw, ok := pkgai.FirstJSONObject(response)
	if !ok {
		return fallback
	}
	var plan intentPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil || len(plan.AgentsToCall) == 0 {
		return fallback
	}
	return plan
}

// dispatch fans out to the selected agents. Each branch is isolated: a panic
// or error degrades that branch to a failed result, never the siblings.
func (c *Coordinator) dispatch(ctx context.Context, plan intentPlan, meetingID uuid.UUID, message string) []entities.AgentResult {
	agents := dedupeAgents(plan.AgentsToCall)

	results := make([]entities.AgentResult, len(agents))
	var wg sync.WaitGroup
	for i, agent := range agents {
		wg.Add(1)
		go func(i int, agent entities.AgentName) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					if c.logger != nil {
						c.logger.Error("agent panicked", zap.String("agent", string(agent)), zap.Any("panic", r))
					}
					results[i] = entities.AgentResult{Agent: agent, Success: false, Error: "agent crashed", Actions: []entities.Action{}}
				}
			}()
			results[i] = c.runAgent(ctx, agent, meetingID, message)
		}(i, agent)
	}
	wg.Wait()
	return results
}

func (c *Coordinator) runAgent(ctx context.Context, agent entities.AgentName, meetingID uuid.UUID, message string) entities.AgentResult {
	switch agent {
	case entities.AgentTodo:
		return c.runTodoAgent(ctx, meetingID, message)
	case entities.AgentSummary:
		return c.runSummaryAgent(ctx, meetingID, message)
	case entities.AgentRecommendations:
		return c.runRecommendationsAgent(ctx, meetingID, message)
	default:
		return entities.AgentResult{Agent: agent, Success: false, Error: "unknown agent", Actions: []entities.Action{}}
	}
}

// synthesize concatenates the successful actions' explanations. Any branch
// failure adds a single generic caution.
func (c *Coordinator) synthesize(results []entities.AgentResult) *entities.ChatOutcome {
	var parts []string
	var actions []entities.Action
	failed := false

	for _, result := range results {
		if !result.Success {
			failed = true
		}
		for _, action := range result.Actions {
			actions = append(actions, action)
			if action.Success {
				parts = append(parts, action.Description)
			} else {
				failed = true
			}
		}
	}

	if failed {
		parts = append(parts, failureCaution)
	}
	if len(parts) == 0 {
		parts = append(parts, "No changes were needed.")
	}

	return &entities.ChatOutcome{
		Response: strings.Join(parts, " "),
		Actions:  actions,
		Results:  results,
	}
}

// answer handles a plain question about the meeting with no side effects
func (c *Coordinator) answer(ctx context.Context, meetingID uuid.UUID, message string) string {
	const system = `You are a meeting assistant. Answer the user's question about the meeting using the provided context. Be concise.`

	var contextBlock string
	if meeting, err := c.meetings.GetByID(ctx, meetingID); err == nil && meeting != nil && meeting.Summary != nil {
		contextBlock = "Meeting summary:\n" + *meeting.Summary + "\n\n"
	}

	response, err := c.llm.Infer(ctx, system, contextBlock+"Question:\n"+message, 0.5, 800)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("chat answer failed", zap.Error(err))
		}
		return "I could not process that question right now. Please try again."
	}
	return strings.TrimSpace(response)
}

func dedupeAgents(names []string) []entities.AgentName {
	known := map[string]entities.AgentName{
		string(entities.AgentTodo):            entities.AgentTodo,
		string(entities.AgentSummary):         entities.AgentSummary,
		string(entities.AgentRecommendations): entities.AgentRecommendations,
	}
	seen := make(map[entities.AgentName]bool)
	var agents []entities.AgentName
	for _, name := range names {
		agent, ok := known[strings.ToLower(strings.TrimSpace(name))]
		if !ok || seen[agent] {
			continue
		}
		seen[agent] = true
		agents = append(agents, agent)
	}
	if len(agents) == 0 {
		agents = append(agents, entities.AgentTodo)
	}
	return agents
}
