package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	pkgai "github.com/johnquangdev/meeting-actions/pkg/ai"
)

const todoAgentPrompt = `You are the task agent of a meeting assistant.
Given the current task list and the user's request, decide which task mutations to apply.
Allowed types: "create_task" (needs description), "complete_task" (needs task_id), "delete_task" (needs task_id).
Respond with JSON only:
{"actions": [{"type": "create_task", "task_id": "", "description": "..."}], "explanation": "what you did, in the user's language"}`

const summaryAgentPrompt = `You are the summary agent of a meeting assistant.
Rewrite the meeting summary according to the user's request. Keep everything that was not asked to change.
Respond with JSON only: {"summary": "...", "explanation": "what you changed, in the user's language"}`

const recommendationsAgentPrompt = `You are the recommendations agent of a meeting assistant.
Given the tasks and their current recommendations, apply the user's requested edits.
Respond with JSON only:
{"updates": [{"task_id": "...", "recommendation": "...", "email_draft": ""}], "explanation": "what you changed, in the user's language"}`

type todoAction struct {
	Type        string `json:"type"`
	TaskID      string `json:"task_id"`
	Description string `json:"description"`
}

type todoPlan struct {
	Actions     []todoAction `json:"actions"`
	Explanation string       `json:"explanation"`
}

type summaryPlan struct {
	Summary     string `json:"summary"`
	Explanation string `json:"explanation"`
}

type recommendationUpdate struct {
	TaskID         string `json:"task_id"`
	Recommendation string `json:"recommendation"`
	EmailDraft     string `json:"email_draft"`
}

type recommendationsPlan struct {
	Updates     []recommendationUpdate `json:"updates"`
	Explanation string                 `json:"explanation"`
}

// runTodoAgent applies task mutations one by one. Partial success is
// expected: each action reports its own outcome.
func (c *Coordinator) runTodoAgent(ctx context.Context, meetingID uuid.UUID, message string) entities.AgentResult {
	result := entities.AgentResult{Agent: entities.AgentTodo, Success: true, Actions: []entities.Action{}}

	tasks, err := c.tasks.ListByMeeting(ctx, meetingID)
	if err != nil {
		return failedResult(entities.AgentTodo, "could not load tasks")
	}

	var b strings.Builder
	b.WriteString("Current tasks:\n")
	for _, task := range tasks {
		fmt.Fprintf(&b, "- id=%s status=%s: %s\n", task.ID, task.Status, task.Description)
	}
	b.WriteString("\nRequest:\n")
	b.WriteString(message)

	var plan todoPlan
	switch err := c.askAgent(ctx, todoAgentPrompt, b.String(), &plan); {
	case errors.Is(err, errNoPlan):
		// No-op fallback: report what we understood, mutate nothing
		result.Actions = append(result.Actions, entities.Action{
			Type:        "noop",
			Description: "I could not determine which task change you wanted, so nothing was modified.",
			Success:     true,
		})
		return result
	case err != nil:
		return failedResult(entities.AgentTodo, "the assistant backend did not respond")
	}

	for _, action := range plan.Actions {
		result.Actions = append(result.Actions, c.applyTodoAction(ctx, meetingID, action))
	}
	return result
}

func (c *Coordinator) applyTodoAction(ctx context.Context, meetingID uuid.UUID, action todoAction) entities.Action {
	applied := entities.Action{Type: action.Type, Success: true}

	switch action.Type {
	case "create_task":
		if strings.TrimSpace(action.Description) == "" {
			return failedAction(action.Type, "empty task description")
		}
		task := entities.NewTask(&meetingID, action.Description)
		if err := c.tasks.Create(ctx, task); err != nil {
			return failedAction(action.Type, "could not create the task")
		}
		applied.Description = fmt.Sprintf("Created task: %s.", action.Description)

	case "complete_task":
		task, err := c.lookupTask(ctx, action.TaskID)
		if err != nil {
			return failedAction(action.Type, err.Error())
		}
		task.Status = entities.TaskStatusDone
		if err := c.tasks.Update(ctx, task); err != nil {
			return failedAction(action.Type, "could not update the task")
		}
		applied.Description = fmt.Sprintf("Marked task done: %s.", task.Description)

	case "delete_task":
		task, err := c.lookupTask(ctx, action.TaskID)
		if err != nil {
			return failedAction(action.Type, err.Error())
		}
		if err := c.tasks.Delete(ctx, task.ID); err != nil {
			return failedAction(action.Type, "could not delete the task")
		}
		applied.Description = fmt.Sprintf("Deleted task: %s.", task.Description)

	default:
		return failedAction(action.Type, "unknown action type")
	}

	return applied
}

// runSummaryAgent rewrites the meeting summary
func (c *Coordinator) runSummaryAgent(ctx context.Context, meetingID uuid.UUID, message string) entities.AgentResult {
	meeting, err := c.meetings.GetByID(ctx, meetingID)
	if err != nil || meeting == nil {
		return failedResult(entities.AgentSummary, "could not load the meeting")
	}

	current := ""
	if meeting.Summary != nil {
		current = *meeting.Summary
	}

	prompt := "Current summary:\n" + current + "\n\nRequest:\n" + message

	var plan summaryPlan
	askErr := c.askAgent(ctx, summaryAgentPrompt, prompt, &plan)
	if askErr != nil && !errors.Is(askErr, errNoPlan) {
		return failedResult(entities.AgentSummary, "the assistant backend did not respond")
	}
	if askErr != nil || strings.TrimSpace(plan.Summary) == "" {
		return entities.AgentResult{
			Agent:   entities.AgentSummary,
			Success: true,
			Actions: []entities.Action{{
				Type:        "noop",
				Description: "I could not determine how to change the summary, so it was left as is.",
				Success:     true,
			}},
		}
	}

	if err := c.meetings.UpdateSummary(ctx, meetingID, plan.Summary); err != nil {
		return failedResult(entities.AgentSummary, "could not save the summary")
	}

	explanation := plan.Explanation
	if explanation == "" {
		explanation = "Updated the meeting summary."
	}
	return entities.AgentResult{
		Agent:   entities.AgentSummary,
		Success: true,
		Actions: []entities.Action{{Type: "update_summary", Description: explanation, Success: true}},
	}
}

// runRecommendationsAgent edits per-task recommendations. Manual edits go
// through Upsert and mark the task done so the scanner leaves it alone.
func (c *Coordinator) runRecommendationsAgent(ctx context.Context, meetingID uuid.UUID, message string) entities.AgentResult {
	result := entities.AgentResult{Agent: entities.AgentRecommendations, Success: true, Actions: []entities.Action{}}

	tasks, err := c.tasks.ListByMeeting(ctx, meetingID)
	if err != nil {
		return failedResult(entities.AgentRecommendations, "could not load tasks")
	}

	var b strings.Builder
	b.WriteString("Tasks and recommendations:\n")
	for _, task := range tasks {
		fmt.Fprintf(&b, "- id=%s: %s\n", task.ID, task.Description)
		if rec, err := c.recs.GetByTaskID(ctx, task.ID); err == nil && rec != nil {
			fmt.Fprintf(&b, "  recommendation: %s\n", rec.RecommendationText)
		}
	}
	b.WriteString("\nRequest:\n")
	b.WriteString(message)

	var plan recommendationsPlan
	switch err := c.askAgent(ctx, recommendationsAgentPrompt, b.String(), &plan); {
	case errors.Is(err, errNoPlan):
		result.Actions = append(result.Actions, entities.Action{
			Type:        "noop",
			Description: "I could not determine which recommendation change you wanted, so nothing was modified.",
			Success:     true,
		})
		return result
	case err != nil:
		return failedResult(entities.AgentRecommendations, "the assistant backend did not respond")
	}

	for _, update := range plan.Updates {
		result.Actions = append(result.Actions, c.applyRecommendationUpdate(ctx, update))
	}
	return result
}

func (c *Coordinator) applyRecommendationUpdate(ctx context.Context, update recommendationUpdate) entities.Action {
	task, err := c.lookupTask(ctx, update.TaskID)
	if err != nil {
		return failedAction("update_recommendation", err.Error())
	}
	if strings.TrimSpace(update.Recommendation) == "" {
		return failedAction("update_recommendation", "empty recommendation text")
	}

	var emailDraft *string
	if update.EmailDraft != "" {
		emailDraft = &update.EmailDraft
	}
	rec := entities.NewRecommendation(task.ID, update.Recommendation, emailDraft)
	if err := c.recs.Upsert(ctx, rec); err != nil {
		return failedAction("update_recommendation", "could not save the recommendation")
	}
	if err := c.tasks.UpdateRecommendationState(ctx, task.ID, entities.RecommendationDone); err != nil {
		if c.logger != nil {
			c.logger.Warn("recommendation saved but state update failed", zap.String("task_id", task.ID.String()), zap.Error(err))
		}
	}

	return entities.Action{
		Type:        "update_recommendation",
		Description: fmt.Sprintf("Updated the recommendation for: %s.", task.Description),
		Success:     true,
	}
}

// errNoPlan means the backend answered but nothing usable came out of the
// reply. The safe reaction is a no-op; a backend failure is not.
var errNoPlan = errors.New("no usable plan in reply")

// askAgent runs one backend call and parses the first JSON object out of the
// reply. Backend failures are returned as is; an unparsable reply is errNoPlan.
func (c *Coordinator) askAgent(ctx context.Context, system, user string, out any) error {
	response, err := c.llm.Infer(ctx, system, user, 0.3, 1500)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("agent inference failed", zap.Error(err))
		}
		return err
	}
	raw, ok := pkgai.FirstJSONObject(response)
	if !ok {
		return errNoPlan
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return errNoPlan
	}
	return nil
}

func (c *Coordinator) lookupTask(ctx context.Context, rawID string) (*entities.Task, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, fmt.Errorf("invalid task id")
	}
	task, err := c.tasks.GetByID(ctx, id)
	if err != nil || task == nil {
		return nil, fmt.Errorf("task not found")
	}
	return task, nil
}

func failedResult(agent entities.AgentName, reason string) entities.AgentResult {
	return entities.AgentResult{Agent: agent, Success: false, Error: reason, Actions: []entities.Action{}}
}

func failedAction(actionType, reason string) entities.Action {
	return entities.Action{Type: actionType, Error: reason, Success: false}
}
