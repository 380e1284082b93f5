package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-actions/errors"
	dto "github.com/johnquangdev/meeting-actions/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-actions/internal/usecase/assistant"
)

// AssistantController exposes the chat orchestrator over HTTP
type AssistantController struct {
	coordinator *assistant.Coordinator
	logger      *zap.Logger
}

// NewAssistantController creates the assistant controller
func NewAssistantController(coordinator *assistant.Coordinator, logger *zap.Logger) *AssistantController {
	return &AssistantController{coordinator: coordinator, logger: logger}
}

// Chat handles an explicit edit request from the action panel
// @Summary      Chat edit
// @Description  Translates one free-text edit request into task/summary/recommendation mutations and replies with a synthesized response
// @Tags         Assistant
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Meeting ID (UUID)"
// @Param        request  body      dto.ChatEditRequest  true  "Edit request"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Router       /meetings/{id}/chat [post]
func (ac *AssistantController) Chat(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(ac.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	var req dto.ChatEditRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(ac.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(ac.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	outcome, err := ac.coordinator.HandleChatEdit(c.Request().Context(), meetingID, req.Message, req.History)
	if err != nil {
		return HandleError(ac.logger, c, err)
	}

	return HandleSuccess(ac.logger, c, dto.ChatResponse{Response: outcome.Response, Actions: outcome.Actions})
}

// Message handles unsolicited free text behind the intent pre-filter
// @Summary      Send message
// @Description  Classifies the message; only unambiguous explicit phrasing triggers automatic actions, everything else gets a plain answer
// @Tags         Assistant
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string              true  "Meeting ID (UUID)"
// @Param        request  body      dto.MessageRequest  true  "Message"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Router       /meetings/{id}/messages [post]
func (ac *AssistantController) Message(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(ac.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	var req dto.MessageRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(ac.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(ac.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	outcome, classification, err := ac.coordinator.HandleMessage(c.Request().Context(), meetingID, req.Message)
	if err != nil {
		return HandleError(ac.logger, c, err)
	}

	return HandleSuccess(ac.logger, c, dto.MessageResponse{
		Response:   outcome.Response,
		Actions:    outcome.Actions,
		Intent:     string(classification.Type),
		Confidence: classification.Confidence,
		Reasoning:  classification.Reasoning,
	})
}
