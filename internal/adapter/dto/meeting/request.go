package meeting

// CreateMeetingRequest represents the request to create a meeting
type CreateMeetingRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
}

// ChatEditRequest represents an explicit edit request from the action panel
type ChatEditRequest struct {
	Message string   `json:"message" validate:"required,min=1,max=4000"`
	History []string `json:"history,omitempty" validate:"omitempty,max=50"`
}

// MessageRequest represents an unsolicited free-text message; it only
// triggers actions when the pre-filter judges the phrasing explicit
type MessageRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// RetryRequest represents the request to re-run recommendation generation
// for tasks that are still pending. MeetingID scopes the sweep; omit it for
// a global one.
type RetryRequest struct {
	MeetingID *string `json:"meeting_id,omitempty" validate:"omitempty,uuid"`
}

// TranscriptWebhookRequest is the AssemblyAI completion callback payload
type TranscriptWebhookRequest struct {
	TranscriptID string `json:"transcript_id" validate:"required"`
	Status       string `json:"status" validate:"required"`
}
