package ai

import (
	"context"
	"fmt"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/meeting-actions/pkg/config"
)

// Transcriber wraps the official AssemblyAI SDK client
type Transcriber struct {
	sdk        *aai.Client
	webhookURL string
}

// NewTranscriber creates a transcriber using the provided config
func NewTranscriber(cfg *config.AssemblyConfig) *Transcriber {
	return &Transcriber{
		sdk:        aai.NewClient(cfg.APIKey),
		webhookURL: cfg.WebhookURL,
	}
}

// Submit asks AssemblyAI to transcribe an external audio URL. Completion is
// delivered via webhook; the returned id correlates the callback.
func (t *Transcriber) Submit(ctx context.Context, audioURL string) (string, error) {
	params := &aai.TranscriptOptionalParams{
		SpeakerLabels:     aai.Bool(true),
		LanguageDetection: aai.Bool(true),
	}
	if t.webhookURL != "" {
		params.WebhookURL = &t.webhookURL
	}

	transcript, err := t.sdk.Transcripts.SubmitFromURL(ctx, audioURL, params)
	if err != nil {
		return "", err
	}
	if transcript.ID == nil {
		return "", fmt.Errorf("assemblyai returned transcript without id")
	}
	return *transcript.ID, nil
}

// Fetch retrieves the text of a finished transcript. Used when a webhook
// delivery was missed.
func (t *Transcriber) Fetch(ctx context.Context, transcriptID string) (string, error) {
	transcript, err := t.sdk.Transcripts.Get(ctx, transcriptID)
	if err != nil {
		return "", err
	}

	switch transcript.Status {
	case aai.TranscriptStatusCompleted:
		if transcript.Text == nil {
			return "", nil
		}
		return *transcript.Text, nil
	case aai.TranscriptStatusError:
		msg := "transcription failed"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return "", fmt.Errorf("assemblyai: %s", msg)
	default:
		return "", fmt.Errorf("transcript %s still %s", transcriptID, transcript.Status)
	}
}
