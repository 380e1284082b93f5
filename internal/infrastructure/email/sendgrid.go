package email

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-actions/pkg/config"
)

// Sender dispatches recommendation email drafts through SendGrid
type Sender struct {
	client      *sendgrid.Client
	fromName    string
	fromAddress string
	logger      *zap.Logger
}

// NewSender creates a SendGrid-backed sender
func NewSender(cfg *config.EmailConfig, logger *zap.Logger) *Sender {
	return &Sender{
		client:      sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromName:    cfg.FromName,
		fromAddress: cfg.FromAddress,
		logger:      logger,
	}
}

// Send sends a plain-text email
func (s *Sender) Send(to, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromAddress)
	toEmail := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, toEmail, body, body)

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}

	if s.logger != nil {
		s.logger.Info("📧 Email sent",
			zap.String("to", to),
			zap.Int("status", response.StatusCode),
		)
	}
	return nil
}
