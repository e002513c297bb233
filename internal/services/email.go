package services

import (
	"context"
	"fmt"
	"log"

	"communityprogram/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendStatusNotification sends the confirmation or waitlist email matching
// the registration's committed status.
func (s *emailService) SendStatusNotification(ctx context.Context, data *domain.StatusEmailData) error {
	if data == nil {
		return fmt.Errorf("status email data is nil")
	}

	var templateName string
	switch data.Status {
	case domain.StatusConfirmed:
		templateName = "confirmation"
	case domain.StatusWaitlisted:
		templateName = "waitlist"
	default:
		return fmt.Errorf("no notification template for status %q", data.Status)
	}

	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	log.Printf("[EMAIL] %s email sent to %s", templateName, data.Email)
	return nil
}
