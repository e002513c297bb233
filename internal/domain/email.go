package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// StatusEmailData holds data for the confirmation and waitlist emails sent
// after staff commit a roster review.
type StatusEmailData struct {
	Email      string
	Name       string
	EventTitle string
	EventStart string
	Location   string
	Status     Status
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	// SendStatusNotification sends the confirmation or waitlist email
	// matching data.Status.
	SendStatusNotification(ctx context.Context, data *StatusEmailData) error
}
