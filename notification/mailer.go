package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends one email
type Mailer interface {
	Send(ctx context.Context, to Recipient, subject, plainText, htmlContent string) error
}

// SendGridMailer sends through the SendGrid v3 API
type SendGridMailer struct {
	APIKey    string
	FromName  string
	FromEmail string
}

// Send delivers the message, treating any non-2xx response as a failure
func (m SendGridMailer) Send(ctx context.Context, to Recipient, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(m.FromName, m.FromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail(to.Name, to.Email), plainText, htmlContent)
	client := sendgrid.NewSendClient(m.APIKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}
