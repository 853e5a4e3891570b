package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	appName   string
	isDev     bool
}

func NewEmailService(apiKey, fromEmail, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		appName:   appName,
		isDev:     isDev,
	}
}

// SendOTPEmail delivers a one-time sign-in code. In development the code is
// logged instead of sent, so the flow works without a mail provider.
func (s *EmailService) SendOTPEmail(email, code string) error {
	subject, body := otpEmailTemplate(code, s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "otp", "to", email, "subject", subject, "code", code)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), params)
	if err == nil {
		slog.Info("email sent", "type", "otp", "to", email)
	}
	return err
}

func otpEmailTemplate(code, appName string) (subject, body string) {
	subject = fmt.Sprintf("Your %s sign-in code", appName)
	body = fmt.Sprintf(`Hi,

Your one-time sign-in code is:

    %s

Enter it in the verification dialog to continue. The code expires shortly
and can only be used once. If you didn't request it, you can ignore this
email.

The %s Team`, code, appName)
	return subject, body
}
