package utils

import (
	"fmt"

	"github.com/raushankrgupta/fitly-atelier/config"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// SendEmail sends an email using SendGrid
func SendEmail(toName, toEmail, subject, textContent, htmlContent string) error {
	if config.SendGridAPIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not set in environment variables")
	}

	from := mail.NewEmail("Fitly Atelier", config.ShareFromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, textContent, htmlContent)
	client := sendgrid.NewSendClient(config.SendGridAPIKey)

	response, err := client.Send(message)
	if err != nil {
		Logger.Error("sending email", zap.String("to", toEmail), zap.Error(err))
		return err
	}

	if response.StatusCode >= 400 {
		Logger.Error("SendGrid API error", zap.Int("status", response.StatusCode), zap.String("body", response.Body))
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	Logger.Info("email sent", zap.String("to", toEmail), zap.Int("status", response.StatusCode))
	return nil
}
