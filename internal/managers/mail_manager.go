// Package managers handles the sending of emails for email verification and password
// resets using the Mailgun service and the Hermes package for email formatting.
package managers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"
)

// MailMgr is an interface that outlines the contract for email management.
// It includes methods for sending verification and password reset emails.
// Delivery is best effort; callers treat a failure as a transient error.
type MailMgr interface {
	SendVerificationMail(email, username, token string) error
	SendResetMail(email, username, token string) error
}

// MailManager is a concrete implementation of the MailMgr interface.
// It uses the Mailgun service for sending emails and the Hermes package for formatting emails.
type MailManager struct {
	Hermes  *hermes.Hermes
	Mailgun *mailgun.MailgunImpl
	BaseURL string
}

var from = "MySocial <team@mysocial.app>"
var environment string

// SendVerificationMail sends the raw verification token to a freshly registered
// user, embedded in a link they follow to verify their email address.
func (mm *MailManager) SendVerificationMail(email, username, token string) error {
	verificationURL := fmt.Sprintf("%s/api/users/verify-email/%s", mm.BaseURL, token)

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"Welcome to MySocial! We're very excited to have you on board.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To verify your email address, please click the button below:",
					Button: hermes.Button{
						Color: "#22BC66",
						Text:  "Verify Email",
						Link:  verificationURL,
					},
				},
			},
			Outros: []string{
				"The link expires shortly, so don't wait too long.",
			},
		},
	}

	return mm.send(email, "Verify Your Email - MySocial", mailBody)
}

// SendResetMail sends the raw password reset token to a user, embedded in a
// link they follow to choose a new password.
func (mm *MailManager) SendResetMail(email, username, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%s", mm.BaseURL, token)

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"You requested a password reset for your MySocial account.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to choose a new password:",
					Button: hermes.Button{
						Color: "#FF0000",
						Text:  "Reset Password",
						Link:  resetURL,
					},
				},
			},
			Outros: []string{
				"If you did not request this, please ignore this email.",
			},
		},
	}

	return mm.send(email, "Reset Your Password - MySocial", mailBody)
}

func (mm *MailManager) send(email, subject string, mailBody hermes.Email) error {
	if environment != "production" {
		log.Info("Skipping mail in development mode")
		return nil
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(2*time.Second))
	defer cancel()

	message := mm.Mailgun.NewMessage(from, subject, "", email)
	message.SetHtml(emailBody)
	_, _, err = mm.Mailgun.Send(ctx, message)
	if err != nil {
		log.Warning("Error sending mail: " + err.Error())
		return err
	}
	log.Debug("Mail sent to ", email)

	return nil
}

// NewMailManager initializes a new MailManager instance with configured Mailgun and Hermes settings.
// It also checks the runtime environment to determine if emails should be sent.
func NewMailManager() MailMgr {
	log.Info("Initializing mail manager")
	environment = os.Getenv("ENVIRONMENT")

	if environment != "production" {
		log.Println("Running in development mode, email will not be sent to users")
	}

	baseURL := os.Getenv("PUBLIC_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	apiKey := os.Getenv("MAILGUN_API_KEY")
	mailgunInstance := mailgun.NewMailgun("mail.mysocial.app", apiKey)
	mailgunInstance.SetAPIBase(mailgun.APIBaseEU)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:      "MySocial",
				Link:      "https://mysocial.app/",
				Copyright: "© MySocial",
			},
		},
		Mailgun: mailgunInstance,
		BaseURL: baseURL,
	}
	log.Info("Initialized mail manager")
	return mm
}
