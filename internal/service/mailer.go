package service

import (
	"fmt"

	"miro-content-service/pkg/httpclient"

	"github.com/rs/zerolog/log"
)

// Mailer dispatches transactional email through an HTTP mail API
type Mailer struct {
	client *httpclient.Client
	apiURL string
	from   string
	appURL string
}

// NewMailer creates a Mailer. With an empty apiKey the mailer only logs;
// local runs do not need an external mail account.
func NewMailer(apiURL, apiKey, from, appURL string) *Mailer {
	var client *httpclient.Client
	if apiKey != "" {
		client = httpclient.NewClient(apiKey)
	}
	return &Mailer{client: client, apiURL: apiURL, from: from, appURL: appURL}
}

type mailPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendVerification sends the email-verification link to a new user
func (m *Mailer) SendVerification(email, token string) error {
	verificationURL := fmt.Sprintf("%s/api/verify-email?token=%s", m.appURL, token)

	if m.client == nil {
		log.Info().Str("email", email).Str("url", verificationURL).Msg("📧 mail API not configured, verification link logged")
		return nil
	}

	payload := mailPayload{
		From:    m.from,
		To:      []string{email},
		Subject: "Verify your email address",
		HTML: fmt.Sprintf(
			`<p>Thank you for registering. Please click the link below to verify your email address:</p>`+
				`<p><a href="%s">Verify Email</a></p>`+
				`<p>If you didn't request this verification, you can safely ignore this email.</p>`,
			verificationURL),
	}

	if _, err := m.client.PostJSON(m.apiURL, payload); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}
