package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/rpupo63/blog-backend/config"
)

// Mailer delivers a plain text message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer picks the delivery driver named by the mail settings.
func NewMailer(s config.MailSettings) (Mailer, error) {
	switch s.Driver {
	case "smtp", "":
		return NewSMTPMailer(s), nil
	case "resend":
		return NewResendMailer(s.ResendAPIKey, s.ResendFrom)
	case "log":
		return NewLogMailer(), nil
	default:
		return nil, fmt.Errorf("unknown MAIL_DRIVER %q", s.Driver)
	}
}

// SMTPMailer sends through an SMTP relay such as Mailtrap. The dialer upgrades
// to STARTTLS when the server offers it.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(s config.MailSettings) *SMTPMailer {
	d := gomail.NewDialer(s.Server, s.Port, s.Username, s.Password)
	d.SSL = s.UseSSL
	return &SMTPMailer{dialer: d, from: s.DefaultSender}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them. Bodies can
// carry reset links, so they are only logged at debug level.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer() *LogMailer {
	return &LogMailer{logger: log.With().Str("service", "logMailer").Logger()}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info().Str("to", to).Str("subject", subject).Msg("Email not sent, MAIL_DRIVER=log")
	m.logger.Debug().Str("to", to).Str("body", body).Msg("Email body")
	return nil
}

const resendEndpoint = "https://api.resend.com/emails"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

func NewResendMailer(apiKey, from string) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is required when MAIL_DRIVER=resend")
	}
	if from == "" {
		return nil, fmt.Errorf("RESEND_FROM_EMAIL is required when MAIL_DRIVER=resend")
	}
	return &ResendMailer{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   log.With().Str("service", "resendMailer").Logger(),
	}, nil
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, body string) error {
	payload := ResendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		m.logger.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}
	return nil
}
