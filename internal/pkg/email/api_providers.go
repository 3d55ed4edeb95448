// internal/pkg/email/api_providers.go
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Provider endpoints
var (
	resendURL     = "https://api.resend.com/emails"
	sendGridURL   = "https://api.sendgrid.com/v3/mail/send"
	mailerSendURL = "https://api.mailersend.com/v1/email"
)

// Resend API structures
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type ResendResponse struct {
	ID string `json:"id"`
}

// SendGrid API structures
type SendGridEmailRequest struct {
	Personalizations []SendGridPersonalization `json:"personalizations"`
	From             SendGridEmail             `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []SendGridContent         `json:"content"`
	ReplyTo          *SendGridEmail            `json:"reply_to,omitempty"`
}

type SendGridPersonalization struct {
	To []SendGridEmail `json:"to"`
}

type SendGridEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type SendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// MailerSend API structures
type MailerSendRequest struct {
	From    MailerSendEmail   `json:"from"`
	To      []MailerSendEmail `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html,omitempty"`
	Text    string            `json:"text,omitempty"`
	ReplyTo *MailerSendEmail  `json:"reply_to,omitempty"`
	Tags    []string          `json:"tags,omitempty"`
}

type MailerSendEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// sendResendEmail sends email using Resend API
func (s *EmailService) sendResendEmail(ctx context.Context, email *Email) (string, error) {
	if s.config.APIKey == "" {
		return "", fmt.Errorf("Resend API key not configured")
	}

	reqData := ResendEmailRequest{
		From:    s.from(),
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTMLContent,
		Text:    email.TextContent,
		ReplyTo: s.config.ReplyTo,
	}

	resp, err := s.postJSON(ctx, resendURL, reqData)
	if err != nil {
		return "", fmt.Errorf("failed to send Resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Resend API returned status %d", resp.StatusCode)
	}

	var out ResendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", nil
	}
	return out.ID, nil
}

// sendSendGridEmail sends email using SendGrid API
func (s *EmailService) sendSendGridEmail(ctx context.Context, email *Email) (string, error) {
	if s.config.APIKey == "" {
		return "", fmt.Errorf("SendGrid API key not configured")
	}

	var to []SendGridEmail
	for _, recipient := range email.To {
		to = append(to, SendGridEmail{Email: recipient})
	}

	var replyTo *SendGridEmail
	if s.config.ReplyTo != "" {
		replyTo = &SendGridEmail{Email: s.config.ReplyTo}
	}

	var content []SendGridContent
	if email.TextContent != "" {
		content = append(content, SendGridContent{Type: "text/plain", Value: email.TextContent})
	}
	if email.HTMLContent != "" {
		content = append(content, SendGridContent{Type: "text/html", Value: email.HTMLContent})
	}

	reqData := SendGridEmailRequest{
		Personalizations: []SendGridPersonalization{
			{To: to},
		},
		From: SendGridEmail{
			Email: s.config.FromEmail,
			Name:  s.config.FromName,
		},
		Subject: email.Subject,
		Content: content,
		ReplyTo: replyTo,
	}

	resp, err := s.postJSON(ctx, sendGridURL, reqData)
	if err != nil {
		return "", fmt.Errorf("failed to send SendGrid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("SendGrid API returned status %d", resp.StatusCode)
	}

	return resp.Header.Get("X-Message-Id"), nil
}

// sendMailerSendEmail sends email using MailerSend API
func (s *EmailService) sendMailerSendEmail(ctx context.Context, email *Email) (string, error) {
	if s.config.APIKey == "" {
		return "", fmt.Errorf("MailerSend API key not configured")
	}

	var to []MailerSendEmail
	for _, recipient := range email.To {
		to = append(to, MailerSendEmail{Email: recipient})
	}

	var replyTo *MailerSendEmail
	if s.config.ReplyTo != "" {
		replyTo = &MailerSendEmail{Email: s.config.ReplyTo}
	}

	reqData := MailerSendRequest{
		From: MailerSendEmail{
			Email: s.config.FromEmail,
			Name:  s.config.FromName,
		},
		To:      to,
		Subject: email.Subject,
		HTML:    email.HTMLContent,
		Text:    email.TextContent,
		ReplyTo: replyTo,
		Tags:    []string{string(email.Type)},
	}

	resp, err := s.postJSON(ctx, mailerSendURL, reqData)
	if err != nil {
		return "", fmt.Errorf("failed to send MailerSend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("MailerSend API returned status %d", resp.StatusCode)
	}

	return resp.Header.Get("X-Message-Id"), nil
}

func (s *EmailService) postJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	return s.client.Do(req)
}
