// Package mail delivers transactional email through SendGrid.
package mail

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wirebazaar/wirebazaar-backend/pkg/config"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(ctx context.Context, email *sgmail.SGMailV3) (int, string, error)

// SendGridSender implements Sender on the SendGrid v3 API.
type SendGridSender struct {
	fromEmail string
	fromName  string
	send      sendFunc
}

// NewSendGridSender builds a sender from the configured key and sender identity.
func NewSendGridSender(cfg config.SendgridConfig) (*SendGridSender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("sendgrid api key is empty")
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, fmt.Errorf("sendgrid from address is empty")
	}
	client := sendgrid.NewSendClient(cfg.APIKey)
	return &SendGridSender{
		fromEmail: cfg.DefaultFrom,
		fromName:  cfg.FromName,
		send: func(ctx context.Context, email *sgmail.SGMailV3) (int, string, error) {
			resp, err := client.SendWithContext(ctx, email)
			if err != nil {
				return 0, "", err
			}
			return resp.StatusCode, resp.Body, nil
		},
	}, nil
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("to address is empty")
	}
	email := sgmail.NewSingleEmail(
		sgmail.NewEmail(s.fromName, s.fromEmail),
		msg.Subject,
		sgmail.NewEmail("", msg.To),
		msg.Body,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(msg.Body)),
	)
	status, body, err := s.send(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", status, body)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. It backs
// development deployments without a SendGrid key.
type LogSender struct {
	logg *logger.Logger
}

// NewLogSender builds a log-only sender.
func NewLogSender(logg *logger.Logger) *LogSender {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.Body,
	})
	s.logg.Info(ctx, "mail.logged")
	return nil
}

// FromConfig picks SendGrid when it is configured and the log sender otherwise.
func FromConfig(cfg config.SendgridConfig, logg *logger.Logger) (Sender, error) {
	if !cfg.Enabled() {
		return NewLogSender(logg), nil
	}
	return NewSendGridSender(cfg)
}
