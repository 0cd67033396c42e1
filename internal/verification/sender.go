package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
	"github.com/wirebazaar/wirebazaar-backend/pkg/mail"
)

// Sender delivers a one-time code to a contact.
type Sender interface {
	SendCode(ctx context.Context, contact Contact, code string, ttl time.Duration) error
}

// Router picks a sender by channel.
type Router struct {
	Email Sender
	Phone Sender
}

func (r Router) SendCode(ctx context.Context, contact Contact, code string, ttl time.Duration) error {
	var next Sender
	switch contact.Channel {
	case ChannelEmail:
		next = r.Email
	case ChannelPhone:
		next = r.Phone
	}
	if next == nil {
		return fmt.Errorf("no sender for channel %q", contact.Channel)
	}
	return next.SendCode(ctx, contact, code, ttl)
}

// MailSender emails the code.
type MailSender struct {
	mailer mail.Sender
}

// NewMailSender builds an email code sender on mailer.
func NewMailSender(mailer mail.Sender) *MailSender {
	return &MailSender{mailer: mailer}
}

func (s *MailSender) SendCode(ctx context.Context, contact Contact, code string, ttl time.Duration) error {
	return s.mailer.Send(ctx, mail.Message{
		To:      contact.Value,
		Subject: "Your WireBazaar verification code",
		Body: fmt.Sprintf(
			"Your one-time password is %s.\n\nIt expires in %d minutes. Do not share it with anyone.\n",
			code, int(ttl.Minutes()),
		),
	})
}

// LogSender records the delivery in the log. It stands in for an SMS gateway;
// the code itself is written only when revealCodes is set.
type LogSender struct {
	logg        *logger.Logger
	revealCodes bool
}

// NewLogSender builds a log-only sender.
func NewLogSender(logg *logger.Logger, revealCodes bool) *LogSender {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogSender{logg: logg, revealCodes: revealCodes}
}

func (s *LogSender) SendCode(ctx context.Context, contact Contact, code string, _ time.Duration) error {
	fields := map[string]any{
		"channel": string(contact.Channel),
		"contact": maskContact(contact),
	}
	if s.revealCodes {
		fields["code"] = code
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "otp.delivered")
	return nil
}

func maskContact(contact Contact) string {
	value := contact.Value
	if len(value) <= 4 {
		return "****"
	}
	return "******" + value[len(value)-4:]
}
