// Package notify delivers alert notifications over email and chat webhooks.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/gomail.v2"

	"github.com/stockpulse/invsync/internal/domain/notification"
	"github.com/stockpulse/invsync/internal/infrastructure/config"
	"github.com/stockpulse/invsync/internal/infrastructure/logger"
)

var (
	ErrMailDisabled      = errors.New("notify: mail channel is not configured")
	ErrEmptyRecipient    = errors.New("notify: recipient has no email address")
	ErrUnsupportedHook   = errors.New("notify: unsupported webhook kind")
	ErrWebhookRejected   = errors.New("notify: webhook rejected the message")
	ErrMissingWebhookURL = errors.New("notify: webhook url is empty")
)

// SMTPMailer sends alert mails through an SMTP relay with gomail
type SMTPMailer struct {
	from    string
	sender  gomail.Sender
	dialer  *gomail.Dialer
	printer *message.Printer
	logger  *zap.Logger
}

// NewSMTPMailer creates a mailer from config. It returns ErrMailDisabled when no host is set.
func NewSMTPMailer(cfg config.MailConfig, l *zap.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, ErrMailDisabled
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &SMTPMailer{
		from:    cfg.From,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		printer: message.NewPrinter(language.English),
		logger:  l,
	}, nil
}

// NewSMTPMailerWithSender creates a mailer that hands messages to sender instead of dialing
func NewSMTPMailerWithSender(from string, sender gomail.Sender, l *zap.Logger) *SMTPMailer {
	if l == nil {
		l = zap.NewNop()
	}
	return &SMTPMailer{
		from:    from,
		sender:  sender,
		printer: message.NewPrinter(language.English),
		logger:  l,
	}
}

// SendAlertMail sends the low stock mail for msg to the recipient
func (m *SMTPMailer) SendAlertMail(ctx context.Context, to notification.Recipient, msg notification.AlertMessage) error {
	if strings.TrimSpace(to.Email) == "" {
		return ErrEmptyRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	mail := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	mail.SetHeader("From", m.from)
	mail.SetAddressHeader("To", to.Email, to.Name)
	mail.SetHeader("Subject", m.subject(msg))
	mail.SetBody("text/plain", m.textBody(to, msg))
	mail.AddAlternative("text/html", m.htmlBody(to, msg))

	var err error
	if m.sender != nil {
		err = gomail.Send(m.sender, mail)
	} else {
		err = m.dialer.DialAndSend(mail)
	}
	if err != nil {
		return fmt.Errorf("send alert mail: %w", err)
	}

	logger.L(ctx).Debug("Alert mail sent",
		zap.Uint64("alert_id", msg.AlertID),
		zap.String("to", to.Email),
	)
	return nil
}

func (m *SMTPMailer) subject(msg notification.AlertMessage) string {
	return m.printer.Sprintf("Low stock: %s (%d left)", msg.ProductTitle, msg.Quantity)
}

func (m *SMTPMailer) textBody(to notification.Recipient, msg notification.AlertMessage) string {
	var b strings.Builder
	b.WriteString(m.printer.Sprintf("Hi %s,\n\n", displayName(to)))
	b.WriteString(m.printer.Sprintf("%s (SKU %s) in %s (%s) is down to %d units.\n",
		msg.ProductTitle, msg.SKU, msg.StoreName, msg.Platform, msg.Quantity))
	b.WriteString(m.printer.Sprintf("Your alert threshold is %d units.\n", msg.Threshold))
	b.WriteString(fmt.Sprintf("\nTriggered at %s\n", msg.TriggeredAt.UTC().Format("2006-01-02 15:04 MST")))
	return b.String()
}

func (m *SMTPMailer) htmlBody(to notification.Recipient, msg notification.AlertMessage) string {
	const tmpl = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <div style="max-width: 560px; margin: 0 auto; padding: 16px;">
    <p>Hi %s,</p>
    <h2 style="color: #dc2626;">Low stock alert</h2>
    <p><strong>%s</strong> (SKU %s) in %s (%s)</p>
    <p style="font-size: 24px; font-weight: bold;">%s units left</p>
    <p>Threshold: %s units</p>
  </div>
</body>
</html>`
	return fmt.Sprintf(tmpl,
		html.EscapeString(displayName(to)),
		html.EscapeString(msg.ProductTitle),
		html.EscapeString(msg.SKU),
		html.EscapeString(msg.StoreName),
		html.EscapeString(msg.Platform),
		m.printer.Sprintf("%d", msg.Quantity),
		m.printer.Sprintf("%d", msg.Threshold),
	)
}

func displayName(to notification.Recipient) string {
	if to.Name != "" {
		return to.Name
	}
	return to.Email
}

var _ notification.Mailer = (*SMTPMailer)(nil)
