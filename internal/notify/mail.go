package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/pkg/errors"

	"github.com/avibrazil/balancemb/internal/services/report"
)

const defaultSMTPAddr = "localhost:25"

// Mail sends the balance report as an HTML e-mail through a local SMTP
// relay, the same delivery path the host's cron mailer uses.
type Mail struct {
	recipient string
	sender    string
	fundLabel string
	smtpAddr  string
	send      func(addr, from string, to []string, msg []byte) error
}

// MailOption configures a Mail notifier.
type MailOption func(*Mail)

// WithSMTPAddr overrides the SMTP relay address.
func WithSMTPAddr(addr string) MailOption {
	return func(m *Mail) {
		m.smtpAddr = addr
	}
}

// WithSendFunc overrides the SMTP submission function, for tests.
func WithSendFunc(send func(addr, from string, to []string, msg []byte) error) MailOption {
	return func(m *Mail) {
		m.send = send
	}
}

// NewMail creates a notifier that mails reports to recipient.
func NewMail(recipient, fundLabel string, opts ...MailOption) *Mail {
	m := &Mail{
		recipient: recipient,
		fundLabel: fundLabel,
		smtpAddr:  defaultSMTPAddr,
	}
	m.send = func(addr, from string, to []string, msg []byte) error {
		return smtp.SendMail(addr, nil, from, to, msg)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements Notifier.
func (m *Mail) Name() string {
	return "mail"
}

// Send renders and submits the e-mail.
func (m *Mail) Send(ctx context.Context, r report.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fiat := strings.ToUpper(r.FiatSymbol)
	subject := fmt.Sprintf("%s new balance: %s %s", m.fundLabel, report.FormatAmount(r.Balance), fiat)

	var msg strings.Builder
	fmt.Fprintf(&msg, "To: %s\r\n", m.recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Thread-Topic: %s balance\r\n", m.fundLabel)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(renderHTMLBody(r))

	if err := m.send(m.smtpAddr, m.sender, []string{m.recipient}, []byte(msg.String())); err != nil {
		return errors.Wrap(err, "submit report mail")
	}

	return nil
}

func renderHTMLBody(r report.Report) string {
	fiat := strings.ToUpper(r.FiatSymbol)

	var lines []string
	lines = append(lines, fmt.Sprintf("<p>Current balance: <strong>%s %s</strong>.</p>", report.FormatAmount(r.Balance), fiat))

	if r.HasBaseline {
		lines = append(lines,
			fmt.Sprintf("<p>Previous balance: <strong>%s %s</strong>.</p>", report.FormatAmount(r.Prev), fiat),
			fmt.Sprintf("<p>Variation: <strong>%s %s</strong>.</p>", report.FormatAmount(r.Variation), fiat),
		)
	}
	if r.HasRatios {
		lines = append(lines, fmt.Sprintf("<p>Percent change: <strong>%s</strong>.</p>", report.FormatPercent(r.PctChange)))
	}

	lines = append(lines,
		"<p>Breakdown by tokens and coins:</p>",
		r.HTMLTable(),
	)

	return strings.Join(lines, "\n")
}
