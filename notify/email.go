/*
Package notify delivers confirmation emails for hour submissions.

PURPOSE:
  Implements payroll.Notifier over plain SMTP. The caller (the entries
  service) invokes it in the background and logs failures; nothing here
  ever blocks or fails the submission that triggered it.

DELIVERY:
  Plain-text message via net/smtp with optional AUTH. No retry queue:
  a lost confirmation email is an acceptable outcome, a blocked hours
  submission is not.
*/
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/pirouette/payroll-engine/config"
	"github.com/pirouette/payroll-engine/payroll"
)

// SMTPNotifier sends submission confirmations through one SMTP server.
type SMTPNotifier struct {
	cfg config.MailConfig
	log *zap.Logger

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(cfg config.MailConfig, log *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, log: log, send: smtp.SendMail}
}

// HoursLogged emails the TA a confirmation of their submission.
func (n *SMTPNotifier) HoursLogged(ctx context.Context, note payroll.HoursNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	msg := buildMessage(n.cfg.From, note)
	if err := n.send(n.cfg.Addr(), auth, n.cfg.From, []string{note.TAEmail}, msg); err != nil {
		return fmt.Errorf("failed to send confirmation to %s: %w", note.TAEmail, err)
	}

	n.log.Info("confirmation email sent", zap.String("ta_email", note.TAEmail))
	return nil
}

func buildMessage(from string, note payroll.HoursNotification) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", note.TAEmail)
	fmt.Fprintf(&b, "Subject: Hours Logged Confirmation\r\n")
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")

	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", note.TAName)
	fmt.Fprintf(&b, "Your hours have been logged:\r\n\r\n")
	fmt.Fprintf(&b, "  Date:  %s\r\n", note.Date.Format("January 2, 2006"))
	fmt.Fprintf(&b, "  Hours: %s\r\n", note.Hours.String())
	if note.Notes != "" {
		fmt.Fprintf(&b, "  Notes: %s\r\n", note.Notes)
	}
	fmt.Fprintf(&b, "\r\nIf anything looks wrong, contact the studio admin.\r\n")

	return []byte(b.String())
}
