// Package mailer delivers quiz result emails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP sends the fixed results template with the rendered document attached.
type SMTP struct {
	dialer    *gomail.Dialer
	from      string
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewSMTP constructs an SMTP mailer.
func NewSMTP(cfg Config, logger zerolog.Logger) (*SMTP, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp host and sender address must be provided")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}

	return &SMTP{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:      cfg.From,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "mailer").Logger(),
	}, nil
}

// Send mails the results document to the submitter. The document is attached
// by payload and linked by URL in the body. The send is abandoned when the
// context expires; SMTP has no mid-flight cancellation, so the dial keeps
// running in the background until it finishes on its own.
func (s *SMTP) Send(ctx context.Context, to, displayName, documentName, documentURL string, document []byte) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your Quiz Results")
	msg.SetBody("text/html", s.buildBody(displayName, documentURL))
	msg.Attach(documentName, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(document)
		return err
	}))

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send results email: %w", err)
		}
		s.logger.Info().Str("to", to).Str("document", documentName).Msg("results email sent")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("results email timed out: %w", ctx.Err())
	}
}

// buildBody renders the fixed HTML template. The display name is
// user-supplied, so it is sanitized and escaped before interpolation.
func (s *SMTP) buildBody(displayName, documentURL string) string {
	name := html.EscapeString(s.sanitizer.Sanitize(displayName))

	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; color: #333;">
  <p>Dear %s,</p>
  <p>Thank you for completing the quiz. Please find attached your quiz results.</p>
  <p>You can also download them here: <a href="%s">quiz results</a>.</p>
  <p>Best regards,<br/>Quiz Team</p>
  <footer style="margin-top: 20px; font-size: 12px; color: #777;">
    <p>This is an automated message, please do not reply.</p>
  </footer>
</div>`, name, html.EscapeString(documentURL))
}
