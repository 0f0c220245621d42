package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

var (
	// ErrSMTPHostPortRequired is returned when Host/Port are missing.
	ErrSMTPHostPortRequired = errors.New("smtp host and port are required")
	// ErrSMTPNoRecipients is returned when To/Cc/Bcc are all empty.
	ErrSMTPNoRecipients = errors.New("no recipients provided")
	// ErrSMTPNoSender is returned when both Message.From and the configured default From are empty.
	ErrSMTPNoSender = errors.New("no sender provided")
)

// SMTPConfig carries the relay settings and sender credentials. It is built once
// at startup from configuration and injected, never read at send time.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the default sender address when Message.From is empty.
	From string
	// FromName is an optional display name for From.
	FromName string
	// TLS enables mandatory TLS; port 465 uses implicit TLS, others STARTTLS.
	// Without it STARTTLS is still used whenever the relay offers it.
	TLS bool
	// Timeout bounds dial and every SMTP command. Zero keeps the client default.
	Timeout time.Duration
}

// SMTP is a Mail implementation backed by wneessen/go-mail.
type SMTP struct {
	cfg    SMTPConfig
	policy gomail.TLSPolicy
	opts   []gomail.Option
}

// NewSMTP constructs an SMTP mail sender.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	policy := gomail.TLSOpportunistic
	if cfg.TLS {
		policy = gomail.TLSMandatory
	}

	opts := []gomail.Option{gomail.WithPort(cfg.Port), gomail.WithTLSPolicy(policy)}
	if cfg.TLS && cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}

	return &SMTP{cfg: cfg, policy: policy, opts: opts}, nil
}

// Send builds the message and delivers it over a fresh connection.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.cfg.Host, s.opts...)
	if err != nil {
		return fmt.Errorf("mail: create client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}

	return nil
}

func (s *SMTP) build(msg Message) (*gomail.Msg, error) {
	if !msg.hasRecipient() {
		return nil, ErrSMTPNoRecipients
	}

	from := msg.From
	if from == "" {
		from = s.cfg.From
	}
	if from == "" {
		return nil, ErrSMTPNoSender
	}

	m := gomail.NewMsg()

	// the configured sender keeps its display name even when callers set it explicitly
	if from == s.cfg.From && s.cfg.FromName != "" {
		if err := m.FromFormat(s.cfg.FromName, from); err != nil {
			return nil, fmt.Errorf("mail: set from: %w", err)
		}
	} else if err := m.From(from); err != nil {
		return nil, fmt.Errorf("mail: set from: %w", err)
	}

	if len(msg.To) > 0 {
		if err := m.To(msg.To...); err != nil {
			return nil, fmt.Errorf("mail: set to: %w", err)
		}
	}
	if len(msg.Cc) > 0 {
		if err := m.Cc(msg.Cc...); err != nil {
			return nil, fmt.Errorf("mail: set cc: %w", err)
		}
	}
	if len(msg.Bcc) > 0 {
		if err := m.Bcc(msg.Bcc...); err != nil {
			return nil, fmt.Errorf("mail: set bcc: %w", err)
		}
	}

	m.Subject(msg.Subject)

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)
	default:
		m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	}

	return m, nil
}

// Close is a no-op; connections are opened per message.
func (s *SMTP) Close() error {
	return nil
}
