// Package mail sends outbound email over SMTP.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// Message is one HTML email. Text, when set, is attached as the plain
// text alternative.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Config is the SMTP relay. Username may be empty for an open relay.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer delivers messages through one SMTP relay.
type Mailer struct {
	cfg Config
}

// New returns a Mailer. Connections are opened per Send.
func New(cfg Config) *Mailer { return &Mailer{cfg: cfg} }

func (m *Mailer) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}
	return gomail.NewClient(m.cfg.Host, opts...)
}

// Send dials the relay, delivers msg and closes the connection.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	gm, err := build(m.cfg.From, msg)
	if err != nil {
		return err
	}
	c, err := m.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, gm); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func build(from string, msg Message) (*gomail.Msg, error) {
	gm := gomail.NewMsg()
	if err := gm.From(from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := gm.To(msg.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	gm.Subject(msg.Subject)
	gm.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		gm.AddAlternativeString(gomail.TypeTextPlain, msg.Text)
	}
	return gm, nil
}
