package services

import (
	"errors"
	"fmt"
	"net/smtp"
	"slices"
	"strings"

	"gopkg.in/gomail.v2"

	"otpmailer/internal/config"
	"otpmailer/internal/models"
)

// ErrTLSRequired is returned when the server asks for credentials on a
// connection that was not upgraded with STARTTLS.
var ErrTLSRequired = errors.New("smtp: refusing to authenticate over an unencrypted connection")

// Dialer opens an SMTP session, submits the messages and closes the session.
// *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailService interface {
	SendEmail(msg *models.OutboundMessage) error
	Host() string
}

type emailService struct {
	dialer Dialer
	host   string
}

func NewEmailService(cfg *config.SMTPConfig) EmailService {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username(), "")
	d.Auth = &credentialAuth{
		host:        cfg.Host,
		requireTLS:  cfg.RequireTLS,
		credentials: cfg.Credentials(),
	}
	return NewEmailServiceWithDialer(d, cfg.Host)
}

func NewEmailServiceWithDialer(d Dialer, host string) EmailService {
	return &emailService{dialer: d, host: host}
}

func (e *emailService) SendEmail(msg *models.OutboundMessage) error {
	m := gomail.NewMessage()

	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	return e.dialer.DialAndSend(m)
}

func (e *emailService) Host() string {
	return e.host
}

// credentialAuth implements smtp.Auth for PLAIN and LOGIN. Credentials are
// pulled from the callback only once the server asks for them. It keeps no
// per-session state, so one value is shared by concurrent sessions.
type credentialAuth struct {
	host        string
	requireTLS  bool
	credentials config.CredentialsFunc
}

func (a *credentialAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if a.requireTLS && !server.TLS {
		return "", nil, ErrTLSRequired
	}
	if server.Name != a.host {
		return "", nil, fmt.Errorf("smtp: wrong host name %q", server.Name)
	}

	if !slices.Contains(server.Auth, "PLAIN") && slices.Contains(server.Auth, "LOGIN") {
		return "LOGIN", nil, nil
	}
	username, password := a.credentials()
	return "PLAIN", []byte("\x00" + username + "\x00" + password), nil
}

func (a *credentialAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}

	username, password := a.credentials()
	switch prompt := strings.ToLower(strings.TrimSpace(string(fromServer))); {
	case strings.HasPrefix(prompt, "username"):
		return []byte(username), nil
	case strings.HasPrefix(prompt, "password"):
		return []byte(password), nil
	default:
		return nil, fmt.Errorf("smtp: unexpected server challenge %q", fromServer)
	}
}
