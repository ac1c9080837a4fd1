package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
)

const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 587
	DefaultHTTPPort = 8080
)

var ErrMissingCredentials = errors.New("SMTP_USERNAME and SMTP_PASSWORD must be set")

// CredentialsFunc supplies the SMTP username and secret when the server asks for them.
type CredentialsFunc func() (username, password string)

type SMTPConfig struct {
	Host       string
	Port       int
	Sender     string
	RequireTLS bool

	username string
	password string
}

// NewSMTPConfig builds a config from explicit values. Sender defaults to the username.
func NewSMTPConfig(host string, port int, username, password, sender string) *SMTPConfig {
	if sender == "" {
		sender = username
	}
	return &SMTPConfig{
		Host:       host,
		Port:       port,
		Sender:     sender,
		RequireTLS: true,
		username:   username,
		password:   password,
	}
}

// Credentials returns a closure over the configured username and secret.
func (c *SMTPConfig) Credentials() CredentialsFunc {
	user, pass := c.username, c.password
	return func() (string, string) {
		return user, pass
	}
}

func (c *SMTPConfig) Username() string {
	return c.username
}

// Validate only checks that every value is present.
func (c *SMTPConfig) Validate() error {
	if c.Host == "" {
		return errors.New("SMTP host is empty")
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid SMTP port %d", c.Port)
	}
	if c.username == "" || c.password == "" {
		return ErrMissingCredentials
	}
	if c.Sender == "" {
		return errors.New("sender address is empty")
	}
	return nil
}

type Config struct {
	Port           int
	AllowedOrigins []string
	SMTP           *SMTPConfig
}

// Load reads the process configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	httpPort, err := intFromEnv("PORT", DefaultHTTPPort)
	if err != nil {
		return nil, err
	}

	smtpPort, err := intFromEnv("SMTP_PORT", DefaultSMTPPort)
	if err != nil {
		return nil, err
	}

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = DefaultSMTPHost
	}

	smtp := NewSMTPConfig(host, smtpPort, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"), os.Getenv("SMTP_SENDER"))

	if v := os.Getenv("SMTP_REQUIRE_TLS"); v != "" {
		smtp.RequireTLS, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_REQUIRE_TLS %q: %w", v, err)
		}
	}

	if err := smtp.Validate(); err != nil {
		return nil, err
	}

	return &Config{
		Port:           httpPort,
		AllowedOrigins: splitOrigins(os.Getenv("ALLOWED_ORIGINS")),
		SMTP:           smtp,
	}, nil
}

func intFromEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
