package mailserver

import (
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultProbeTimeout = 3 * time.Second

// Service reports whether the SMTP relay answers. The probe stops after the
// greeting and a NOOP; it never authenticates or submits mail.
type Service interface {
	Health() map[string]string
	Host() string
}

type service struct {
	host    string
	port    int
	timeout time.Duration
}

func New(host string, port int) Service {
	return &service{host: host, port: port, timeout: defaultProbeTimeout}
}

func (s *service) Host() string {
	return s.host
}

func (s *service) Health() map[string]string {
	if err := s.probe(); err != nil {
		log.Error().Err(err).Str("smtp_host", s.host).Msg("SMTP health check failed")
		return map[string]string{
			"message":   "smtp down",
			"smtp_host": s.host,
			"error":     err.Error(),
		}
	}

	return map[string]string{
		"message":   "It's healthy",
		"smtp_host": s.host,
	}
}

func (s *service) probe() error {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)), s.timeout)
	if err != nil {
		return err
	}
	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		conn.Close()
		return err
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if err := c.Noop(); err != nil {
		return err
	}
	return c.Quit()
}
