package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"otpmailer/internal/config"
	"otpmailer/internal/mailserver"
	"otpmailer/internal/services"
)

type Server struct {
	port           int
	allowedOrigins []string
	httpServer     *http.Server
	relay          mailserver.Service
	otpService     services.OTPService
}

func NewServer(cfg *config.Config) *Server {
	emailService := services.NewEmailService(cfg.SMTP)
	relay := mailserver.New(cfg.SMTP.Host, cfg.SMTP.Port)
	return newServer(cfg, relay, services.NewOTPService(emailService, cfg.SMTP.Sender))
}

func newServer(cfg *config.Config, relay mailserver.Service, otpService services.OTPService) *Server {
	s := &Server{
		port:           cfg.Port,
		allowedOrigins: cfg.AllowedOrigins,
		relay:          relay,
		otpService:     otpService,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Int("port", s.port).Str("smtp_host", s.relay.Host()).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
