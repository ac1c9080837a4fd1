package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"otpmailer/internal/handlers"
	"otpmailer/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(middlewares.Cors(s.allowedOrigins))

	ch := handlers.NewCommonHandler(s.relay)
	r.HandleFunc("/health", ch.HealthHandler).Methods("GET")

	s.registerOTPRoutes(r)

	return r
}

func (s *Server) registerOTPRoutes(r *mux.Router) {
	oh := handlers.NewOTPHandler(s.otpService)
	r.HandleFunc("/api/otp/send", oh.SendOTP).Methods("POST", "OPTIONS")
}
