package handlers

import (
	"net/http"

	"otpmailer/internal/mailserver"
	"otpmailer/internal/utils"
)

type CommonHandler struct {
	relay mailserver.Service
}

func NewCommonHandler(relay mailserver.Service) *CommonHandler {
	return &CommonHandler{relay: relay}
}

func (h *CommonHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	stats := h.relay.Health()

	status := http.StatusOK
	if _, failed := stats["error"]; failed {
		status = http.StatusServiceUnavailable
	}
	utils.RespondWithJSON(w, status, stats)
}
