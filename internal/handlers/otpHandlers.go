package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"otpmailer/internal/models"
	"otpmailer/internal/services"
	"otpmailer/internal/utils"
)

type OTPHandler struct {
	otpService services.OTPService
}

func NewOTPHandler(otpService services.OTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

func (h *OTPHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req models.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body for SendOTP")
		utils.SendJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		utils.SendJSONError(w, "email is required", http.StatusBadRequest)
		return
	}

	delivery, err := h.otpService.Deliver(r.Context(), req.Email)
	if err != nil {
		var de *services.DeliveryError
		kind := services.KindUnknown
		if errors.As(err, &de) {
			kind = de.Kind
		}
		utils.RespondWithJSON(w, http.StatusBadGateway, map[string]string{
			"error": "failed to send OTP email",
			"kind":  string(kind),
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, delivery)
}
