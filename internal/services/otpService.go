package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"otpmailer/internal/models"
	"otpmailer/internal/utils"
)

type OTPService interface {
	// SendOTP generates a code, emails it to recipient and returns it. On failure
	// the code is empty and the error is a *DeliveryError.
	SendOTP(ctx context.Context, recipient string) (string, error)
	Deliver(ctx context.Context, recipient string) (*models.Delivery, error)
}

type otpService struct {
	emailService EmailService
	sender       string
	generate     func() (string, error)
	now          func() time.Time
}

func NewOTPService(emailService EmailService, sender string) OTPService {
	return &otpService{
		emailService: emailService,
		sender:       sender,
		generate:     utils.GenerateOTP,
		now:          time.Now,
	}
}

func (s *otpService) SendOTP(ctx context.Context, recipient string) (string, error) {
	d, err := s.Deliver(ctx, recipient)
	if err != nil {
		return "", err
	}
	return d.OTP, nil
}

// Deliver makes exactly one submission attempt.
func (s *otpService) Deliver(ctx context.Context, recipient string) (*models.Delivery, error) {
	otpCode, err := s.generate()
	if err != nil {
		log.Error().Err(err).Str("recipient", recipient).Msg("Error generating OTP")
		return nil, &DeliveryError{Kind: KindUnknown, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, s.fail(recipient, err)
	}

	msg := models.NewOTPMessage(s.sender, recipient, otpCode)
	if err := s.emailService.SendEmail(msg); err != nil {
		return nil, s.fail(recipient, err)
	}

	log.Info().Str("recipient", recipient).Str("host", s.emailService.Host()).Msg("OTP email sent successfully")

	return &models.Delivery{
		OTP:       otpCode,
		Recipient: recipient,
		SentAt:    s.now(),
	}, nil
}

func (s *otpService) fail(recipient string, err error) error {
	de := newDeliveryError(err)
	log.Error().Err(de.Err).Str("recipient", recipient).Str("kind", string(de.Kind)).Msg("Error sending OTP email")
	return de
}
