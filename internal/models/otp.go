package models

import "time"

const (
	OTPSubject    = "Your Verification Code"
	OTPBodyPrefix = "Your One-Time Password (OTP) is: "
)

// OutboundMessage is built fresh for every send attempt and discarded afterwards.
type OutboundMessage struct {
	From    string
	To      string
	Subject string
	Body    string
}

func NewOTPMessage(from, to, otp string) *OutboundMessage {
	return &OutboundMessage{
		From:    from,
		To:      to,
		Subject: OTPSubject,
		Body:    OTPBodyPrefix + otp,
	}
}

// Delivery is the receipt for an accepted submission.
type Delivery struct {
	OTP       string    `json:"otp"`
	Recipient string    `json:"recipient"`
	SentAt    time.Time `json:"sent_at"`
}

type SendOTPRequest struct {
	Email string `json:"email"`
}
