package utils

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	OTPMin = 100000
	OTPMax = 999999
)

var otpSpan = big.NewInt(OTPMax - OTPMin + 1)

// GenerateOTP returns a uniformly random 6-digit code in [OTPMin, OTPMax].
func GenerateOTP() (string, error) {
	return GenerateOTPFrom(rand.Reader)
}

func GenerateOTPFrom(r io.Reader) (string, error) {
	n, err := rand.Int(r, otpSpan)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+OTPMin), nil
}
