package services

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/textproto"
	"strconv"
	"strings"
)

type ErrorKind string

const (
	KindAuth       ErrorKind = "auth"
	KindConnection ErrorKind = "connection"
	KindRecipient  ErrorKind = "recipient"
	KindUnknown    ErrorKind = "unknown"
)

var (
	ErrAuthRejected      = errors.New("smtp authentication rejected")
	ErrConnection        = errors.New("smtp connection failed")
	ErrRecipientRejected = errors.New("recipient rejected")
)

// DeliveryError is returned by SendOTP for every failed submission.
type DeliveryError struct {
	Kind ErrorKind
	Err  error
}

func (e *DeliveryError) Error() string {
	return "otp delivery failed (" + string(e.Kind) + "): " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func (e *DeliveryError) Is(target error) bool {
	switch target {
	case ErrAuthRejected:
		return e.Kind == KindAuth
	case ErrConnection:
		return e.Kind == KindConnection
	case ErrRecipientRejected:
		return e.Kind == KindRecipient
	}
	return false
}

// KindOf reports the kind of a delivery failure, KindUnknown for anything else.
func KindOf(err error) ErrorKind {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

func newDeliveryError(err error) *DeliveryError {
	return &DeliveryError{Kind: classify(err), Err: err}
}

// gomail flattens failures after the dial (address parsing, MAIL, RCPT, DATA)
// into text of the form "gomail: could not send email <n>: <cause>".
const gomailSendPrefix = "gomail: could not send email "

func classify(err error) ErrorKind {
	if errors.Is(err, ErrTLSRequired) {
		return KindAuth
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return kindForCode(protoErr.Code, false)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
		return KindConnection
	}

	var (
		netErr  net.Error
		certErr *tls.CertificateVerificationError
		hostErr x509.HostnameError
		recErr  tls.RecordHeaderError
	)
	if errors.As(err, &netErr) || errors.As(err, &certErr) || errors.As(err, &hostErr) || errors.As(err, &recErr) {
		return KindConnection
	}

	msg := err.Error()
	if cause, ok := strings.CutPrefix(msg, gomailSendPrefix); ok {
		if _, c, found := strings.Cut(cause, ": "); found {
			cause = c
		}
		return classifySendCause(cause)
	}
	if strings.Contains(msg, "doesn't support AUTH") {
		return KindAuth
	}
	return KindUnknown
}

func classifySendCause(cause string) ErrorKind {
	if strings.HasPrefix(cause, "gomail: invalid address") || strings.HasPrefix(cause, "mail: ") {
		return KindRecipient
	}
	if len(cause) >= 3 {
		if code, err := strconv.Atoi(cause[:3]); err == nil {
			return kindForCode(code, true)
		}
	}
	for _, s := range []string{"EOF", "connection reset", "broken pipe", "i/o timeout"} {
		if strings.Contains(cause, s) {
			return KindConnection
		}
	}
	return KindUnknown
}

func kindForCode(code int, afterDial bool) ErrorKind {
	switch code {
	case 530, 534, 535, 538:
		return KindAuth
	case 421:
		return KindConnection
	case 501, 550, 551, 553, 554:
		if afterDial {
			return KindRecipient
		}
	}
	return KindUnknown
}
