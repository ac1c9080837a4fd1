package services

import (
	"context"
	"errors"
	"net"
	"net/textproto"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otpmailer/internal/config"
	"otpmailer/internal/models"
)

var otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

func newTestOTPService(d Dialer) *otpService {
	return NewOTPService(NewEmailServiceWithDialer(d, "smtp.gmail.com"), "bot@gmail.com").(*otpService)
}

func TestSendOTPSuccess(t *testing.T) {
	d := &fakeDialer{}
	svc := newTestOTPService(d)

	otp, err := svc.SendOTP(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Regexp(t, otpPattern, otp)

	assert.Equal(t, 1, d.calls, "exactly one send attempt")
	require.Len(t, d.sent, 1)

	sent := d.sent[0]
	assert.Equal(t, "bot@gmail.com", sent.from)
	assert.Equal(t, []string{"user@example.com"}, sent.to)
	assert.Equal(t, []string{"Your Verification Code"}, sent.msg.GetHeader("Subject"))
	assert.Contains(t, sent.raw, "Your One-Time Password (OTP) is: "+otp)
}

func TestSendOTPEmbedsReturnedCode(t *testing.T) {
	d := &fakeDialer{}
	svc := newTestOTPService(d)

	for i := 0; i < 50; i++ {
		otp, err := svc.SendOTP(context.Background(), "user@example.com")
		require.NoError(t, err)
		assert.Contains(t, d.sent[i].raw, models.OTPBodyPrefix+otp)
	}
	assert.Equal(t, 50, d.calls)
}

func TestDeliverReceipt(t *testing.T) {
	fixed := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	svc := newTestOTPService(&fakeDialer{})
	svc.generate = func() (string, error) { return "482913", nil }
	svc.now = func() time.Time { return fixed }

	d, err := svc.Deliver(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, &models.Delivery{OTP: "482913", Recipient: "user@example.com", SentAt: fixed}, d)
}

func TestSendOTPMalformedRecipient(t *testing.T) {
	d := &fakeDialer{}
	svc := newTestOTPService(d)

	otp, err := svc.SendOTP(context.Background(), "not-an-email")
	assert.Empty(t, otp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRecipientRejected)
	assert.Equal(t, KindRecipient, KindOf(err))
	assert.Equal(t, 1, d.calls)
}

func TestSendOTPTransportFailures(t *testing.T) {
	tests := []struct {
		name    string
		dialer  *fakeDialer
		kind    ErrorKind
		errorIs error
	}{
		{
			name:    "auth rejected",
			dialer:  &fakeDialer{dialErr: &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"}},
			kind:    KindAuth,
			errorIs: ErrAuthRejected,
		},
		{
			name:    "tls required",
			dialer:  &fakeDialer{dialErr: ErrTLSRequired},
			kind:    KindAuth,
			errorIs: ErrAuthRejected,
		},
		{
			name:    "recipient rejected by server",
			dialer:  &fakeDialer{sendErr: &textproto.Error{Code: 550, Msg: "5.1.1 The email account that you tried to reach does not exist"}},
			kind:    KindRecipient,
			errorIs: ErrRecipientRejected,
		},
		{
			name:    "network failure",
			dialer:  &fakeDialer{dialErr: &netTimeout{}},
			kind:    KindConnection,
			errorIs: ErrConnection,
		},
		{
			name:   "unclassified",
			dialer: &fakeDialer{dialErr: errors.New("something odd")},
			kind:   KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestOTPService(tt.dialer)

			assert.NotPanics(t, func() {
				otp, err := svc.SendOTP(context.Background(), "user@example.com")
				assert.Empty(t, otp)
				require.Error(t, err)

				var de *DeliveryError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tt.kind, de.Kind)
				if tt.errorIs != nil {
					assert.ErrorIs(t, err, tt.errorIs)
				}
			})
			assert.Equal(t, 1, tt.dialer.calls, "no retries")
			assert.Empty(t, tt.dialer.sent)
		})
	}
}

func TestSendOTPCancelledContext(t *testing.T) {
	d := &fakeDialer{}
	svc := newTestOTPService(d)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	otp, err := svc.SendOTP(ctx, "user@example.com")
	assert.Empty(t, otp)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Zero(t, d.calls)
}

func TestSendOTPGeneratorFailure(t *testing.T) {
	d := &fakeDialer{}
	svc := newTestOTPService(d)
	svc.generate = func() (string, error) { return "", errors.New("no entropy") }

	otp, err := svc.SendOTP(context.Background(), "user@example.com")
	assert.Empty(t, otp)
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Zero(t, d.calls)
}

func TestSendOTPConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cfg := config.NewSMTPConfig("127.0.0.1", port, "bot@gmail.com", "app-password", "")
	svc := NewOTPService(NewEmailService(cfg), cfg.Sender)

	otp, err := svc.SendOTP(context.Background(), "user@example.com")
	assert.Empty(t, otp)
	assert.ErrorIs(t, err, ErrConnection)
}
