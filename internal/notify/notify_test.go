// AngelaMos | 2026
// notify_test.go

package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leadcap/internal/config"
)

func TestNew_PicksTransport(t *testing.T) {
	logger := slog.Default()

	_, isLog := New(config.SMTPConfig{}, logger).(*LogNotifier)
	assert.True(t, isLog)

	_, isSMTP := New(config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "a@x.com"}, logger).(*SMTPNotifier)
	assert.True(t, isSMTP)
}

func TestLogNotifier_WritesCode(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, n.SendOTP(context.Background(), "a@x.com", "482913", 10*time.Minute))

	out := buf.String()
	assert.Contains(t, out, `"to":"a@x.com"`)
	assert.Contains(t, out, `"code":"482913"`)
}

func TestOTPBody(t *testing.T) {
	body := otpBody("482913", 10*time.Minute)
	assert.Contains(t, body, "482913")
	assert.Contains(t, body, "expires in 10 minutes")

	assert.Contains(t, otpBody("1", 90*time.Second), "expires in 2 minutes")
}
