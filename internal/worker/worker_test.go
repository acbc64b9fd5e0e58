package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/storefront-api/internal/clock"
	"github.com/spec-kit/storefront-api/internal/config"
	"github.com/spec-kit/storefront-api/internal/events"
	"github.com/spec-kit/storefront-api/internal/ratelimit"
	"github.com/spec-kit/storefront-api/internal/service"
)

func TestNotificationWorkerDeliversOTP(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{SMSSenderID: "STOREF"})

	StartNotificationWorker(notifications, zap.New(core))
	StartNotificationWorker(nil, nil)

	registered := logs.FilterMessage("notification handlers registered").All()
	require.Len(t, registered, 1)

	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	err := dispatcher.Publish(context.Background(), events.New(events.EventOTPIssued, "u1", at, events.OTPIssuedPayload{
		Phone: "9876543210", Code: "123456", ExpiresAt: at.Add(10 * time.Minute),
	}))
	require.NoError(t, err)

	sms := logs.FilterMessage("sendSMSStub").All()
	require.Len(t, sms, 1)
	assert.Equal(t, "9876543210", sms[0].ContextMap()["to"])
	assert.Equal(t, "STOREF", sms[0].ContextMap()["sender_id"])
}

func TestCooldownSweeperEvictsIdleEntries(t *testing.T) {
	clk := clock.Fake(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	limiter := ratelimit.NewMemoryLimiter(clk, time.Minute, 5*time.Minute)

	ok, err := limiter.TryAcquire(context.Background(), "9876543210")
	require.NoError(t, err)
	require.True(t, ok)
	clk.Advance(6 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := StartCooldownSweeper(ctx, limiter, 5*time.Millisecond, zap.NewNop())

	require.Eventually(t, func() bool { return limiter.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestCooldownSweeperDisabled(t *testing.T) {
	done := StartCooldownSweeper(context.Background(), nil, time.Second, nil)
	_, open := <-done
	assert.False(t, open)
}
