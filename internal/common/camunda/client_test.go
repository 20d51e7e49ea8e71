package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-workers/internal/common/config"
	apperrors "booking-workers/internal/common/errors"
)

var fastRetry = &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestRetry_RecoversFromTransientError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry, "complete-job", func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetry_GivesUpAndMaps(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int
		wantCode  apperrors.ErrorCode
	}{
		{
			name:      "deadline exceeded retried then timeout",
			err:       errors.New("context deadline exceeded"),
			wantCalls: 3,
			wantCode:  apperrors.ErrCodeTimeout,
		},
		{
			name:      "not found is not retried",
			err:       errors.New("rpc error: code = NotFound desc = job not found"),
			wantCalls: 1,
			wantCode:  apperrors.ErrCodeResourceNotFound,
		},
		{
			name:      "unauthenticated is not retried",
			err:       errors.New("rpc error: code = Unauthenticated"),
			wantCalls: 1,
			wantCode:  apperrors.ErrCodeAuthentication,
		},
		{
			name:      "anything else is an external service error",
			err:       errors.New("rpc error: code = InvalidArgument"),
			wantCalls: 1,
			wantCode:  apperrors.ErrCodeExternalService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), fastRetry, "complete-job", func(context.Context) error {
				calls++
				return tt.err
			})

			require.Error(t, err)
			assert.Equal(t, tt.wantCalls, calls)
			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}

	err := Retry(ctx, slow, "topology", func(context.Context) error {
		cancel()
		return errors.New("connection reset by peer")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientConfigFrom(t *testing.T) {
	cfg := ClientConfigFrom(config.CamundaConfig{BrokerAddress: "localhost:26500", RequestTimeout: 15000})
	assert.Equal(t, "localhost:26500", cfg.GatewayAddress)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, DefaultRetryConfig, cfg.RetryConfig)
}
