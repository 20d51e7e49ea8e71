package checkkycstatus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"booking-workers/internal/common/camunda/camundatest"
	"booking-workers/internal/common/config"
	"booking-workers/internal/common/logger"
	"booking-workers/internal/common/salesapi"
	"booking-workers/internal/models"
)

type MockStatusClient struct {
	mock.Mock
}

func (m *MockStatusClient) GetKYCStatus(ctx context.Context, requestID string) (*models.KYCRecord, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.KYCRecord), args.Error(1)
}

func createHandler(t *testing.T, kyc StatusClient) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{Enabled: true, MaxJobsActive: 5, Timeout: 5 * time.Second},
		KYC:          kyc,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func TestHandler_Handle_Statuses(t *testing.T) {
	tests := []struct {
		name         string
		returned     models.KYCStatus
		wantStatus   string
		wantApproved bool
		wantRejected bool
	}{
		{name: "approved", returned: models.KYCApproved, wantStatus: "APPROVED", wantApproved: true},
		{name: "rejected lower case", returned: "rejected", wantStatus: "REJECTED", wantRejected: true},
		{name: "empty is pending", returned: "", wantStatus: "PENDING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kyc := new(MockStatusClient)
			kyc.On("GetKYCStatus", mock.Anything, "kyc-1").Return(&models.KYCRecord{ID: "kyc-1", Status: tt.returned}, nil)

			client := camundatest.NewJobClient()
			createHandler(t, kyc).Handle(client, camundatest.Job(21, TaskType, map[string]interface{}{"kycRequestId": "kyc-1"}))

			vars := client.Completed()[21]
			require.NotNil(t, vars)
			assert.Equal(t, tt.wantStatus, vars["kycStatus"])
			assert.Equal(t, tt.wantApproved, vars["kycApproved"])
			assert.Equal(t, tt.wantRejected, vars["kycRejected"])
		})
	}
}

func TestHandler_Handle_Errors(t *testing.T) {
	t.Run("missing id throws", func(t *testing.T) {
		client := camundatest.NewJobClient()
		createHandler(t, new(MockStatusClient)).Handle(client, camundatest.Job(22, TaskType, map[string]interface{}{}))

		require.Len(t, client.Thrown(), 1)
		assert.Equal(t, "BUSINESS_RULE_VIOLATION", client.Thrown()[0].ErrorCode)
	})

	t.Run("unknown request throws not found", func(t *testing.T) {
		kyc := new(MockStatusClient)
		kyc.On("GetKYCStatus", mock.Anything, "kyc-404").Return(nil, &salesapi.APIError{StatusCode: 404})

		client := camundatest.NewJobClient()
		createHandler(t, kyc).Handle(client, camundatest.Job(23, TaskType, map[string]interface{}{"kycRequestId": "kyc-404"}))

		require.Len(t, client.Thrown(), 1)
		assert.Equal(t, "RESOURCE_NOT_FOUND", client.Thrown()[0].ErrorCode)
	})

	t.Run("server error is retried", func(t *testing.T) {
		kyc := new(MockStatusClient)
		kyc.On("GetKYCStatus", mock.Anything, "kyc-1").Return(nil, &salesapi.APIError{StatusCode: 500})

		client := camundatest.NewJobClient()
		createHandler(t, kyc).Handle(client, camundatest.Job(24, TaskType, map[string]interface{}{"kycRequestId": "kyc-1"}))

		require.Len(t, client.Failed(), 1)
		assert.Empty(t, client.Thrown())
	})
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	cfg := createConfigFromAppConfig(&config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: true, MaxJobsActive: 3, Timeout: 750},
	}}, nil)
	assert.Equal(t, 3, cfg.MaxJobsActive)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
}
