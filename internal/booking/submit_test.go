package booking

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"booking-workers/internal/common/logger"
	"booking-workers/internal/common/salesapi"
	"booking-workers/internal/models"
)

// ==========================
// Mock Backend
// ==========================

type MockBackend struct {
	mock.Mock
	fields map[string]string
}

func (m *MockBackend) SubmitBooking(ctx context.Context, contentType string, body io.Reader, idempotencyKey string) (string, error) {
	m.fields = readFields(contentType, body)
	args := m.Called(ctx, idempotencyKey)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) LinkKYC(ctx context.Context, requestID, bookingID string) error {
	args := m.Called(ctx, requestID, bookingID)
	return args.Error(0)
}

func readFields(contentType string, body io.Reader) map[string]string {
	fields := map[string]string{}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fields
	}
	reader := multipart.NewReader(body, params["boundary"])
	for {
		part, err := reader.NextPart()
		if err != nil {
			return fields
		}
		if part.FileName() == "" {
			data, _ := io.ReadAll(part)
			fields[part.FormName()] = string(data)
		}
	}
}

func newTestSubmitter(t *testing.T, backend Backend) *Submitter {
	s := NewSubmitter(backend, logger.NewTestLogger(t))
	s.now = func() time.Time { return fixedNow }
	return s
}

// ==========================
// Submitter
// ==========================

func TestSubmit_RejectionMakesNoNetworkCall(t *testing.T) {
	backend := new(MockBackend)
	s := newTestSubmitter(t, backend)

	b := validBooking(t)
	delete(b.Uploads, PrimarySlot(DocPANBack))

	res, err := s.Submit(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, StateRejected, res.State)
	assert.Equal(t, RulePrimaryPAN, res.Rule)
	assert.Contains(t, res.Message, "PAN card back side image")
	assert.Equal(t, StateIdle, s.State())
	backend.AssertNotCalled(t, "SubmitBooking", mock.Anything, mock.Anything)
}

func TestSubmit_Success(t *testing.T) {
	backend := new(MockBackend)
	backend.On("SubmitBooking", mock.Anything, "idem-1").Return("bk-1", nil)
	s := newTestSubmitter(t, backend)

	b := validBooking(t)
	b.IdempotencyKey = "idem-1"

	res, err := s.Submit(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, "bk-1", res.BookingID)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, StateSuccess, s.State())
	assert.Equal(t, "u-101", backend.fields["unit_id"])
	assert.Contains(t, backend.fields["cost_breakdown"], `"version":1`)
	backend.AssertNotCalled(t, "LinkKYC", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_UnassemblablePayloadFailsWithoutRetry(t *testing.T) {
	backend := new(MockBackend)
	s := newTestSubmitter(t, backend)

	b := validBooking(t)
	unit := *b.Deal.Unit()
	unit.ID = ""
	b.Deal.SelectUnit(unit)
	require.Nil(t, Validate(b))

	res, err := s.Submit(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, GenericSubmitError, res.Message)
	assert.Equal(t, StateIdle, s.State())
	backend.AssertNotCalled(t, "SubmitBooking", mock.Anything, mock.Anything)
}

func TestSubmit_GeneratesIdempotencyKey(t *testing.T) {
	backend := new(MockBackend)
	backend.On("SubmitBooking", mock.Anything, mock.MatchedBy(func(key string) bool { return len(key) == 36 })).Return("bk-2", nil)
	s := newTestSubmitter(t, backend)

	b := validBooking(t)
	_, err := s.Submit(context.Background(), b)
	require.NoError(t, err)
	assert.Len(t, b.IdempotencyKey, 36)
	backend.AssertExpectations(t)
}

func TestSubmit_KYCLinkFailureIsOnlyAWarning(t *testing.T) {
	backend := new(MockBackend)
	backend.On("SubmitBooking", mock.Anything, mock.Anything).Return("bk-3", nil)
	backend.On("LinkKYC", mock.Anything, "kyc-9", "bk-3").Return(errors.New("link endpoint down"))
	s := newTestSubmitter(t, backend)

	b := validBooking(t)
	require.NoError(t, b.Deal.SetKYCRequired(true))
	require.NoError(t, b.Deal.SetKYCDealAmount(decimal.NewFromInt(1000000)))
	b.Deal.AttachKYCRequest("kyc-9", models.KYCApproved)

	res, err := s.Submit(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, "bk-3", res.BookingID)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "kyc-9")
	assert.Equal(t, "kyc-9", backend.fields["kyc_request_id"])
	backend.AssertExpectations(t)
}

func TestSubmit_BackendRejectionIsAggregated(t *testing.T) {
	backend := new(MockBackend)
	backend.On("SubmitBooking", mock.Anything, mock.Anything).Return("", &salesapi.APIError{
		Operation:  "submit booking",
		StatusCode: http.StatusUnprocessableEntity,
		Body:       []byte(`{"errors":{"unit_id":["Unit already booked"],"applicants.0.pan":"PAN blacklisted"}}`),
	})
	s := newTestSubmitter(t, backend)

	res, err := s.Submit(context.Background(), validBooking(t))
	require.NoError(t, err)
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, "applicants.0.pan: PAN blacklisted\nunit_id: Unit already booked", res.Message)
	assert.Equal(t, StateIdle, s.State())
}

func TestSubmit_TransientFailureReturnsError(t *testing.T) {
	backend := new(MockBackend)
	backend.On("SubmitBooking", mock.Anything, mock.Anything).Return("", &salesapi.APIError{
		Operation:  "submit booking",
		StatusCode: http.StatusServiceUnavailable,
	})
	s := newTestSubmitter(t, backend)

	res, err := s.Submit(context.Background(), validBooking(t))
	require.Error(t, err)
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, GenericSubmitError, res.Message)
	assert.Equal(t, StateIdle, s.State())
}

type blockingBackend struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingBackend) SubmitBooking(ctx context.Context, contentType string, body io.Reader, key string) (string, error) {
	close(b.entered)
	<-b.release
	return "bk-slow", nil
}

func (b *blockingBackend) LinkKYC(ctx context.Context, requestID, bookingID string) error {
	return nil
}

func TestSubmit_ConcurrentSubmitIsRefused(t *testing.T) {
	backend := &blockingBackend{entered: make(chan struct{}), release: make(chan struct{})}
	s := newTestSubmitter(t, backend)

	slow, second := validBooking(t), validBooking(t)

	var wg sync.WaitGroup
	var first *Result
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, firstErr = s.Submit(context.Background(), slow)
	}()

	select {
	case <-backend.entered:
	case <-time.After(5 * time.Second):
		close(backend.release)
		wg.Wait()
		require.NoError(t, firstErr)
		t.Fatalf("first submission never reached the backend: %+v", first)
	}
	assert.Equal(t, StateSubmitting, s.State())

	_, err := s.Submit(context.Background(), second)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(backend.release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, "bk-slow", first.BookingID)
}
