package booking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"booking-workers/internal/common/logger"
	"booking-workers/internal/common/salesapi"
)

// ErrSubmissionInProgress is returned when Submit is called while another submission
// on the same Submitter has not finished.
var ErrSubmissionInProgress = errors.New("a booking submission is already in progress")

type State string

const (
	StateIdle       State = "IDLE"
	StateValidating State = "VALIDATING"
	StateRejected   State = "REJECTED"
	StateSubmitting State = "SUBMITTING"
	StateSuccess    State = "SUCCESS"
	StateFailed     State = "FAILED"
)

// Backend is the booking sink plus the KYC link call made after a successful booking.
type Backend interface {
	SubmitBooking(ctx context.Context, contentType string, body io.Reader, idempotencyKey string) (string, error)
	LinkKYC(ctx context.Context, requestID, bookingID string) error
}

// Result is the outcome of one Submit call. State is REJECTED, SUCCESS or FAILED.
type Result struct {
	State     State    `json:"state"`
	BookingID string   `json:"bookingId,omitempty"`
	Rule      string   `json:"rule,omitempty"`
	Message   string   `json:"message"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Submitter drives IDLE → VALIDATING → (REJECTED → IDLE) | SUBMITTING → (SUCCESS | FAILED → IDLE).
type Submitter struct {
	backend Backend
	logger  logger.Logger
	tracer  trace.Tracer
	now     func() time.Time

	saving atomic.Bool
	mu     sync.Mutex
	state  State
}

func NewSubmitter(backend Backend, log logger.Logger) *Submitter {
	return &Submitter{
		backend: backend,
		logger:  log,
		tracer:  otel.Tracer("booking-workers/booking"),
		now:     time.Now,
		state:   StateIdle,
	}
}

// State is the submitter's current state.
func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Submitter) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Submit validates b and, if it passes, assembles and posts the payload.
//
// A rejection, a backend refusal or a payload that cannot be assembled is reported in
// the Result with a nil error. The error is only set when the failure may be transient
// (transport errors, 5xx, 429). A failed KYC link after a successful booking is
// reported as a warning; the booking stands.
func (s *Submitter) Submit(ctx context.Context, b *Booking) (*Result, error) {
	if !s.saving.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInProgress
	}
	defer s.saving.Store(false)

	ctx, span := s.tracer.Start(ctx, "booking.submit")
	defer span.End()

	s.setState(StateValidating)
	if rej := Validate(b); rej != nil {
		span.SetAttributes(attribute.String("booking.rejected_rule", rej.Rule))
		s.logger.Info("Booking rejected", map[string]interface{}{
			"rule":    rej.Rule,
			"message": rej.Message,
		})
		s.setState(StateIdle)
		return &Result{State: StateRejected, Rule: rej.Rule, Message: rej.Message}, nil
	}

	s.setState(StateSubmitting)
	if b.IdempotencyKey == "" {
		b.IdempotencyKey = uuid.NewString()
	}
	span.SetAttributes(
		attribute.String("booking.project_id", b.Deal.ProjectID()),
		attribute.String("booking.unit_id", b.Deal.Unit().ID),
		attribute.String("booking.idempotency_key", b.IdempotencyKey),
	)

	// A payload that cannot be built will not build on a retry either.
	payload, err := Assemble(b, s.now())
	if err != nil {
		res, _ := s.fail(span, GenericSubmitError, fmt.Errorf("assemble booking: %w", err))
		return res, nil
	}

	var body bytes.Buffer
	contentType, err := payload.Encode(&body)
	if err != nil {
		res, _ := s.fail(span, GenericSubmitError, fmt.Errorf("encode booking: %w", err))
		return res, nil
	}

	bookingID, err := s.backend.SubmitBooking(ctx, contentType, &body, payload.IdempotencyKey)
	if err != nil {
		var apiErr *salesapi.APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			res, _ := s.fail(span, AggregateErrors(apiErr.Body), nil)
			return res, nil
		}
		return s.fail(span, GenericSubmitError, err)
	}

	res := &Result{State: StateSuccess, BookingID: bookingID, Message: "Booking created successfully"}
	span.SetAttributes(attribute.String("booking.id", bookingID))

	if kycID := b.Deal.KYC().RequestID; kycID != "" {
		if err := s.backend.LinkKYC(ctx, kycID, bookingID); err != nil {
			s.logger.Warn("KYC link failed after booking", map[string]interface{}{
				"bookingId":    bookingID,
				"kycRequestId": kycID,
				"error":        err.Error(),
			})
			res.Warnings = append(res.Warnings, fmt.Sprintf("Booking created but the KYC request %s could not be linked: %v", kycID, err))
		}
	}

	s.logger.Info("Booking submitted", map[string]interface{}{
		"bookingId": bookingID,
		"warnings":  len(res.Warnings),
	})
	s.setState(StateSuccess)
	return res, nil
}

func (s *Submitter) fail(span trace.Span, message string, err error) (*Result, error) {
	fields := map[string]interface{}{"message": message}
	if err != nil {
		fields["error"] = err.Error()
		span.RecordError(err)
	}
	span.SetStatus(codes.Error, message)
	s.logger.Error("Booking submission failed", fields)

	s.setState(StateIdle)
	return &Result{State: StateFailed, Message: message}, err
}
