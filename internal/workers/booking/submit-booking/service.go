package submitbooking

import (
	"context"
	"errors"
	"strings"
	"sync"

	"booking-workers/internal/booking"
	apperrors "booking-workers/internal/common/errors"
	"booking-workers/internal/common/logger"
	"booking-workers/internal/common/metrics"
	"booking-workers/internal/quote"
)

type Service struct {
	quoter  *quote.Quoter
	backend booking.Backend
	logger  logger.Logger

	mu         sync.Mutex
	submitters map[string]*submitterRef
}

type submitterRef struct {
	submitter *booking.Submitter
	refs      int
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{
		quoter:     deps.Quoter,
		backend:    deps.Backend,
		logger:     deps.Logger,
		submitters: make(map[string]*submitterRef),
	}
}

// Execute validates, assembles and submits the booking. Rejections and backend
// refusals complete the job with their state; only transient failures return an error.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	b, err := s.quoter.Booking(ctx, input.Form)
	if err != nil {
		return nil, err
	}
	b.IdempotencyKey = input.IdempotencyKey

	key := input.SessionID
	if key == "" {
		key = input.IdempotencyKey
	}
	submitter := s.acquire(key)
	defer s.release(key)

	result, err := submitter.Submit(ctx, b)
	if errors.Is(err, booking.ErrSubmissionInProgress) {
		return nil, apperrors.NewBookingSubmissionFailedError(err)
	}

	if result != nil {
		metrics.BookingSubmissions.WithLabelValues(strings.ToLower(string(result.State))).Inc()
		if result.State == booking.StateRejected {
			metrics.ValidationRejections.WithLabelValues(result.Rule).Inc()
		}
	}
	if err != nil {
		return nil, apperrors.NewBookingSubmissionFailedError(err)
	}
	return &Output{Result: *result}, nil
}

// acquire returns the submitter shared by every in-flight job for key.
func (s *Service) acquire(key string) *booking.Submitter {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.submitters[key]
	if !ok {
		ref = &submitterRef{submitter: booking.NewSubmitter(s.backend, s.logger)}
		s.submitters[key] = ref
	}
	ref.refs++
	return ref.submitter
}

func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref, ok := s.submitters[key]; ok {
		ref.refs--
		if ref.refs <= 0 {
			delete(s.submitters, key)
		}
	}
}
