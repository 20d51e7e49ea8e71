package validatebooking

import (
	"context"

	"booking-workers/internal/booking"
	"booking-workers/internal/common/logger"
	"booking-workers/internal/common/metrics"
	"booking-workers/internal/quote"
)

type Service struct {
	quoter *quote.Quoter
	logger logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{quoter: deps.Quoter, logger: deps.Logger}
}

// Execute reports the first failing booking rule. A rejection is a normal result.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	b, err := s.quoter.Booking(ctx, input.Form)
	if err != nil {
		return nil, err
	}

	if rej := booking.Validate(b); rej != nil {
		metrics.ValidationRejections.WithLabelValues(rej.Rule).Inc()
		s.logger.Info("Booking failed validation", map[string]interface{}{
			"rule":    rej.Rule,
			"message": rej.Message,
		})
		return &Output{IsValid: false, Rule: rej.Rule, Message: rej.Message}, nil
	}

	return &Output{IsValid: true, Message: "Booking is ready to submit"}, nil
}
