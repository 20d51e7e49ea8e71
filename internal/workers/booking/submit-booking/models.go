package submitbooking

import (
	"booking-workers/internal/booking"
	"booking-workers/internal/common/logger"
	"booking-workers/internal/quote"
)

type Input struct {
	quote.Form
	// SessionID scopes the one-submission-at-a-time guard. Jobs without one are
	// guarded by their idempotency key.
	SessionID      string `json:"sessionId,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type Output struct {
	booking.Result
}

type ServiceDependencies struct {
	Quoter  *quote.Quoter
	Backend booking.Backend
	Logger  logger.Logger
}

func (o *Output) Variables() map[string]interface{} {
	vars := map[string]interface{}{
		"bookingState":   string(o.State),
		"bookingMessage": o.Message,
	}
	if o.BookingID != "" {
		vars["bookingId"] = o.BookingID
	}
	if o.Rule != "" {
		vars["bookingValidationRule"] = o.Rule
	}
	if len(o.Warnings) > 0 {
		vars["bookingWarnings"] = o.Warnings
	}
	return vars
}
