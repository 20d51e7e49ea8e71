package validatebooking

import (
	"booking-workers/internal/common/logger"
	"booking-workers/internal/quote"
)

type Input struct {
	quote.Form
}

type Output struct {
	IsValid bool   `json:"isValid"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

type ServiceDependencies struct {
	Quoter *quote.Quoter
	Logger logger.Logger
}

func (o *Output) Variables() map[string]interface{} {
	vars := map[string]interface{}{
		"bookingValid":             o.IsValid,
		"bookingValidationMessage": o.Message,
	}
	if o.Rule != "" {
		vars["bookingValidationRule"] = o.Rule
	}
	return vars
}
