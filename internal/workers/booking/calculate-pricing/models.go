package calculatepricing

import (
	"booking-workers/internal/common/logger"
	"booking-workers/internal/deal"
	"booking-workers/internal/quote"
)

// Input is the booking form's pricing section as sent by the process.
type Input struct {
	deal.Input
}

type Output struct {
	Pricing         deal.Summary `json:"pricing"`
	AmountInWords   string       `json:"amountInWords"`
	PaymentPlanBase string       `json:"paymentPlanBase"`
	FinalAmount     string       `json:"finalAmount"`
}

type ServiceDependencies struct {
	Quoter *quote.Quoter
	Logger logger.Logger
}

// Variables is what the job completes with.
func (o *Output) Variables() map[string]interface{} {
	return map[string]interface{}{
		"pricing":         o.Pricing,
		"amountInWords":   o.AmountInWords,
		"paymentPlanBase": o.PaymentPlanBase,
		"finalAmount":     o.FinalAmount,
		"planIsComplete":  o.Pricing.PlanIsComplete,
	}
}
