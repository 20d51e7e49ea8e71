package calculatepricing

import (
	"context"

	"github.com/shopspring/decimal"

	"booking-workers/internal/common/logger"
	"booking-workers/internal/pricing"
	"booking-workers/internal/quote"
)

type Service struct {
	quoter *quote.Quoter
	logger logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{quoter: deps.Quoter, logger: deps.Logger}
}

// Execute prices the form and returns every derived figure.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	d, err := s.quoter.Deal(ctx, input.Input)
	if err != nil {
		return nil, err
	}

	summary := d.Summary()
	totals := summary.Totals

	s.logger.Debug("Deal priced", map[string]interface{}{
		"projectId":   summary.ProjectID,
		"unitId":      summary.UnitID,
		"pricingMode": string(summary.PricingMode),
		"finalAmount": totals.FinalAmount.String(),
		"slabPercent": totals.SlabPercentTotal,
	})

	return &Output{
		Pricing:         summary,
		AmountInWords:   pricing.AmountInWords(decimal.NewNullDecimal(totals.FinalAmount)),
		PaymentPlanBase: totals.PaymentPlanBase.StringFixed(2),
		FinalAmount:     totals.FinalAmount.StringFixed(2),
	}, nil
}
