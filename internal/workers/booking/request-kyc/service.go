package requestkyc

import (
	"context"
	"strings"

	apperrors "booking-workers/internal/common/errors"
	"booking-workers/internal/common/logger"
	"booking-workers/internal/common/metrics"
	"booking-workers/internal/models"
	"booking-workers/internal/quote"
)

type Service struct {
	quoter *quote.Quoter
	kyc    KYCClient
	logger logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{quoter: deps.Quoter, kyc: deps.KYC, logger: deps.Logger}
}

// Execute sends the KYC approval request for the deal's carve-out. Once a request
// exists the KYC section is frozen and a second request is refused.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	d, err := s.quoter.Deal(ctx, input.Input)
	if err != nil {
		return nil, err
	}

	kyc := d.KYC()
	switch {
	case kyc.Frozen():
		return nil, apperrors.NewKYCFrozenError(kyc.RequestID)
	case !kyc.Required:
		return nil, apperrors.NewPricingInputInvalidError("kyc is not marked as required")
	case !kyc.DealAmount.IsPositive():
		return nil, apperrors.NewPricingInputInvalidError("kyc deal amount must be positive")
	}

	record, err := s.kyc.CreateKYCRequest(ctx, models.KYCRequest{
		ProjectID: d.ProjectID(),
		UnitID:    d.Unit().ID,
		LeadID:    input.LeadID,
		Amount:    kyc.DealAmount,
	})
	if err != nil {
		metrics.KYCRequests.WithLabelValues("error").Inc()
		if stdErr := quote.UpstreamError("kyc request", err); !stdErr.Retryable {
			return nil, stdErr
		}
		return nil, apperrors.NewKYCRequestFailedError(err)
	}

	status := record.Status
	if status == "" {
		status = models.KYCPending
	}
	d.AttachKYCRequest(record.ID, status)
	metrics.KYCRequests.WithLabelValues(strings.ToLower(string(status))).Inc()

	s.logger.Info("KYC request created", map[string]interface{}{
		"kycRequestId": record.ID,
		"status":       string(status),
		"unitId":       d.Unit().ID,
	})

	return &Output{
		RequestID:       record.ID,
		Status:          status,
		DealAmount:      kyc.DealAmount.StringFixed(2),
		PaymentPlanBase: d.Totals().PaymentPlanBase.StringFixed(2),
	}, nil
}
