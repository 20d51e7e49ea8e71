package checkkycstatus

import (
	"context"
	"strings"

	"booking-workers/internal/common/logger"
	"booking-workers/internal/models"
	"booking-workers/internal/quote"
)

type Service struct {
	kyc    StatusClient
	logger logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{kyc: deps.KYC, logger: deps.Logger}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	record, err := s.kyc.GetKYCStatus(ctx, input.RequestID)
	if err != nil {
		return nil, quote.UpstreamError("kyc status", err)
	}

	status := models.KYCStatus(strings.ToUpper(string(record.Status)))
	if status == "" {
		status = models.KYCPending
	}

	s.logger.Debug("KYC status fetched", map[string]interface{}{
		"kycRequestId": input.RequestID,
		"status":       string(status),
	})
	return &Output{RequestID: input.RequestID, Status: status}, nil
}
