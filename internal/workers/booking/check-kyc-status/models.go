package checkkycstatus

import (
	"context"

	"booking-workers/internal/common/logger"
	"booking-workers/internal/models"
)

type Input struct {
	RequestID string `json:"kycRequestId"`
}

type Output struct {
	RequestID string           `json:"kycRequestId"`
	Status    models.KYCStatus `json:"kycStatus"`
}

// StatusClient reads KYC request status. *salesapi.Client satisfies it.
type StatusClient interface {
	GetKYCStatus(ctx context.Context, requestID string) (*models.KYCRecord, error)
}

type ServiceDependencies struct {
	KYC    StatusClient
	Logger logger.Logger
}

func (o *Output) Variables() map[string]interface{} {
	return map[string]interface{}{
		"kycRequestId": o.RequestID,
		"kycStatus":    string(o.Status),
		"kycApproved":  o.Status == models.KYCApproved,
		"kycRejected":  o.Status == models.KYCRejected,
	}
}
