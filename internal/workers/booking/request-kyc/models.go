package requestkyc

import (
	"context"

	"booking-workers/internal/common/logger"
	"booking-workers/internal/models"
	"booking-workers/internal/quote"
)

type Input struct {
	quote.Form
}

type Output struct {
	RequestID       string           `json:"kycRequestId"`
	Status          models.KYCStatus `json:"kycStatus"`
	DealAmount      string           `json:"kycDealAmount"`
	PaymentPlanBase string           `json:"paymentPlanBase"`
}

// KYCClient creates approval requests. *salesapi.Client satisfies it.
type KYCClient interface {
	CreateKYCRequest(ctx context.Context, req models.KYCRequest) (*models.KYCRecord, error)
}

type ServiceDependencies struct {
	Quoter *quote.Quoter
	KYC    KYCClient
	Logger logger.Logger
}

func (o *Output) Variables() map[string]interface{} {
	return map[string]interface{}{
		"kycRequestId":    o.RequestID,
		"kycStatus":       string(o.Status),
		"kycDealAmount":   o.DealAmount,
		"paymentPlanBase": o.PaymentPlanBase,
	}
}
