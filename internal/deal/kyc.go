package deal

import (
	"github.com/shopspring/decimal"

	"booking-workers/internal/models"
)

func (d *Deal) SetKYCRequired(required bool) error {
	if d.kyc.Frozen() {
		return ErrKYCFrozen
	}
	d.kyc.Required = required
	if !required {
		d.kyc.DealAmount = decimal.Zero
	}
	d.recompute()
	return nil
}

func (d *Deal) SetKYCDealAmount(amount decimal.Decimal) error {
	if d.kyc.Frozen() {
		return ErrKYCFrozen
	}
	d.kyc.DealAmount = amount
	d.recompute()
	return nil
}

// AttachKYCRequest records the id returned by the KYC workflow, freezing the KYC inputs.
func (d *Deal) AttachKYCRequest(requestID string, status models.KYCStatus) {
	d.kyc.RequestID = requestID
	d.kyc.Status = status
}

// UpdateKYCStatus refreshes the status of an already attached request.
func (d *Deal) UpdateKYCStatus(status models.KYCStatus) {
	if d.kyc.Frozen() {
		d.kyc.Status = status
	}
}

// RemoveKYC drops the KYC requirement. It is refused once a request has been sent.
func (d *Deal) RemoveKYC() error {
	if d.kyc.Frozen() {
		return ErrKYCFrozen
	}
	d.kyc = KYC{}
	d.recompute()
	return nil
}
