package models

import "github.com/shopspring/decimal"

type KYCStatus string

const (
	KYCPending  KYCStatus = "PENDING"
	KYCApproved KYCStatus = "APPROVED"
	KYCRejected KYCStatus = "REJECTED"
)

// KYCRequest is the request sent to the KYC approval workflow.
type KYCRequest struct {
	ProjectID string          `json:"projectId"`
	UnitID    string          `json:"unitId"`
	LeadID    string          `json:"leadId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

type KYCRecord struct {
	ID     string    `json:"id"`
	Status KYCStatus `json:"status"`
}
