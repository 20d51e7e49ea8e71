// internal/models/pricing.go
package models

import "github.com/shopspring/decimal"

// CostTemplate is the per-lead tax and fee template.
type CostTemplate struct {
	GSTPercent                   decimal.Decimal `json:"gstPercent"`
	StampDutyPercent             decimal.Decimal `json:"stampDutyPercent"`
	RegistrationAmount           decimal.Decimal `json:"registrationAmount"`
	LegalFeeAmount               decimal.Decimal `json:"legalFeeAmount"`
	ShareApplicationFee          decimal.Decimal `json:"shareApplicationFee"`
	DevelopmentChargesPSF        decimal.Decimal `json:"developmentChargesPsf"`
	ElectricalCharges            decimal.Decimal `json:"electricalCharges"`
	ProvisionalMaintenancePSF    decimal.Decimal `json:"provisionalMaintenancePsf"`
	ProvisionalMaintenanceMonths int             `json:"provisionalMaintenanceMonths"`
}

type OfferType string

const (
	OfferPercentage OfferType = "PERCENTAGE"
	OfferAmount     OfferType = "AMOUNT"
)

// Offer is a promotional discount applied after taxes.
type Offer struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  OfferType       `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// PlanTemplate is a predefined (MASTER) payment plan.
type PlanTemplate struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Slabs []SlabTemplate `json:"slabs"`
}

type SlabTemplate struct {
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
	Days       int             `json:"days,omitempty"`
	DueDate    string          `json:"dueDate,omitempty"`
}
