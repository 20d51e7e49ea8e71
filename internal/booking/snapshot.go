package booking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"booking-workers/internal/common/validation"
	"booking-workers/internal/deal"
	"booking-workers/internal/pricing"
)

// SnapshotVersion is bumped whenever the cost breakdown layout changes.
const SnapshotVersion = 1

// CostBreakdown is the audit copy of every figure the booking was priced with.
// Decimals encode as JSON strings.
type CostBreakdown struct {
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generatedAt"`
	ProjectID   string    `json:"projectId"`
	UnitID      string    `json:"unitId"`
	Mode        string    `json:"pricingMode"`

	BaseRate            decimal.Decimal     `json:"baseRate"`
	Areas               pricing.Areas       `json:"areas"`
	DiscountPercent     decimal.NullDecimal `json:"discountPercent"`
	DiscountAmount      decimal.NullDecimal `json:"discountAmount"`
	AgreementValue      decimal.Decimal     `json:"agreementValue"`
	AgreementValueWords string              `json:"agreementValueWords"`

	AdditionalCharges      []pricing.Charge `json:"additionalCharges"`
	AdditionalChargesTotal decimal.Decimal  `json:"additionalChargesTotal"`
	Parking                pricing.Parking  `json:"parking"`
	ParkingTotal           decimal.Decimal  `json:"parkingTotal"`
	AmountBeforeTaxes      decimal.Decimal  `json:"amountBeforeTaxes"`

	TaxToggles    pricing.TaxToggles   `json:"taxToggles"`
	Taxes         pricing.TaxBreakdown `json:"taxes"`
	OfferID       string               `json:"offerId,omitempty"`
	OfferDiscount decimal.Decimal      `json:"offerDiscountValue"`
	FinalAmount   decimal.Decimal      `json:"finalAmount"`

	Possession pricing.PossessionCharges `json:"possessionCharges"`
	GrandTotal decimal.Decimal           `json:"grandTotal"`

	PaymentPlan SnapshotPlan `json:"paymentPlan"`
	KYC         deal.KYC     `json:"kyc"`
}

type SnapshotPlan struct {
	Type         pricing.PlanType `json:"type"`
	TemplateID   string           `json:"templateId,omitempty"`
	BaseAmount   decimal.Decimal  `json:"baseAmount"`
	PercentTotal int              `json:"percentTotal"`
	Slabs        []pricing.Slab   `json:"slabs"`
}

// Snapshot captures the deal's current figures.
func Snapshot(d *deal.Deal, now time.Time) CostBreakdown {
	t := d.Totals()
	plan := d.Plan()
	discount := d.Discount()

	s := CostBreakdown{
		Version:                SnapshotVersion,
		GeneratedAt:            now.UTC(),
		ProjectID:              d.ProjectID(),
		Mode:                   string(d.Mode()),
		BaseRate:               d.BaseRate(),
		Areas:                  d.Areas(),
		DiscountPercent:        discount.Percent,
		DiscountAmount:         discount.Amount,
		AgreementValue:         t.AgreementValue.Decimal,
		AgreementValueWords:    t.AgreementValueWords,
		AdditionalCharges:      d.Charges(),
		AdditionalChargesTotal: t.AdditionalChargesTotal,
		Parking:                d.Parking(),
		ParkingTotal:           t.ParkingTotal,
		AmountBeforeTaxes:      t.AmountBeforeTaxes,
		TaxToggles:             d.TaxToggles(),
		Taxes:                  t.Taxes,
		OfferDiscount:          t.OfferDiscount,
		FinalAmount:            t.FinalAmount,
		Possession:             t.Possession,
		GrandTotal:             t.GrandTotal,
		PaymentPlan: SnapshotPlan{
			Type:         plan.Type,
			TemplateID:   plan.TemplateID,
			BaseAmount:   t.PaymentPlanBase,
			PercentTotal: t.SlabPercentTotal,
			Slabs:        plan.Slabs,
		},
		KYC: d.KYC(),
	}
	if u := d.Unit(); u != nil {
		s.UnitID = u.ID
	}
	if o := d.Offer(); o != nil {
		s.OfferID = o.ID
	}
	return s
}

var (
	decimalPattern = `^-?[0-9]+(\.[0-9]+)?$`
	zero           = 0.0
	hundredPct     = 100.0
)

func money() validation.Property {
	return validation.Property{Type: "string", Pattern: &decimalPattern}
}

// costBreakdownSchema pins the fields the backend audit trail reads.
var costBreakdownSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"version":             {Type: "integer", Minimum: floatPtr(1)},
		"projectId":           {Type: "string"},
		"unitId":              {Type: "string", MinLength: intPtr(1)},
		"pricingMode":         {Type: "string", Enum: []string{string(pricing.ModeAuto), string(pricing.ModeManual)}},
		"agreementValue":      money(),
		"agreementValueWords": {Type: "string", MinLength: intPtr(1)},
		"additionalCharges": {
			Type: "array",
			Items: &validation.Property{
				Type: "object",
				Properties: map[string]validation.Property{
					"name":   {Type: "string"},
					"type":   {Type: "string", Enum: []string{string(pricing.ChargeFixed), string(pricing.ChargePercentage)}},
					"value":  money(),
					"amount": money(),
				},
				Required: []string{"name", "type", "value", "amount"},
			},
		},
		"additionalChargesTotal": money(),
		"amountBeforeTaxes":      money(),
		"taxes": {
			Type: "object",
			Properties: map[string]validation.Property{
				"gstAmount":       money(),
				"stampDutyAmount": money(),
				"totalTaxes":      money(),
			},
			Required: []string{"gstAmount", "stampDutyAmount", "totalTaxes"},
		},
		"offerDiscountValue": money(),
		"finalAmount":        money(),
		"possessionCharges": {
			Type: "object",
			Properties: map[string]validation.Property{
				"totalWithGst": money(),
			},
			Required: []string{"totalWithGst"},
		},
		"grandTotal": money(),
		"paymentPlan": {
			Type: "object",
			Properties: map[string]validation.Property{
				"type":         {Type: "string", Enum: []string{string(pricing.PlanMaster), string(pricing.PlanCustom)}},
				"baseAmount":   money(),
				"percentTotal": {Type: "integer", Minimum: &hundredPct, Maximum: &hundredPct},
				"slabs": {
					Type: "array",
					Items: &validation.Property{
						Type: "object",
						Properties: map[string]validation.Property{
							"name":       {Type: "string"},
							"percentage": {Type: "integer", Minimum: &zero, Maximum: &hundredPct},
							"amount":     money(),
						},
						Required: []string{"percentage", "amount"},
					},
				},
			},
			Required: []string{"type", "baseAmount", "percentTotal", "slabs"},
		},
	},
	Required: []string{
		"version", "unitId", "pricingMode", "agreementValue", "agreementValueWords",
		"amountBeforeTaxes", "taxes", "finalAmount", "possessionCharges", "grandTotal", "paymentPlan",
	},
}

// Encode checks the snapshot against the cost breakdown schema and returns its JSON.
func (s CostBreakdown) Encode() ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal cost breakdown: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode cost breakdown: %w", err)
	}
	result := validation.ValidateDocument(doc, costBreakdownSchema)
	if !result.Valid {
		return nil, fmt.Errorf("cost breakdown failed schema check: %s", strings.Join(result.GetErrorMessages(), "; "))
	}
	return raw, nil
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
