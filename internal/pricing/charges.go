package pricing

import (
	"github.com/shopspring/decimal"

	"booking-workers/internal/models"
)

type ChargeType string

const (
	ChargeFixed      ChargeType = "FIXED"
	ChargePercentage ChargeType = "PERCENTAGE"
)

// Charge is an additional charge line. Amount is always derived, see ApplyCharges.
type Charge struct {
	Name   string          `json:"name"`
	Type   ChargeType      `json:"type"`
	Value  decimal.Decimal `json:"value"`
	Amount decimal.Decimal `json:"amount"`
}

// ChargeAmount is the value itself for FIXED charges and a percentage of the
// agreement value for PERCENTAGE charges.
func ChargeAmount(c Charge, agreement decimal.Decimal) decimal.Decimal {
	if c.Type == ChargePercentage {
		return agreement.Mul(c.Value).Div(hundred)
	}
	return c.Value
}

// ApplyCharges returns a copy of charges with every Amount recomputed, and their sum.
func ApplyCharges(charges []Charge, agreement decimal.Decimal) ([]Charge, decimal.Decimal) {
	out := make([]Charge, len(charges))
	total := decimal.Zero
	for i, c := range charges {
		c.Amount = ChargeAmount(c, agreement)
		total = total.Add(c.Amount)
		out[i] = c
	}
	return out, total
}

type Parking struct {
	Required      bool            `json:"required"`
	Count         int             `json:"count"`
	AmountPerUnit decimal.Decimal `json:"amountPerUnit"`
}

// Total is count × amount per unit.
func (p Parking) Total() decimal.Decimal {
	if p.Count <= 0 {
		return decimal.Zero
	}
	return p.AmountPerUnit.Mul(decimal.NewFromInt(int64(p.Count)))
}

// Contribution is what parking adds to the amount before taxes.
func (p Parking) Contribution() decimal.Decimal {
	if !p.Required {
		return decimal.Zero
	}
	return p.Total()
}

// TaxToggles gate whether each component contributes to totals.
type TaxToggles struct {
	GSTEnabled          bool `json:"gstEnabled"`
	StampDutyEnabled    bool `json:"stampDutyEnabled"`
	RegistrationEnabled bool `json:"registrationEnabled"`
	LegalFeeEnabled     bool `json:"legalFeeEnabled"`
}

// AllTaxes has every component enabled, which is how a fresh deal starts.
func AllTaxes() TaxToggles {
	return TaxToggles{GSTEnabled: true, StampDutyEnabled: true, RegistrationEnabled: true, LegalFeeEnabled: true}
}

type TaxBreakdown struct {
	BaseForTaxes decimal.Decimal `json:"baseForTaxes"`
	GST          decimal.Decimal `json:"gstAmount"`
	StampDuty    decimal.Decimal `json:"stampDutyAmount"`
	Registration decimal.Decimal `json:"registrationAmount"`
	LegalFee     decimal.Decimal `json:"legalFeeAmount"`
	Total        decimal.Decimal `json:"totalTaxes"`
}

// Taxes computes GST and stamp duty on base, plus the flat registration and legal fees,
// each only when its toggle is on.
func Taxes(base decimal.Decimal, cost models.CostTemplate, toggles TaxToggles) TaxBreakdown {
	t := TaxBreakdown{
		BaseForTaxes: base,
		GST:          decimal.Zero,
		StampDuty:    decimal.Zero,
		Registration: decimal.Zero,
		LegalFee:     decimal.Zero,
	}
	if toggles.GSTEnabled {
		t.GST = base.Mul(cost.GSTPercent).Div(hundred)
	}
	if toggles.StampDutyEnabled {
		t.StampDuty = base.Mul(cost.StampDutyPercent).Div(hundred)
	}
	if toggles.RegistrationEnabled {
		t.Registration = cost.RegistrationAmount
	}
	if toggles.LegalFeeEnabled {
		t.LegalFee = cost.LegalFeeAmount
	}
	t.Total = t.GST.Add(t.StampDuty).Add(t.Registration).Add(t.LegalFee)
	return t
}

// OfferDiscount applies a percentage offer to amountBeforeTaxes + totalTaxes;
// flat offers pass through unchanged.
func OfferDiscount(offer *models.Offer, amountBeforeTaxes, totalTaxes decimal.Decimal) decimal.Decimal {
	if offer == nil {
		return decimal.Zero
	}
	switch offer.Type {
	case models.OfferPercentage:
		return amountBeforeTaxes.Add(totalTaxes).Mul(offer.Value).Div(hundred)
	case models.OfferAmount:
		return offer.Value
	default:
		return decimal.Zero
	}
}
