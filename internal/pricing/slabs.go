package pricing

import (
	"github.com/shopspring/decimal"

	"booking-workers/internal/models"
)

type PlanType string

const (
	PlanMaster PlanType = "MASTER"
	PlanCustom PlanType = "CUSTOM"
)

// Slab is one instalment row. Percentage is always a whole number in [0, 100].
type Slab struct {
	Name       string          `json:"name"`
	Percentage int             `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    string          `json:"dueDate,omitempty"`
	Days       int             `json:"days,omitempty"`
}

// PlanBase is the amount the payment plan spreads: the final amount less the KYC carve-out.
func PlanBase(finalAmount decimal.Decimal, kycRequired bool, kycDealAmount decimal.Decimal) decimal.Decimal {
	if kycRequired {
		return finalAmount.Sub(kycDealAmount)
	}
	return finalAmount
}

// AmountForPercentage is base × pct / 100.
func AmountForPercentage(base decimal.Decimal, pct int) decimal.Decimal {
	return base.Mul(decimal.NewFromInt(int64(pct))).Div(hundred)
}

// PercentageForAmount back-derives floor(amount / base × 100), clamped to [0, 100].
// A non-positive base yields 0.
func PercentageForAmount(base, amount decimal.Decimal) int {
	if !base.IsPositive() {
		return 0
	}
	pct := amount.Mul(hundred).Div(base).Floor().IntPart()
	return int(clamp(pct, 0, 100))
}

// SlabsFromTemplate copies a MASTER template, flooring each percentage, and prices
// every slab against base.
func SlabsFromTemplate(t models.PlanTemplate, base decimal.Decimal) []Slab {
	slabs := make([]Slab, len(t.Slabs))
	for i, st := range t.Slabs {
		pct := int(clamp(st.Percentage.Floor().IntPart(), 0, 100))
		slabs[i] = Slab{
			Name:       st.Name,
			Percentage: pct,
			Amount:     AmountForPercentage(base, pct),
			DueDate:    st.DueDate,
			Days:       st.Days,
		}
	}
	return slabs
}

// RecomputeSlabAmounts reprices every slab from its percentage after the base moved.
func RecomputeSlabAmounts(slabs []Slab, base decimal.Decimal) []Slab {
	out := make([]Slab, len(slabs))
	for i, s := range slabs {
		s.Amount = AmountForPercentage(base, s.Percentage)
		out[i] = s
	}
	return out
}

// PercentTotal sums slab percentages. Submission requires exactly 100.
func PercentTotal(slabs []Slab) int {
	total := 0
	for _, s := range slabs {
		total += s.Percentage
	}
	return total
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
