package pricing

import "github.com/shopspring/decimal"

// Discount holds the two faces of the unit discount. At most one is user-driven.
type Discount struct {
	Percent decimal.NullDecimal `json:"percent"`
	Amount  decimal.NullDecimal `json:"amount"`
}

// BasePrice resolves what a discount is measured against: the unit's direct total
// cost, else rate × area, else the current agreement value. It is empty when none is known.
func BasePrice(totalCost decimal.NullDecimal, rate decimal.Decimal, areas Areas, agreement decimal.NullDecimal) decimal.NullDecimal {
	if totalCost.Valid && totalCost.Decimal.IsPositive() {
		return totalCost
	}
	if area := EffectiveArea(areas); rate.IsPositive() && area.IsPositive() {
		return decimal.NewNullDecimal(rate.Mul(area))
	}
	if agreement.Valid && agreement.Decimal.IsPositive() {
		return agreement
	}
	return decimal.NullDecimal{}
}

// DeriveDiscount fills the missing side of d from the other one. With both or neither
// side set, or no base price, d is returned unchanged.
func DeriveDiscount(d Discount, base decimal.NullDecimal) Discount {
	if !base.Valid || !base.Decimal.IsPositive() {
		return d
	}
	switch {
	case d.Percent.Valid && !d.Amount.Valid:
		d.Amount = decimal.NewNullDecimal(base.Decimal.Mul(d.Percent.Decimal).Div(hundred).Round(2))
	case d.Amount.Valid && !d.Percent.Valid:
		d.Percent = decimal.NewNullDecimal(d.Amount.Decimal.Div(base.Decimal).Mul(hundred).Round(2))
	}
	return d
}

// AmountOrZero is the discount amount to subtract from the agreement value.
func (d Discount) AmountOrZero() decimal.Decimal {
	if d.Amount.Valid {
		return d.Amount.Decimal
	}
	return decimal.Zero
}
