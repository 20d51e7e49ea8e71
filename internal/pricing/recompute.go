package pricing

import (
	"github.com/shopspring/decimal"

	"booking-workers/internal/models"
)

// Inputs is an immutable snapshot of everything the derived figures depend on.
type Inputs struct {
	Mode Mode
	// ManualAgreement is only read in ModeManual.
	ManualAgreement decimal.NullDecimal
	BaseRate        decimal.Decimal
	Areas           Areas
	Discount        Discount

	Charges          []Charge
	Parking          Parking
	Cost             models.CostTemplate
	Taxes            TaxToggles
	Offer            *models.Offer
	BalconyInclusive bool

	KYCRequired   bool
	KYCDealAmount decimal.Decimal
	Slabs         []Slab
	// SlabsPricedAt is the plan base the slab amounts were last priced against. Slabs
	// keep their amounts, including hand-edited ones, while the base stays the same.
	SlabsPricedAt decimal.NullDecimal
}

// Totals holds every derived figure of a deal.
type Totals struct {
	AgreementValue         decimal.NullDecimal `json:"agreementValue"`
	AgreementValueWords    string              `json:"agreementValueWords"`
	Charges                []Charge            `json:"additionalCharges"`
	AdditionalChargesTotal decimal.Decimal     `json:"additionalChargesTotal"`
	ParkingTotal           decimal.Decimal     `json:"parkingTotal"`
	AmountBeforeTaxes      decimal.Decimal     `json:"amountBeforeTaxes"`
	Taxes                  TaxBreakdown        `json:"taxes"`
	OfferDiscount          decimal.Decimal     `json:"offerDiscountValue"`
	FinalAmount            decimal.Decimal     `json:"finalAmount"`
	Possession             PossessionCharges   `json:"possessionCharges"`
	GrandTotal             decimal.Decimal     `json:"grandTotal"`
	PaymentPlanBase        decimal.Decimal     `json:"paymentPlanBaseAmount"`
	Slabs                  []Slab              `json:"slabs"`
	SlabPercentTotal       int                 `json:"slabPercentTotal"`
	// NegativeFinalAmount is set when discounts and offers exceed the gross total.
	// The figure itself is left unclamped.
	NegativeFinalAmount bool `json:"negativeFinalAmount"`
}

// RecomputeAll evaluates the derived figures in dependency order: agreement value,
// charges and parking, taxes, offer, possession charges, grand total, payment plan.
func RecomputeAll(in Inputs) Totals {
	var t Totals

	if in.Mode == ModeManual {
		t.AgreementValue = in.ManualAgreement
	} else {
		t.AgreementValue = AgreementValue(in.BaseRate, in.Areas, in.Discount.AmountOrZero())
	}
	t.AgreementValueWords = AmountInWords(t.AgreementValue)
	agreement := decimal.Zero
	if t.AgreementValue.Valid {
		agreement = t.AgreementValue.Decimal
	}

	t.Charges, t.AdditionalChargesTotal = ApplyCharges(in.Charges, agreement)
	t.ParkingTotal = in.Parking.Total()
	t.AmountBeforeTaxes = agreement.Add(t.AdditionalChargesTotal).Add(in.Parking.Contribution())

	t.Taxes = Taxes(t.AmountBeforeTaxes, in.Cost, in.Taxes)
	t.OfferDiscount = OfferDiscount(in.Offer, t.AmountBeforeTaxes, t.Taxes.Total)
	t.FinalAmount = t.AmountBeforeTaxes.Add(t.Taxes.Total).Sub(t.OfferDiscount)
	t.NegativeFinalAmount = t.FinalAmount.IsNegative()

	t.Possession = Possession(in.Cost, in.Areas, in.BalconyInclusive, in.Taxes.LegalFeeEnabled)
	t.GrandTotal = t.FinalAmount.Add(t.Possession.TotalWithGST)
	if in.Taxes.RegistrationEnabled {
		t.GrandTotal = t.GrandTotal.Add(in.Cost.RegistrationAmount)
	}

	t.PaymentPlanBase = PlanBase(t.FinalAmount, in.KYCRequired, in.KYCDealAmount)
	if in.SlabsPricedAt.Valid && in.SlabsPricedAt.Decimal.Equal(t.PaymentPlanBase) {
		t.Slabs = append([]Slab(nil), in.Slabs...)
	} else {
		t.Slabs = RecomputeSlabAmounts(in.Slabs, t.PaymentPlanBase)
	}
	t.SlabPercentTotal = PercentTotal(t.Slabs)
	return t
}
