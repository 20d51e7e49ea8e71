package pricing

import (
	"github.com/shopspring/decimal"

	"booking-workers/internal/models"
)

// Defaults applied when the cost template leaves a possession input blank or invalid.
var (
	DefaultDevelopmentPSF    = decimal.NewFromInt(500)
	DefaultMaintenanceMonths = 6
	possessionGSTPercent     = decimal.NewFromInt(18)
	minimumDevelopmentPSF    = decimal.NewFromInt(1)
)

// PossessionCharges is the charge bucket billed at possession. It is taxed on its own
// and only meets the agreement-value stack in the grand total.
type PossessionCharges struct {
	AreaForCharges         decimal.Decimal `json:"areaForCharges"`
	ShareFee               decimal.Decimal `json:"shareFee"`
	DevelopmentPSF         decimal.Decimal `json:"developmentPsf"`
	Development            decimal.Decimal `json:"developmentAmount"`
	Electrical             decimal.Decimal `json:"electrical"`
	MaintenanceMonths      int             `json:"maintenanceMonths"`
	ProvisionalMaintenance decimal.Decimal `json:"provisionalMaintenance"`
	Legal                  decimal.Decimal `json:"legalAmount"`
	BaseForGST             decimal.Decimal `json:"baseForGst"`
	GST                    decimal.Decimal `json:"gst"`
	TotalWithGST           decimal.Decimal `json:"totalWithGst"`
}

// AreaForCharges picks the area possession charges are levied on. Balcony-inclusive
// projects use carpet + balcony; otherwise the first non-zero of carpet,
// carpet + balcony, super built-up wins.
func AreaForCharges(a Areas, balconyInclusive bool) decimal.Decimal {
	if balconyInclusive {
		return a.Carpet.Add(a.Balcony)
	}
	for _, candidate := range []decimal.Decimal{a.Carpet, a.Carpet.Add(a.Balcony), a.SuperBuiltup} {
		if !candidate.IsZero() {
			return candidate
		}
	}
	return decimal.Zero
}

// NormalizeDevelopmentPSF falls back to the default for blank or non-positive input
// and clamps anything below one up to one.
func NormalizeDevelopmentPSF(psf decimal.Decimal) decimal.Decimal {
	if !psf.IsPositive() {
		return DefaultDevelopmentPSF
	}
	return decimal.Max(minimumDevelopmentPSF, psf)
}

// NormalizeMaintenanceMonths falls back to the default month count for blank input.
func NormalizeMaintenanceMonths(months int) int {
	if months <= 0 {
		return DefaultMaintenanceMonths
	}
	return months
}

// Possession computes the possession charges. The share application fee is outside
// the GST base; GST is a fixed 18%.
func Possession(cost models.CostTemplate, areas Areas, balconyInclusive, legalEnabled bool) PossessionCharges {
	p := PossessionCharges{
		AreaForCharges:    AreaForCharges(areas, balconyInclusive),
		ShareFee:          cost.ShareApplicationFee,
		DevelopmentPSF:    NormalizeDevelopmentPSF(cost.DevelopmentChargesPSF),
		Electrical:        cost.ElectricalCharges,
		MaintenanceMonths: NormalizeMaintenanceMonths(cost.ProvisionalMaintenanceMonths),
		Legal:             decimal.Zero,
	}
	p.Development = p.DevelopmentPSF.Mul(p.AreaForCharges)
	p.ProvisionalMaintenance = cost.ProvisionalMaintenancePSF.
		Mul(p.AreaForCharges).
		Mul(decimal.NewFromInt(int64(p.MaintenanceMonths)))
	if legalEnabled {
		p.Legal = cost.LegalFeeAmount
	}

	p.BaseForGST = p.Legal.Add(p.Development).Add(p.Electrical).Add(p.ProvisionalMaintenance)
	p.GST = p.BaseForGST.Mul(possessionGSTPercent).Div(hundred)
	p.TotalWithGST = p.ShareFee.Add(p.BaseForGST).Add(p.GST)
	return p
}
