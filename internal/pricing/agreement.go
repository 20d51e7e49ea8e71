// Package pricing computes every derived figure of a booking deal from an immutable
// snapshot of its inputs. Nothing here mutates state; see RecomputeAll.
package pricing

import (
	"github.com/shopspring/decimal"

	"booking-workers/internal/models"
)

// Mode says whether the agreement value follows rate × area or a typed-in figure.
type Mode string

const (
	ModeAuto   Mode = "AUTO"
	ModeManual Mode = "MANUAL"
)

// Inventory field names in lookup priority order.
var (
	RateFields      = []string{"rate_psf", "psf_rate", "rate_per_sqft", "base_rate", "rate"}
	CarpetFields    = []string{"carpet_area", "rera_carpet_area", "carpet_area_sqft"}
	SuperFields     = []string{"super_builtup_area", "super_built_up_area", "saleable_area", "sba"}
	BalconyFields   = []string{"balcony_area", "balcony_sqft"}
	TotalCostFields = []string{"total_cost", "agreement_value", "total_price"}
)

var hundred = decimal.NewFromInt(100)

// Areas holds the area figures of the selected unit in square feet.
type Areas struct {
	Carpet       decimal.Decimal `json:"carpetArea"`
	SuperBuiltup decimal.Decimal `json:"superBuiltupArea"`
	Balcony      decimal.Decimal `json:"balconyArea"`
}

// UnitFigures is what the autofill reads off a unit's inventory record.
type UnitFigures struct {
	BaseRate  decimal.Decimal     `json:"baseRate"`
	Areas     Areas               `json:"areas"`
	TotalCost decimal.NullDecimal `json:"totalCost"`
}

// ResolveUnitFigures reads rate, areas and the direct total cost from a unit record.
// Calling it twice on the same unit yields the same figures.
func ResolveUnitFigures(unit models.Unit) UnitFigures {
	var f UnitFigures
	f.BaseRate, _ = unit.Inventory.Decimal(RateFields...)
	f.Areas.Carpet, _ = unit.Inventory.Decimal(CarpetFields...)
	f.Areas.SuperBuiltup, _ = unit.Inventory.Decimal(SuperFields...)
	f.Areas.Balcony, _ = unit.Inventory.Decimal(BalconyFields...)
	if total, ok := unit.Inventory.Decimal(TotalCostFields...); ok {
		f.TotalCost = decimal.NewNullDecimal(total)
	}
	return f
}

// EffectiveArea is carpet plus balcony when a balcony is present, else carpet alone.
func EffectiveArea(a Areas) decimal.Decimal {
	if a.Balcony.IsPositive() {
		return a.Carpet.Add(a.Balcony)
	}
	return a.Carpet
}

// AgreementValue computes round(rate × effectiveArea) − discount. It is empty, not zero,
// when the rate or the carpet area is missing.
func AgreementValue(rate decimal.Decimal, areas Areas, discount decimal.Decimal) decimal.NullDecimal {
	if !rate.IsPositive() || !areas.Carpet.IsPositive() {
		return decimal.NullDecimal{}
	}
	gross := rate.Mul(EffectiveArea(areas)).Round(0)
	return decimal.NewNullDecimal(gross.Sub(discount))
}
