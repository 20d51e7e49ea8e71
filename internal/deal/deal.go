// Package deal holds the mutable state of one booking attempt. Every mutation re-runs
// pricing.RecomputeAll so derived figures are never stale between calls.
package deal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"booking-workers/internal/models"
	"booking-workers/internal/pricing"
)

var (
	ErrKYCFrozen     = errors.New("kyc is frozen once a request has been sent")
	ErrOutOfRange    = errors.New("value out of range")
	ErrIndex         = errors.New("row index out of range")
	ErrNotCustomPlan = errors.New("rows can only be added to or removed from a custom plan")
)

type discountDriver int

const (
	driverNone discountDriver = iota
	driverPercent
	driverAmount
)

// KYC tracks the approval request gating large deals. Once RequestID is set, Required and
// DealAmount are frozen.
type KYC struct {
	Required   bool             `json:"required"`
	DealAmount decimal.Decimal  `json:"dealAmount"`
	RequestID  string           `json:"requestId,omitempty"`
	Status     models.KYCStatus `json:"status,omitempty"`
}

func (k KYC) Frozen() bool { return k.RequestID != "" }

// PaymentPlan is either a MASTER template copy or a CUSTOM user-authored schedule.
type PaymentPlan struct {
	Type       pricing.PlanType `json:"type"`
	TemplateID string           `json:"templateId,omitempty"`
	Slabs      []pricing.Slab   `json:"slabs"`
}

// Bounds limits the cost-template overrides a user may apply.
type Bounds struct {
	MaxGSTPercent            decimal.Decimal
	MaxStampDutyPercent      decimal.Decimal
	MaxMaintenanceMonths     int
	DefaultDevelopmentPSF    decimal.Decimal
	DefaultMaintenanceMonths int
}

func DefaultBounds() Bounds {
	return Bounds{
		MaxGSTPercent:            decimal.NewFromInt(28),
		MaxStampDutyPercent:      decimal.NewFromInt(10),
		MaxMaintenanceMonths:     120,
		DefaultDevelopmentPSF:    pricing.DefaultDevelopmentPSF,
		DefaultMaintenanceMonths: pricing.DefaultMaintenanceMonths,
	}
}

// Deal is one booking attempt. It is not safe for concurrent use; each job owns its own.
type Deal struct {
	bounds Bounds

	projectID        string
	balconyInclusive bool
	unit             *models.Unit
	unitTotalCost    decimal.NullDecimal

	baseRate decimal.Decimal
	areas    pricing.Areas
	discount pricing.Discount
	driver   discountDriver

	mode      pricing.Mode
	agreement decimal.NullDecimal

	charges []pricing.Charge
	parking pricing.Parking
	cost    models.CostTemplate
	taxes   pricing.TaxToggles
	offer   *models.Offer

	plan          PaymentPlan
	slabsPricedAt decimal.NullDecimal
	kyc           KYC

	totals pricing.Totals
}

// New starts a deal for project with every tax enabled and an empty custom plan.
func New(project *models.Project, bounds Bounds) *Deal {
	d := &Deal{
		bounds: bounds,
		mode:   pricing.ModeAuto,
		taxes:  pricing.AllTaxes(),
		plan:   PaymentPlan{Type: pricing.PlanCustom},
	}
	if project != nil {
		d.projectID = project.ID
		d.balconyInclusive = project.BalconyInclusiveCarpet
		d.parking.AmountPerUnit = project.ParkingPricePerUnit
	}
	d.recompute()
	return d
}

// ==========================
// Unit & Agreement Value
// ==========================

// SelectUnit loads rate and areas from the unit's inventory and returns the agreement
// value to automatic mode.
func (d *Deal) SelectUnit(unit models.Unit) {
	figures := pricing.ResolveUnitFigures(unit)
	d.unit = &unit
	d.unitTotalCost = figures.TotalCost
	d.baseRate = figures.BaseRate
	d.areas = figures.Areas
	d.mode = pricing.ModeAuto
	d.recompute()
}

// ClearUnit drops the unit and every area figure read from it.
func (d *Deal) ClearUnit() {
	d.unit = nil
	d.unitTotalCost = decimal.NullDecimal{}
	d.baseRate = decimal.Zero
	d.areas = pricing.Areas{}
	d.mode = pricing.ModeAuto
	d.recompute()
}

// SetAreas overrides the area figures after autofill.
func (d *Deal) SetAreas(areas pricing.Areas) {
	d.areas = areas
	d.recompute()
}

func (d *Deal) SetBaseRate(rate decimal.Decimal) {
	d.baseRate = rate
	d.recompute()
}

// SetAgreementValue records a typed-in agreement value and suspends automatic computation
// until the next SelectUnit.
func (d *Deal) SetAgreementValue(v decimal.NullDecimal) {
	d.mode = pricing.ModeManual
	d.agreement = v
	d.recompute()
}

// ==========================
// Discount
// ==========================

func (d *Deal) SetDiscountPercent(pct decimal.NullDecimal) {
	d.discount = pricing.Discount{Percent: pct}
	d.driver = driverPercent
	if !pct.Valid {
		d.driver = driverNone
	}
	d.recompute()
}

func (d *Deal) SetDiscountAmount(amount decimal.NullDecimal) {
	d.discount = pricing.Discount{Amount: amount}
	d.driver = driverAmount
	if !amount.Valid {
		d.driver = driverNone
	}
	d.recompute()
}

// ==========================
// Charges, Taxes, Offer, Parking
// ==========================

func (d *Deal) AddCharge(c pricing.Charge) {
	d.charges = append(d.charges, c)
	d.recompute()
}

func (d *Deal) UpdateCharge(i int, c pricing.Charge) error {
	if i < 0 || i >= len(d.charges) {
		return fmt.Errorf("charge %d: %w", i, ErrIndex)
	}
	d.charges[i] = c
	d.recompute()
	return nil
}

func (d *Deal) RemoveCharge(i int) error {
	if i < 0 || i >= len(d.charges) {
		return fmt.Errorf("charge %d: %w", i, ErrIndex)
	}
	d.charges = append(d.charges[:i], d.charges[i+1:]...)
	d.recompute()
	return nil
}

// SetCostTemplate installs the per-lead template, normalising the development PSF and
// maintenance months the same way the override setters do.
func (d *Deal) SetCostTemplate(c models.CostTemplate) {
	d.cost = c
	d.cost.DevelopmentChargesPSF = d.developmentPSF(decimal.NewNullDecimal(c.DevelopmentChargesPSF))
	if c.ProvisionalMaintenanceMonths < 1 {
		d.cost.ProvisionalMaintenanceMonths = d.bounds.DefaultMaintenanceMonths
	}
	d.recompute()
}

func (d *Deal) SetGSTPercent(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(d.bounds.MaxGSTPercent) {
		return fmt.Errorf("gst percent %s: %w", pct, ErrOutOfRange)
	}
	d.cost.GSTPercent = pct
	d.recompute()
	return nil
}

func (d *Deal) SetStampDutyPercent(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(d.bounds.MaxStampDutyPercent) {
		return fmt.Errorf("stamp duty percent %s: %w", pct, ErrOutOfRange)
	}
	d.cost.StampDutyPercent = pct
	d.recompute()
	return nil
}

// SetDevelopmentPSF applies a user override. Blank or non-positive input resets to the
// default and anything below one is raised to one; the applied value is returned.
func (d *Deal) SetDevelopmentPSF(psf decimal.NullDecimal) decimal.Decimal {
	d.cost.DevelopmentChargesPSF = d.developmentPSF(psf)
	d.recompute()
	return d.cost.DevelopmentChargesPSF
}

func (d *Deal) developmentPSF(psf decimal.NullDecimal) decimal.Decimal {
	if !psf.Valid || !psf.Decimal.IsPositive() {
		return d.bounds.DefaultDevelopmentPSF
	}
	return decimal.Max(decimal.NewFromInt(1), psf.Decimal)
}

// SetMaintenanceMonths applies a user override. Blank input resets to the default.
func (d *Deal) SetMaintenanceMonths(months int) error {
	if months < 1 {
		months = d.bounds.DefaultMaintenanceMonths
	}
	if d.bounds.MaxMaintenanceMonths > 0 && months > d.bounds.MaxMaintenanceMonths {
		return fmt.Errorf("maintenance months %d: %w", months, ErrOutOfRange)
	}
	d.cost.ProvisionalMaintenanceMonths = months
	d.recompute()
	return nil
}

func (d *Deal) SetTaxToggles(t pricing.TaxToggles) {
	d.taxes = t
	d.recompute()
}

// SelectOffer replaces the active offer; nil clears it.
func (d *Deal) SelectOffer(offer *models.Offer) {
	if offer != nil {
		o := *offer
		offer = &o
	}
	d.offer = offer
	d.recompute()
}

// SetParking sets whether parking is required and how many slots. A zero rate keeps the
// project's per-slot price.
func (d *Deal) SetParking(required bool, count int, rate decimal.Decimal) {
	d.parking.Required = required
	d.parking.Count = count
	if rate.IsPositive() {
		d.parking.AmountPerUnit = rate
	}
	d.recompute()
}

// ==========================
// Accessors
// ==========================

func (d *Deal) ProjectID() string { return d.projectID }
func (d *Deal) Unit() *models.Unit { return d.unit }
func (d *Deal) Mode() pricing.Mode { return d.mode }
func (d *Deal) BaseRate() decimal.Decimal { return d.baseRate }
func (d *Deal) Areas() pricing.Areas { return d.areas }
func (d *Deal) Discount() pricing.Discount { return d.discount }
func (d *Deal) CostTemplate() models.CostTemplate { return d.cost }
func (d *Deal) TaxToggles() pricing.TaxToggles { return d.taxes }
func (d *Deal) Offer() *models.Offer { return d.offer }
func (d *Deal) Parking() pricing.Parking { return d.parking }
func (d *Deal) KYC() KYC { return d.kyc }
func (d *Deal) Totals() pricing.Totals { return d.totals }

// AgreementValue is the current agreement value, automatic or typed in.
func (d *Deal) AgreementValue() decimal.NullDecimal { return d.agreement }

// Charges returns a copy of the additional charges with their derived amounts. It is
// never nil.
func (d *Deal) Charges() []pricing.Charge {
	out := make([]pricing.Charge, len(d.totals.Charges))
	copy(out, d.totals.Charges)
	return out
}

// Plan returns a copy of the payment plan. Slabs is never nil.
func (d *Deal) Plan() PaymentPlan {
	p := d.plan
	p.Slabs = make([]pricing.Slab, len(d.plan.Slabs))
	copy(p.Slabs, d.plan.Slabs)
	return p
}

// Inputs is the immutable snapshot fed to pricing.RecomputeAll.
func (d *Deal) Inputs() pricing.Inputs {
	return pricing.Inputs{
		Mode:             d.mode,
		ManualAgreement:  d.agreement,
		BaseRate:         d.baseRate,
		Areas:            d.areas,
		Discount:         d.discount,
		Charges:          append([]pricing.Charge(nil), d.charges...),
		Parking:          d.parking,
		Cost:             d.cost,
		Taxes:            d.taxes,
		Offer:            d.offer,
		BalconyInclusive: d.balconyInclusive,
		KYCRequired:      d.kyc.Required,
		KYCDealAmount:    d.kyc.DealAmount,
		Slabs:            append([]pricing.Slab(nil), d.plan.Slabs...),
		SlabsPricedAt:    d.slabsPricedAt,
	}
}

// recompute re-derives the discount against the current base price, then runs the
// pricing graph and writes the automatic values back.
func (d *Deal) recompute() {
	base := pricing.BasePrice(d.unitTotalCost, d.baseRate, d.areas, d.agreement)
	switch d.driver {
	case driverPercent:
		d.discount = pricing.DeriveDiscount(pricing.Discount{Percent: d.discount.Percent}, base)
	case driverAmount:
		d.discount = pricing.DeriveDiscount(pricing.Discount{Amount: d.discount.Amount}, base)
	}

	d.totals = pricing.RecomputeAll(d.Inputs())
	if d.mode == pricing.ModeAuto {
		d.agreement = d.totals.AgreementValue
	}
	d.charges = append(d.charges[:0], d.totals.Charges...)
	d.plan.Slabs = append([]pricing.Slab(nil), d.totals.Slabs...)
	d.slabsPricedAt = decimal.NewNullDecimal(d.totals.PaymentPlanBase)
}
