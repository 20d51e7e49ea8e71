package deal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"booking-workers/internal/models"
	"booking-workers/internal/pricing"
)

var (
	ErrUnknownUnit          = errors.New("unit not found in project")
	ErrPlanTemplateRequired = errors.New("a MASTER payment plan needs a template")
)

// Input is the booking form as it travels in process variables. Absent fields leave the
// deal's defaults untouched; NullDecimal fields distinguish "not sent" from zero.
type Input struct {
	ProjectID string `json:"projectId"`
	UnitID    string `json:"unitId"`

	Areas          *pricing.Areas      `json:"areas,omitempty"`
	BaseRate       decimal.NullDecimal `json:"baseRate"`
	AgreementValue decimal.NullDecimal `json:"agreementValue"`

	DiscountPercent decimal.NullDecimal `json:"discountPercent"`
	DiscountAmount  decimal.NullDecimal `json:"discountAmount"`

	AdditionalCharges []pricing.Charge `json:"additionalCharges,omitempty"`

	CostTemplate      *models.CostTemplate `json:"costTemplate,omitempty"`
	GSTPercent        decimal.NullDecimal  `json:"gstPercent"`
	StampDutyPercent  decimal.NullDecimal  `json:"stampDutyPercent"`
	DevelopmentPSF    decimal.NullDecimal  `json:"developmentChargesPsf"`
	MaintenanceMonths *int                 `json:"provisionalMaintenanceMonths,omitempty"`

	TaxToggles *pricing.TaxToggles `json:"taxToggles,omitempty"`
	Offer      *models.Offer       `json:"offer,omitempty"`
	Parking    *ParkingInput       `json:"parking,omitempty"`

	PaymentPlan *PlanInput `json:"paymentPlan,omitempty"`
	KYC         *KYCInput  `json:"kyc,omitempty"`
}

type ParkingInput struct {
	Required bool                `json:"required"`
	Count    int                 `json:"count"`
	Rate     decimal.NullDecimal `json:"amountPerUnit"`
}

// PlanInput selects a plan. For MASTER plans Slabs are edits applied by row index to the
// template's rows; for CUSTOM plans they are the rows themselves.
type PlanInput struct {
	Type         pricing.PlanType `json:"type"`
	TemplateID   string           `json:"templateId,omitempty"`
	Slabs        []SlabInput      `json:"slabs,omitempty"`
	FillDueDates bool             `json:"fillDueDates,omitempty"`
}

// SlabInput is one row edit. A set Amount wins over Percentage.
type SlabInput struct {
	Name       string              `json:"name,omitempty"`
	Percentage *int                `json:"percentage,omitempty"`
	Amount     decimal.NullDecimal `json:"amount"`
	DueDate    string              `json:"dueDate,omitempty"`
	Days       int                 `json:"days,omitempty"`
}

type KYCInput struct {
	Required   bool                `json:"required"`
	DealAmount decimal.NullDecimal `json:"dealAmount"`
	RequestID  string              `json:"requestId,omitempty"`
	Status     models.KYCStatus    `json:"status,omitempty"`
}

// Apply replays the form onto d in the order a user would fill it: unit, figures, cost
// template, toggles, discount, agreement value, KYC and finally the payment plan so that
// slabs are priced against the settled plan base. template is only read for MASTER plans.
func (in Input) Apply(d *Deal, project *models.Project, template *models.PlanTemplate) error {
	if in.UnitID != "" {
		if project == nil {
			return fmt.Errorf("unit %s: %w", in.UnitID, ErrUnknownUnit)
		}
		unit, ok := project.FindUnit(in.UnitID)
		if !ok {
			return fmt.Errorf("unit %s: %w", in.UnitID, ErrUnknownUnit)
		}
		d.SelectUnit(*unit)
	}
	if in.Areas != nil {
		d.SetAreas(*in.Areas)
	}
	if in.BaseRate.Valid {
		d.SetBaseRate(in.BaseRate.Decimal)
	}

	if err := in.applyCost(d); err != nil {
		return err
	}

	if in.TaxToggles != nil {
		d.SetTaxToggles(*in.TaxToggles)
	}
	if in.Offer != nil {
		d.SelectOffer(in.Offer)
	}
	if in.Parking != nil {
		d.SetParking(in.Parking.Required, in.Parking.Count, in.Parking.Rate.Decimal)
	}
	for _, c := range in.AdditionalCharges {
		if c.Type != pricing.ChargeFixed && c.Type != pricing.ChargePercentage {
			return fmt.Errorf("charge %q type %q: %w", c.Name, c.Type, ErrOutOfRange)
		}
		d.AddCharge(c)
	}

	switch {
	case in.DiscountPercent.Valid:
		d.SetDiscountPercent(in.DiscountPercent)
	case in.DiscountAmount.Valid:
		d.SetDiscountAmount(in.DiscountAmount)
	}

	if in.AgreementValue.Valid {
		d.SetAgreementValue(in.AgreementValue)
	}

	if in.KYC != nil {
		if err := in.applyKYC(d); err != nil {
			return err
		}
	}

	if in.PaymentPlan != nil {
		return in.PaymentPlan.apply(d, template)
	}
	return nil
}

func (in Input) applyCost(d *Deal) error {
	if in.CostTemplate != nil {
		d.SetCostTemplate(*in.CostTemplate)
	}
	if in.GSTPercent.Valid {
		if err := d.SetGSTPercent(in.GSTPercent.Decimal); err != nil {
			return err
		}
	}
	if in.StampDutyPercent.Valid {
		if err := d.SetStampDutyPercent(in.StampDutyPercent.Decimal); err != nil {
			return err
		}
	}
	if in.DevelopmentPSF.Valid {
		d.SetDevelopmentPSF(in.DevelopmentPSF)
	}
	if in.MaintenanceMonths != nil {
		if err := d.SetMaintenanceMonths(*in.MaintenanceMonths); err != nil {
			return err
		}
	}
	return nil
}

func (in Input) applyKYC(d *Deal) error {
	k := in.KYC
	if err := d.SetKYCRequired(k.Required); err != nil {
		return err
	}
	if k.Required && k.DealAmount.Valid {
		if k.DealAmount.Decimal.IsNegative() {
			return fmt.Errorf("kyc deal amount %s: %w", k.DealAmount.Decimal, ErrOutOfRange)
		}
		if err := d.SetKYCDealAmount(k.DealAmount.Decimal); err != nil {
			return err
		}
	}
	if k.RequestID != "" {
		status := k.Status
		if status == "" {
			status = models.KYCPending
		}
		d.AttachKYCRequest(k.RequestID, status)
	}
	return nil
}

func (p PlanInput) apply(d *Deal, template *models.PlanTemplate) error {
	switch p.Type {
	case pricing.PlanMaster:
		if template == nil {
			return fmt.Errorf("template %q: %w", p.TemplateID, ErrPlanTemplateRequired)
		}
		d.UseMasterPlan(*template)
	case pricing.PlanCustom, "":
		rows := make([]pricing.Slab, len(p.Slabs))
		for i, s := range p.Slabs {
			rows[i] = pricing.Slab{Name: s.Name, DueDate: s.DueDate, Days: s.Days}
		}
		d.UseCustomPlan(rows)
	default:
		return fmt.Errorf("plan type %q: %w", p.Type, ErrOutOfRange)
	}

	for i, s := range p.Slabs {
		if s.Amount.Valid {
			if err := d.SetSlabAmount(i, s.Amount.Decimal); err != nil {
				return err
			}
		} else if s.Percentage != nil {
			if err := d.SetSlabPercentage(i, *s.Percentage); err != nil {
				return err
			}
		}
		if s.DueDate != "" {
			if err := d.SetSlabDueDate(i, s.DueDate); err != nil {
				return err
			}
		}
	}

	if p.FillDueDates {
		for i := 1; i < len(d.plan.Slabs); i++ {
			d.FillDueDateFromPrevious(i)
		}
	}
	return nil
}

// ==========================
// Output
// ==========================

// Summary is the JSON view of a priced deal returned to the process.
type Summary struct {
	ProjectID      string              `json:"projectId"`
	UnitID         string              `json:"unitId,omitempty"`
	PricingMode    pricing.Mode        `json:"pricingMode"`
	BaseRate       decimal.Decimal     `json:"baseRate"`
	Areas          pricing.Areas       `json:"areas"`
	Discount       pricing.Discount    `json:"discount"`
	CostTemplate   models.CostTemplate `json:"costTemplate"`
	TaxToggles     pricing.TaxToggles  `json:"taxToggles"`
	Parking        pricing.Parking     `json:"parking"`
	Offer          *models.Offer       `json:"offer,omitempty"`
	PaymentPlan    PaymentPlan         `json:"paymentPlan"`
	KYC            KYC                 `json:"kyc"`
	Totals         pricing.Totals      `json:"totals"`
	PlanIsComplete bool                `json:"planIsComplete"`
}

func (d *Deal) Summary() Summary {
	s := Summary{
		ProjectID:    d.projectID,
		PricingMode:  d.mode,
		BaseRate:     d.baseRate,
		Areas:        d.areas,
		Discount:     d.discount,
		CostTemplate: d.cost,
		TaxToggles:   d.taxes,
		Parking:      d.parking,
		Offer:        d.offer,
		PaymentPlan:  d.Plan(),
		KYC:          d.kyc,
		Totals:       d.totals,
	}
	if d.unit != nil {
		s.UnitID = d.unit.ID
	}
	s.PlanIsComplete = len(s.PaymentPlan.Slabs) > 0 && d.totals.SlabPercentTotal == 100
	return s
}
