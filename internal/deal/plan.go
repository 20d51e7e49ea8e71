package deal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"booking-workers/internal/models"
	"booking-workers/internal/pricing"
)

// UseMasterPlan copies a template's slabs, floored to whole percentages and priced
// against the current plan base.
func (d *Deal) UseMasterPlan(t models.PlanTemplate) {
	base := d.totals.PaymentPlanBase
	d.plan = PaymentPlan{
		Type:       pricing.PlanMaster,
		TemplateID: t.ID,
		Slabs:      pricing.SlabsFromTemplate(t, base),
	}
	d.slabsPricedAt = decimal.NewNullDecimal(base)
	d.recompute()
}

// UseCustomPlan switches to a user-authored schedule. Amounts are derived from the
// given percentages.
func (d *Deal) UseCustomPlan(slabs []pricing.Slab) {
	d.plan = PaymentPlan{
		Type:  pricing.PlanCustom,
		Slabs: append([]pricing.Slab(nil), slabs...),
	}
	d.slabsPricedAt = decimal.NullDecimal{}
	d.recompute()
}

func (d *Deal) AddSlab(s pricing.Slab) error {
	if d.plan.Type != pricing.PlanCustom {
		return ErrNotCustomPlan
	}
	if s.Percentage < 0 || s.Percentage > 100 {
		return fmt.Errorf("slab percentage %d: %w", s.Percentage, ErrOutOfRange)
	}
	s.Amount = pricing.AmountForPercentage(d.totals.PaymentPlanBase, s.Percentage)
	d.plan.Slabs = append(d.plan.Slabs, s)
	d.recompute()
	return nil
}

func (d *Deal) RemoveSlab(i int) error {
	if d.plan.Type != pricing.PlanCustom {
		return ErrNotCustomPlan
	}
	if i < 0 || i >= len(d.plan.Slabs) {
		return fmt.Errorf("slab %d: %w", i, ErrIndex)
	}
	d.plan.Slabs = append(d.plan.Slabs[:i], d.plan.Slabs[i+1:]...)
	d.recompute()
	return nil
}

// SetSlabPercentage reprices slab i from pct against the current plan base.
func (d *Deal) SetSlabPercentage(i, pct int) error {
	if i < 0 || i >= len(d.plan.Slabs) {
		return fmt.Errorf("slab %d: %w", i, ErrIndex)
	}
	if pct < 0 || pct > 100 {
		return fmt.Errorf("slab percentage %d: %w", pct, ErrOutOfRange)
	}
	d.plan.Slabs[i].Percentage = pct
	d.plan.Slabs[i].Amount = pricing.AmountForPercentage(d.totals.PaymentPlanBase, pct)
	d.recompute()
	return nil
}

// SetSlabAmount keeps the typed amount and back-derives a floored percentage.
func (d *Deal) SetSlabAmount(i int, amount decimal.Decimal) error {
	if i < 0 || i >= len(d.plan.Slabs) {
		return fmt.Errorf("slab %d: %w", i, ErrIndex)
	}
	if amount.IsNegative() {
		return fmt.Errorf("slab amount %s: %w", amount, ErrOutOfRange)
	}
	d.plan.Slabs[i].Amount = amount
	d.plan.Slabs[i].Percentage = pricing.PercentageForAmount(d.totals.PaymentPlanBase, amount)
	d.recompute()
	return nil
}

// SetSlabDueDate sets the due date of slab i.
func (d *Deal) SetSlabDueDate(i int, date string) error {
	if i < 0 || i >= len(d.plan.Slabs) {
		return fmt.Errorf("slab %d: %w", i, ErrIndex)
	}
	d.plan.Slabs[i].DueDate = date
	return nil
}

// FillDueDateFromPrevious copies slab i-1's due date into slab i when slab i has none
// and slab i-1 has one. It reports whether anything was copied.
func (d *Deal) FillDueDateFromPrevious(i int) bool {
	if i <= 0 || i >= len(d.plan.Slabs) {
		return false
	}
	prev, cur := d.plan.Slabs[i-1], d.plan.Slabs[i]
	if cur.DueDate != "" || prev.DueDate == "" {
		return false
	}
	d.plan.Slabs[i].DueDate = prev.DueDate
	return true
}
