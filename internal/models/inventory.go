// internal/models/inventory.go
package models

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// UnitStatus is the availability status reported by the inventory source.
type UnitStatus string

const (
	UnitAvailable UnitStatus = "AVAILABLE"
	UnitHold      UnitStatus = "HOLD"
	UnitBlocked   UnitStatus = "BLOCKED"
	UnitBooked    UnitStatus = "BOOKED"
	UnitSold      UnitStatus = "SOLD"
)

// InventoryRecord is the loosely typed per-unit record returned by the inventory source.
// Field names vary between projects, so readers go through Decimal with a priority list.
type InventoryRecord map[string]interface{}

// Decimal returns the first non-zero numeric value found under keys, in order.
// Numbers, json.Number and numeric strings (with optional thousands separators) are accepted.
func (r InventoryRecord) Decimal(keys ...string) (decimal.Decimal, bool) {
	for _, key := range keys {
		raw, ok := r[key]
		if !ok || raw == nil {
			continue
		}
		if d, ok := toDecimal(raw); ok && !d.IsZero() {
			return d, true
		}
	}
	return decimal.Zero, false
}

func toDecimal(raw interface{}) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case decimal.Decimal:
		return v, true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

type Unit struct {
	ID        string          `json:"id"`
	Number    string          `json:"number"`
	TowerID   string          `json:"towerId"`
	FloorID   string          `json:"floorId"`
	Status    UnitStatus      `json:"status"`
	Inventory InventoryRecord `json:"inventory"`
}

// IsAvailable reports whether the unit can still be booked.
func (u Unit) IsAvailable() bool {
	return strings.EqualFold(string(u.Status), string(UnitAvailable))
}

type Floor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Units []Unit `json:"units"`
}

type Tower struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Floors []Floor `json:"floors"`
}

// Project is the inventory tree of one project with its pricing flags.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// BalconyInclusiveCarpet marks projects that price carpet area including the balcony.
	BalconyInclusiveCarpet bool            `json:"balconyInclusiveCarpet"`
	ParkingPricePerUnit    decimal.Decimal `json:"parkingPricePerUnit"`
	Towers                 []Tower         `json:"towers"`
	PaymentPlans           []PlanTemplate  `json:"paymentPlans"`
}

// FindUnit looks a unit up anywhere in the tower/floor tree.
func (p *Project) FindUnit(unitID string) (*Unit, bool) {
	for ti := range p.Towers {
		for fi := range p.Towers[ti].Floors {
			units := p.Towers[ti].Floors[fi].Units
			for ui := range units {
				if units[ui].ID == unitID {
					return &units[ui], true
				}
			}
		}
	}
	return nil, false
}

// FindPlan returns the payment-plan template with the given id.
func (p *Project) FindPlan(planID string) (*PlanTemplate, bool) {
	for i := range p.PaymentPlans {
		if p.PaymentPlans[i].ID == planID {
			return &p.PaymentPlans[i], true
		}
	}
	return nil, false
}
