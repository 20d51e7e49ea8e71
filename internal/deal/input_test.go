package deal

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-workers/internal/models"
	"booking-workers/internal/pricing"
)

func projectWithUnit() *models.Project {
	p := testProject()
	p.Towers = []models.Tower{{
		ID: "t-1",
		Floors: []models.Floor{{
			ID:    "f-1",
			Units: []models.Unit{testUnit("u-101", 5000, 1000)},
		}},
	}}
	return p
}

func decodeInput(t *testing.T, raw string) Input {
	t.Helper()
	var in Input
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	return in
}

// ==========================
// Apply
// ==========================

func TestInput_Apply_CustomPlanFromJSON(t *testing.T) {
	in := decodeInput(t, `{
		"projectId": "proj-1",
		"unitId": "u-101",
		"discountPercent": "2",
		"taxToggles": {"gstEnabled": false},
		"paymentPlan": {
			"type": "CUSTOM",
			"fillDueDates": true,
			"slabs": [
				{"name": "Booking", "percentage": 10, "dueDate": "2026-01-01"},
				{"name": "Slab", "percentage": 40},
				{"name": "Possession", "percentage": 50}
			]
		}
	}`)

	d := New(projectWithUnit(), DefaultBounds())
	require.NoError(t, in.Apply(d, projectWithUnit(), nil))

	requireDecimal(t, "100000", d.Discount().Amount.Decimal)
	requireDecimal(t, "4900000", d.AgreementValue().Decimal)

	plan := d.Plan()
	require.Len(t, plan.Slabs, 3)
	assert.Equal(t, pricing.PlanCustom, plan.Type)
	requireDecimal(t, "490000", plan.Slabs[0].Amount)
	requireDecimal(t, "2450000", plan.Slabs[2].Amount)
	assert.Equal(t, "2026-01-01", plan.Slabs[1].DueDate)
	assert.Equal(t, "2026-01-01", plan.Slabs[2].DueDate)
	assert.Equal(t, 100, d.Totals().SlabPercentTotal)
	assert.True(t, d.Summary().PlanIsComplete)
}

func TestInput_Apply_PercentWinsOverAmount(t *testing.T) {
	in := Input{UnitID: "u-101", DiscountPercent: ndec("1"), DiscountAmount: ndec("999")}

	d := New(projectWithUnit(), DefaultBounds())
	require.NoError(t, in.Apply(d, projectWithUnit(), nil))

	requireDecimal(t, "50000", d.Discount().Amount.Decimal)
}

func TestInput_Apply_ManualAgreementValue(t *testing.T) {
	in := Input{UnitID: "u-101", AgreementValue: ndec("4750000")}

	d := New(projectWithUnit(), DefaultBounds())
	require.NoError(t, in.Apply(d, projectWithUnit(), nil))

	assert.Equal(t, pricing.ModeManual, d.Mode())
	requireDecimal(t, "4750000", d.AgreementValue().Decimal)
}

func TestInput_Apply_MasterPlanWithAmountEdit(t *testing.T) {
	tmpl := &models.PlanTemplate{ID: "plan-cl", Slabs: []models.SlabTemplate{
		{Name: "Booking", Percentage: dec("10")},
		{Name: "Possession", Percentage: dec("90")},
	}}
	in := Input{
		UnitID:     "u-101",
		TaxToggles: &pricing.TaxToggles{},
		PaymentPlan: &PlanInput{
			Type:       pricing.PlanMaster,
			TemplateID: "plan-cl",
			Slabs:      []SlabInput{{Amount: ndec("1000000")}},
		},
	}

	d := New(projectWithUnit(), DefaultBounds())
	require.NoError(t, in.Apply(d, projectWithUnit(), tmpl))

	plan := d.Plan()
	assert.Equal(t, pricing.PlanMaster, plan.Type)
	assert.Equal(t, "plan-cl", plan.TemplateID)
	assert.Equal(t, 20, plan.Slabs[0].Percentage)
	requireDecimal(t, "1000000", plan.Slabs[0].Amount)
	assert.Equal(t, 110, d.Totals().SlabPercentTotal)
	assert.False(t, d.Summary().PlanIsComplete)
}

func TestInput_Apply_KYCCarveOutAndRequest(t *testing.T) {
	in := Input{
		UnitID:     "u-101",
		TaxToggles: &pricing.TaxToggles{},
		KYC:        &KYCInput{Required: true, DealAmount: ndec("1000000"), RequestID: "kyc-1"},
	}

	d := New(projectWithUnit(), DefaultBounds())
	require.NoError(t, in.Apply(d, projectWithUnit(), nil))

	requireDecimal(t, "4000000", d.Totals().PaymentPlanBase)
	assert.True(t, d.KYC().Frozen())
	assert.Equal(t, models.KYCPending, d.KYC().Status)
}

func TestInput_Apply_Errors(t *testing.T) {
	months := 500
	pct := 101

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{
			name:    "unknown unit",
			input:   Input{UnitID: "u-missing"},
			wantErr: ErrUnknownUnit,
		},
		{
			name:    "gst above bound",
			input:   Input{GSTPercent: ndec("40")},
			wantErr: ErrOutOfRange,
		},
		{
			name:    "maintenance months above bound",
			input:   Input{MaintenanceMonths: &months},
			wantErr: ErrOutOfRange,
		},
		{
			name:    "unknown charge type",
			input:   Input{AdditionalCharges: []pricing.Charge{{Name: "Club", Type: "WEIRD"}}},
			wantErr: ErrOutOfRange,
		},
		{
			name:    "master plan without template",
			input:   Input{PaymentPlan: &PlanInput{Type: pricing.PlanMaster, TemplateID: "plan-x"}},
			wantErr: ErrPlanTemplateRequired,
		},
		{
			name: "slab percentage above 100",
			input: Input{PaymentPlan: &PlanInput{
				Type:  pricing.PlanCustom,
				Slabs: []SlabInput{{Name: "Booking", Percentage: &pct}},
			}},
			wantErr: ErrOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(projectWithUnit(), DefaultBounds())
			err := tt.input.Apply(d, projectWithUnit(), nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestInput_Apply_EmptyInputKeepsDefaults(t *testing.T) {
	d := New(testProject(), DefaultBounds())
	require.NoError(t, Input{}.Apply(d, testProject(), nil))

	assert.Nil(t, d.Unit())
	assert.False(t, d.AgreementValue().Valid)
	assert.Equal(t, pricing.AllTaxes(), d.TaxToggles())
}
