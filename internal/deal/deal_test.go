package deal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-workers/internal/models"
	"booking-workers/internal/pricing"
)

// ==========================
// Test Helper Functions
// ==========================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ndec(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func testProject() *models.Project {
	return &models.Project{ID: "proj-1", Name: "Skyline", ParkingPricePerUnit: dec("300000")}
}

func testUnit(id string, rate, carpet float64) models.Unit {
	return models.Unit{ID: id, Status: models.UnitAvailable, Inventory: models.InventoryRecord{
		"rate_psf":    rate,
		"carpet_area": carpet,
	}}
}

// flatDeal is a deal whose plan base equals its agreement value.
func flatDeal(t *testing.T, agreement string) *Deal {
	t.Helper()
	d := New(testProject(), DefaultBounds())
	d.SetTaxToggles(pricing.TaxToggles{})
	d.SetAgreementValue(ndec(agreement))
	return d
}

// ==========================
// Unit Selection
// ==========================

func TestDeal_SelectUnit_AutofillsAgreementValue(t *testing.T) {
	d := New(testProject(), DefaultBounds())
	d.SelectUnit(testUnit("u-101", 5000, 1000))

	require.True(t, d.AgreementValue().Valid)
	requireDecimal(t, "5000000", d.AgreementValue().Decimal)
	assert.Equal(t, pricing.ModeAuto, d.Mode())
	assert.Contains(t, d.Totals().AgreementValueWords, "Fifty Lakh")
}

func TestDeal_SelectUnit_Idempotent(t *testing.T) {
	d := New(testProject(), DefaultBounds())
	unit := testUnit("u-101", 5200, 980)

	d.SelectUnit(unit)
	firstValue, firstAreas, firstRate := d.AgreementValue(), d.Areas(), d.BaseRate()

	d.SelectUnit(unit)
	assert.True(t, firstValue.Decimal.Equal(d.AgreementValue().Decimal))
	assert.True(t, firstAreas.Carpet.Equal(d.Areas().Carpet))
	assert.True(t, firstRate.Equal(d.BaseRate()))
}

func TestDeal_ManualAgreementSurvivesEditsUntilUnitChanges(t *testing.T) {
	d := New(testProject(), DefaultBounds())
	d.SelectUnit(testUnit("u-101", 5000, 1000))

	d.SetAgreementValue(ndec("4750000"))
	assert.Equal(t, pricing.ModeManual, d.Mode())

	d.SetAreas(pricing.Areas{Carpet: dec("1200")})
	d.SetBaseRate(dec("6000"))
	requireDecimal(t, "4750000", d.AgreementValue().Decimal)

	d.SelectUnit(testUnit("u-102", 5000, 1100))
	assert.Equal(t, pricing.ModeAuto, d.Mode())
	requireDecimal(t, "5500000", d.AgreementValue().Decimal)
}

func TestDeal_ClearUnitResetsAreasAndClearsAgreement(t *testing.T) {
	d := New(testProject(), DefaultBounds())
	d.SelectUnit(testUnit("u-101", 5000, 1000))

	d.ClearUnit()

	assert.Nil(t, d.Unit())
	assert.True(t, d.Areas().Carpet.IsZero())
	assert.False(t, d.AgreementValue().Valid)
}

// ==========================
// Discount
// ==========================

func TestDeal_Discount_PercentDrivesAmountAndAgreement(t *testing.T) {
	d := New(testProject(), DefaultBounds())
	d.SelectUnit(testUnit("u-101", 5000, 1000))

	d.SetDiscountPercent(ndec("2"))

	require.True(t, d.Discount().Amount.Valid)
	requireDecimal(t, "100000", d.Discount().Amount.Decimal)
	requireDecimal(t, "4900000", d.AgreementValue().Decimal)
}

func TestDeal_Discount_EnteringOneSideClearsTheOther(t *testing.T) {
	d := New(testProject(), DefaultBounds())
	d.SelectUnit(testUnit("u-101", 5000, 1000))
	d.SetDiscountPercent(ndec("2"))

	d.SetDiscountAmount(ndec("50000"))

	requireDecimal(t, "50000", d.Discount().Amount.Decimal)
	requireDecimal(t, "1", d.Discount().Percent.Decimal)
}

func TestDeal_Discount_DrivingSideKeptAcrossUnitChange(t *testing.T) {
	d := New(testProject(), DefaultBounds())
	d.SelectUnit(testUnit("u-101", 5000, 1000))
	d.SetDiscountPercent(ndec("2"))

	d.SelectUnit(testUnit("u-102", 5000, 2000))

	requireDecimal(t, "2", d.Discount().Percent.Decimal)
	requireDecimal(t, "200000", d.Discount().Amount.Decimal)
}

func TestDeal_Discount_RoundTrip(t *testing.T) {
	d := New(testProject(), DefaultBounds())
	d.SelectUnit(testUnit("u-101", 4321, 987))

	d.SetDiscountPercent(ndec("3.75"))
	amount := d.Discount().Amount

	d.SetDiscountPercent(decimal.NullDecimal{})
	d.SetDiscountAmount(amount)

	diff := d.Discount().Percent.Decimal.Sub(dec("3.75")).Abs()
	assert.True(t, diff.LessThanOrEqual(dec("0.01")), "got %s", d.Discount().Percent.Decimal)
}

// ==========================
// Charges
// ==========================

func TestDeal_ChargesTotalHoldsAfterEveryMutation(t *testing.T) {
	d := flatDeal(t, "1000000")

	check := func() {
		t.Helper()
		sum := decimal.Zero
		for _, c := range d.Charges() {
			sum = sum.Add(c.Amount)
		}
		assert.True(t, sum.Equal(d.Totals().AdditionalChargesTotal), "sum %s total %s", sum, d.Totals().AdditionalChargesTotal)
	}

	d.AddCharge(pricing.Charge{Name: "Club", Type: pricing.ChargeFixed, Value: dec("100000")})
	check()
	d.AddCharge(pricing.Charge{Name: "Floor rise", Type: pricing.ChargePercentage, Value: dec("1.5")})
	check()
	requireDecimal(t, "15000", d.Charges()[1].Amount)

	require.NoError(t, d.UpdateCharge(1, pricing.Charge{Name: "Floor rise", Type: pricing.ChargeFixed, Value: dec("20000")}))
	check()
	d.SetAgreementValue(ndec("2000000"))
	check()
	require.NoError(t, d.RemoveCharge(0))
	check()
	requireDecimal(t, "20000", d.Totals().AdditionalChargesTotal)

	assert.ErrorIs(t, d.RemoveCharge(5), ErrIndex)
}

// ==========================
// Cost Template Overrides
// ==========================

func TestDeal_DevelopmentPSF_BlankOrZeroResetsToDefault(t *testing.T) {
	d := New(testProject(), DefaultBounds())

	requireDecimal(t, "500", d.SetDevelopmentPSF(decimal.NullDecimal{}))
	requireDecimal(t, "500", d.SetDevelopmentPSF(ndec("0")))
	requireDecimal(t, "500", d.SetDevelopmentPSF(ndec("-20")))
	requireDecimal(t, "650", d.SetDevelopmentPSF(ndec("650")))
	requireDecimal(t, "650", d.CostTemplate().DevelopmentChargesPSF)
}

func TestDeal_DevelopmentPSF_FractionClampedToOne(t *testing.T) {
	d := New(testProject(), DefaultBounds())

	requireDecimal(t, "1", d.SetDevelopmentPSF(ndec("0.5")))

	d.SetCostTemplate(models.CostTemplate{DevelopmentChargesPSF: dec("0.5")})
	requireDecimal(t, "1", d.CostTemplate().DevelopmentChargesPSF)
	requireDecimal(t, "1", pricing.NormalizeDevelopmentPSF(dec("0.5")))
}

func TestDeal_CostTemplateDefaultsBlankPossessionInputs(t *testing.T) {
	d := New(testProject(), DefaultBounds())
	d.SetCostTemplate(models.CostTemplate{GSTPercent: dec("5")})

	requireDecimal(t, "500", d.CostTemplate().DevelopmentChargesPSF)
	assert.Equal(t, 6, d.CostTemplate().ProvisionalMaintenanceMonths)
}

func TestDeal_BoundedOverrides(t *testing.T) {
	d := New(testProject(), DefaultBounds())
	require.NoError(t, d.SetGSTPercent(dec("12")))

	assert.ErrorIs(t, d.SetGSTPercent(dec("40")), ErrOutOfRange)
	assert.ErrorIs(t, d.SetGSTPercent(dec("-1")), ErrOutOfRange)
	requireDecimal(t, "12", d.CostTemplate().GSTPercent)

	assert.ErrorIs(t, d.SetStampDutyPercent(dec("11")), ErrOutOfRange)
	require.NoError(t, d.SetStampDutyPercent(dec("7")))

	require.NoError(t, d.SetMaintenanceMonths(0))
	assert.Equal(t, 6, d.CostTemplate().ProvisionalMaintenanceMonths)
	assert.ErrorIs(t, d.SetMaintenanceMonths(500), ErrOutOfRange)
}

func TestDeal_TaxesWithFlatFeesAndPercentages(t *testing.T) {
	d := New(testProject(), DefaultBounds())
	d.SetCostTemplate(models.CostTemplate{
		GSTPercent:         dec("5"),
		StampDutyPercent:   dec("6"),
		RegistrationAmount: dec("50000"),
		LegalFeeAmount:     dec("20000"),
	})
	d.SetAgreementValue(ndec("1000000"))
	d.SetParking(false, 0, decimal.Zero)

	totals := d.Totals()
	requireDecimal(t, "50000", totals.Taxes.GST)
	requireDecimal(t, "60000", totals.Taxes.StampDuty)
	requireDecimal(t, "180000", totals.Taxes.Total)
	requireDecimal(t, "1180000", totals.FinalAmount)
}

func TestDeal_ParkingUsesProjectRate(t *testing.T) {
	d := flatDeal(t, "1000000")
	d.SetParking(true, 2, decimal.Zero)

	requireDecimal(t, "600000", d.Totals().ParkingTotal)
	requireDecimal(t, "1600000", d.Totals().AmountBeforeTaxes)
}

func TestDeal_SelectOfferIsSingleSelection(t *testing.T) {
	d := flatDeal(t, "1000000")
	d.SelectOffer(&models.Offer{ID: "o1", Type: models.OfferAmount, Value: dec("10000")})
	d.SelectOffer(&models.Offer{ID: "o2", Type: models.OfferPercentage, Value: dec("2")})

	require.NotNil(t, d.Offer())
	assert.Equal(t, "o2", d.Offer().ID)
	requireDecimal(t, "20000", d.Totals().OfferDiscount)

	d.SelectOffer(nil)
	requireDecimal(t, "0", d.Totals().OfferDiscount)
}

// ==========================
// Payment Plan
// ==========================

func masterTemplate() models.PlanTemplate {
	return models.PlanTemplate{ID: "clp", Name: "Construction linked", Slabs: []models.SlabTemplate{
		{Name: "Booking", Percentage: dec("30")},
		{Name: "Slab", Percentage: dec("30")},
		{Name: "Possession", Percentage: dec("40")},
	}}
}

func TestDeal_MasterPlan_AmountEditBackDerivesPercentage(t *testing.T) {
	d := flatDeal(t, "1000000")
	d.UseMasterPlan(masterTemplate())

	plan := d.Plan()
	require.Len(t, plan.Slabs, 3)
	assert.Equal(t, pricing.PlanMaster, plan.Type)
	requireDecimal(t, "300000", plan.Slabs[0].Amount)
	requireDecimal(t, "300000", plan.Slabs[1].Amount)
	requireDecimal(t, "400000", plan.Slabs[2].Amount)

	require.NoError(t, d.SetSlabAmount(0, dec("250000")))
	plan = d.Plan()
	assert.Equal(t, 25, plan.Slabs[0].Percentage)
	requireDecimal(t, "250000", plan.Slabs[0].Amount)
	assert.Equal(t, 95, d.Totals().SlabPercentTotal)
}

func TestDeal_SlabAmountKeepsFractionUntilBaseMoves(t *testing.T) {
	d := flatDeal(t, "1000000")
	d.UseMasterPlan(masterTemplate())

	require.NoError(t, d.SetSlabAmount(0, dec("255555.55")))
	assert.Equal(t, 25, d.Plan().Slabs[0].Percentage)

	d.SetTaxToggles(pricing.TaxToggles{})
	requireDecimal(t, "255555.55", d.Plan().Slabs[0].Amount)

	d.SetAgreementValue(ndec("2000000"))
	requireDecimal(t, "500000", d.Plan().Slabs[0].Amount)
	requireDecimal(t, "800000", d.Plan().Slabs[2].Amount)
}

func TestDeal_KYCCarveOutReducesPlanBase(t *testing.T) {
	d := flatDeal(t, "1000000")
	d.UseMasterPlan(masterTemplate())
	require.NoError(t, d.SetKYCRequired(true))
	require.NoError(t, d.SetKYCDealAmount(dec("200000")))

	requireDecimal(t, "800000", d.Totals().PaymentPlanBase)
	requireDecimal(t, "240000", d.Plan().Slabs[0].Amount)
}

func TestDeal_CustomPlanRows(t *testing.T) {
	d := flatDeal(t, "1000000")
	d.UseCustomPlan([]pricing.Slab{{Name: "Token", Percentage: 10, DueDate: "2026-11-01"}})

	require.NoError(t, d.AddSlab(pricing.Slab{Name: "Agreement", Percentage: 40}))
	require.NoError(t, d.AddSlab(pricing.Slab{Name: "Possession", Percentage: 50}))
	requireDecimal(t, "100000", d.Plan().Slabs[0].Amount)
	requireDecimal(t, "400000", d.Plan().Slabs[1].Amount)
	assert.Equal(t, 100, d.Totals().SlabPercentTotal)

	require.NoError(t, d.SetSlabPercentage(2, 45))
	requireDecimal(t, "450000", d.Plan().Slabs[2].Amount)

	require.NoError(t, d.RemoveSlab(1))
	assert.Len(t, d.Plan().Slabs, 2)

	assert.ErrorIs(t, d.SetSlabPercentage(0, 101), ErrOutOfRange)
	assert.ErrorIs(t, d.SetSlabAmount(9, dec("1")), ErrIndex)
}

func TestDeal_MasterPlanRowsCannotBeAddedOrRemoved(t *testing.T) {
	d := flatDeal(t, "1000000")
	d.UseMasterPlan(masterTemplate())

	assert.ErrorIs(t, d.AddSlab(pricing.Slab{Name: "Extra", Percentage: 5}), ErrNotCustomPlan)
	assert.ErrorIs(t, d.RemoveSlab(0), ErrNotCustomPlan)
}

func TestDeal_FillDueDateFromPrevious(t *testing.T) {
	d := flatDeal(t, "1000000")
	d.UseCustomPlan([]pricing.Slab{
		{Name: "A", Percentage: 20, DueDate: "2026-11-01"},
		{Name: "B", Percentage: 30},
		{Name: "C", Percentage: 50, DueDate: "2027-05-01"},
		{Name: "D"},
	})

	assert.True(t, d.FillDueDateFromPrevious(1))
	assert.Equal(t, "2026-11-01", d.Plan().Slabs[1].DueDate)

	assert.False(t, d.FillDueDateFromPrevious(2), "populated rows are left alone")
	assert.Equal(t, "2027-05-01", d.Plan().Slabs[2].DueDate)

	assert.False(t, d.FillDueDateFromPrevious(0))
	assert.False(t, d.FillDueDateFromPrevious(10))
}

// ==========================
// KYC
// ==========================

func TestDeal_KYCFrozenOnceRequested(t *testing.T) {
	d := flatDeal(t, "1000000")
	require.NoError(t, d.SetKYCRequired(true))
	require.NoError(t, d.SetKYCDealAmount(dec("300000")))

	d.AttachKYCRequest("kyc-9", models.KYCPending)

	assert.ErrorIs(t, d.SetKYCRequired(false), ErrKYCFrozen)
	assert.ErrorIs(t, d.SetKYCDealAmount(dec("1")), ErrKYCFrozen)
	assert.ErrorIs(t, d.RemoveKYC(), ErrKYCFrozen)

	kyc := d.KYC()
	assert.True(t, kyc.Required)
	requireDecimal(t, "300000", kyc.DealAmount)
	assert.Equal(t, "kyc-9", kyc.RequestID)

	d.UpdateKYCStatus(models.KYCApproved)
	assert.Equal(t, models.KYCApproved, d.KYC().Status)
}

func TestDeal_RemoveKYCBeforeRequest(t *testing.T) {
	d := flatDeal(t, "1000000")
	require.NoError(t, d.SetKYCRequired(true))
	require.NoError(t, d.SetKYCDealAmount(dec("300000")))

	require.NoError(t, d.RemoveKYC())
	assert.False(t, d.KYC().Required)
	requireDecimal(t, "1000000", d.Totals().PaymentPlanBase)
}
