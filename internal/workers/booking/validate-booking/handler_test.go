package validatebooking

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-workers/internal/booking"
	"booking-workers/internal/common/camunda/camundatest"
	"booking-workers/internal/common/logger"
	"booking-workers/internal/common/metrics"
	"booking-workers/internal/deal"
	"booking-workers/internal/models"
	"booking-workers/internal/pricing"
	"booking-workers/internal/quote"
)

// ==========================
// Test Helpers
// ==========================

type stubCatalog struct {
	project *models.Project
}

func (s stubCatalog) Project(context.Context, string) (*models.Project, error) {
	return s.project, nil
}

func (s stubCatalog) PlanTemplate(context.Context, *models.Project, string) (*models.PlanTemplate, error) {
	return nil, nil
}

func createProject() *models.Project {
	return &models.Project{
		ID: "proj-1",
		Towers: []models.Tower{{ID: "t-1", Floors: []models.Floor{{ID: "f-1", Units: []models.Unit{{
			ID:        "u-101",
			Status:    models.UnitAvailable,
			Inventory: models.InventoryRecord{"rate_psf": 5000.0, "carpet_area": 1000.0},
		}}}}}},
	}
}

func pct(i int) *int { return &i }

func createValidForm() quote.Form {
	uploads := models.Uploads{}
	for _, doc := range []string{booking.DocPANFront, booking.DocPANBack, booking.DocAadharFront, booking.DocAadharBack, booking.DocPhoto} {
		uploads.Put(booking.PrimarySlot(doc), &models.Upload{FileName: doc + ".jpg", ContentType: "image/jpeg", Data: []byte("jpeg")})
	}
	return quote.Form{
		Input: deal.Input{
			ProjectID: "proj-1",
			UnitID:    "u-101",
			PaymentPlan: &deal.PlanInput{Type: pricing.PlanCustom, Slabs: []deal.SlabInput{
				{Name: "Booking", Percentage: pct(10)},
				{Name: "Possession", Percentage: pct(90)},
			}},
		},
		LeadID:      "lead-1",
		BookingDate: "2026-10-16",
		Primary: models.Applicant{
			FullName: "Arjun Mehta",
			PAN:      "ABCDE1234F",
			Aadhar:   "123456789012",
			Email:    "arjun@example.com",
			Phone:    "9876543210",
		},
		Uploads: uploads,
		Actor:   models.Actor{ID: "user-1", Role: models.RoleManager},
	}
}

func toVariables(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	vars := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &vars))
	return vars
}

func createHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{Enabled: true, MaxJobsActive: 5, Timeout: 5 * time.Second},
		Quoter:       quote.NewQuoter(stubCatalog{project: createProject()}, deal.DefaultBounds()),
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Job Handling Tests
// ==========================

func TestHandler_Handle(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(f *quote.Form)
		wantValid bool
		wantRule  string
	}{
		{
			name:      "complete booking",
			mutate:    func(*quote.Form) {},
			wantValid: true,
		},
		{
			name:     "missing photo",
			mutate:   func(f *quote.Form) { delete(f.Uploads, booking.PrimarySlot(booking.DocPhoto)) },
			wantRule: booking.RuleProfilePhoto,
		},
		{
			name: "sales user without lead",
			mutate: func(f *quote.Form) {
				f.LeadID = ""
				f.Actor.Role = models.RoleSales
			},
			wantRule: booking.RuleLeadRequired,
		},
		{
			name:     "no unit selected",
			mutate:   func(f *quote.Form) { f.UnitID = "" },
			wantRule: booking.RuleUnitSelected,
		},
		{
			name: "plan short of hundred",
			mutate: func(f *quote.Form) {
				f.PaymentPlan.Slabs = f.PaymentPlan.Slabs[:1]
			},
			wantRule: booking.RulePaymentPlan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := createValidForm()
			tt.mutate(&form)

			var before float64
			if tt.wantRule != "" {
				before = testutil.ToFloat64(metrics.ValidationRejections.WithLabelValues(tt.wantRule))
			}

			client := camundatest.NewJobClient()
			createHandler(t).Handle(client, camundatest.Job(5, TaskType, toVariables(t, form)))

			vars, ok := client.Completed()[5]
			require.True(t, ok, "rejections must not fail the job")
			assert.Equal(t, tt.wantValid, vars["bookingValid"])
			if tt.wantRule != "" {
				assert.Equal(t, tt.wantRule, vars["bookingValidationRule"])
				assert.NotEmpty(t, vars["bookingValidationMessage"])
				assert.Equal(t, before+1, testutil.ToFloat64(metrics.ValidationRejections.WithLabelValues(tt.wantRule)))
			} else {
				assert.NotContains(t, vars, "bookingValidationRule")
			}
		})
	}
}

func TestHandler_Handle_UnknownUnitThrows(t *testing.T) {
	form := createValidForm()
	form.UnitID = "u-404"

	client := camundatest.NewJobClient()
	createHandler(t).Handle(client, camundatest.Job(6, TaskType, toVariables(t, form)))

	assert.Empty(t, client.Completed())
	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "PRICING_INPUT_INVALID", client.Thrown()[0].ErrorCode)
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	handler := createHandler(t)

	t.Run("decodes the whole form", func(t *testing.T) {
		input, err := handler.parseInput(camundatest.Job(1, TaskType, toVariables(t, createValidForm())))
		require.NoError(t, err)
		assert.Equal(t, "u-101", input.UnitID)
		assert.Equal(t, "Arjun Mehta", input.Primary.FullName)
		assert.True(t, input.Uploads.Has(booking.PrimarySlot(booking.DocPhoto)))
		assert.Equal(t, []byte("jpeg"), input.Uploads[booking.PrimarySlot(booking.DocPhoto)].Data)
	})

	t.Run("rejects a malformed booking date", func(t *testing.T) {
		vars := toVariables(t, createValidForm())
		vars["bookingDate"] = "16/10/2026"
		_, err := handler.parseInput(camundatest.Job(1, TaskType, vars))
		assert.Error(t, err)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		vars := toVariables(t, createValidForm())
		vars["actor"] = map[string]interface{}{"id": "u", "role": "GUEST"}
		_, err := handler.parseInput(camundatest.Job(1, TaskType, vars))
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.EqualError(t, (&Config{Timeout: time.Second}).Validate(), "max_jobs_active must be positive")
}
