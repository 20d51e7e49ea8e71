// Package quote turns booking-form job variables into a priced deal and, for the
// submission workers, into a complete booking.
package quote

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"booking-workers/internal/booking"
	"booking-workers/internal/common/config"
	apperrors "booking-workers/internal/common/errors"
	"booking-workers/internal/common/salesapi"
	"booking-workers/internal/deal"
	"booking-workers/internal/inventory"
	"booking-workers/internal/models"
	"booking-workers/internal/pricing"
)

// Catalog is the part of inventory.Catalog a quote needs.
type Catalog interface {
	Project(ctx context.Context, projectID string) (*models.Project, error)
	PlanTemplate(ctx context.Context, project *models.Project, planID string) (*models.PlanTemplate, error)
}

type Quoter struct {
	catalog Catalog
	bounds  deal.Bounds
}

func NewQuoter(catalog Catalog, bounds deal.Bounds) *Quoter {
	return &Quoter{catalog: catalog, bounds: bounds}
}

// BoundsFrom reads override bounds from the pricing config. Unset values keep the defaults.
func BoundsFrom(cfg config.PricingConfig) deal.Bounds {
	b := deal.DefaultBounds()
	if cfg.MaxGSTPercent > 0 {
		b.MaxGSTPercent = decimal.NewFromFloat(cfg.MaxGSTPercent)
	}
	if cfg.MaxStampDutyPercent > 0 {
		b.MaxStampDutyPercent = decimal.NewFromFloat(cfg.MaxStampDutyPercent)
	}
	if cfg.MaxMaintenanceMonths > 0 {
		b.MaxMaintenanceMonths = cfg.MaxMaintenanceMonths
	}
	if cfg.DefaultDevelopmentPSF > 0 {
		b.DefaultDevelopmentPSF = decimal.NewFromInt(int64(cfg.DefaultDevelopmentPSF))
	}
	if cfg.DefaultMaintenanceMos > 0 {
		b.DefaultMaintenanceMonths = cfg.DefaultMaintenanceMos
	}
	return b
}

// Deal loads the project, resolves a MASTER plan template when one is selected and
// replays in onto a fresh deal. Errors are returned as *apperrors.StandardError.
func (q *Quoter) Deal(ctx context.Context, in deal.Input) (*deal.Deal, error) {
	project, err := q.catalog.Project(ctx, in.ProjectID)
	if err != nil {
		return nil, UpstreamError("project", err)
	}

	var template *models.PlanTemplate
	if in.PaymentPlan != nil && in.PaymentPlan.Type == pricing.PlanMaster && in.PaymentPlan.TemplateID != "" {
		template, err = q.catalog.PlanTemplate(ctx, project, in.PaymentPlan.TemplateID)
		switch {
		case errors.Is(err, inventory.ErrPlanTemplateNotFound):
			return nil, apperrors.NewPlanTemplateNotFoundError(in.PaymentPlan.TemplateID)
		case err != nil:
			return nil, apperrors.NewQueryExecutionFailedError("plan_template", err)
		}
	}

	d := deal.New(project, q.bounds)
	if err := in.Apply(d, project, template); err != nil {
		if errors.Is(err, deal.ErrKYCFrozen) {
			return nil, apperrors.NewKYCFrozenError(d.KYC().RequestID)
		}
		return nil, apperrors.NewPricingInputInvalidError(err.Error())
	}
	return d, nil
}

// Form is the full booking form: the pricing input plus applicants, documents and
// the acting user.
type Form struct {
	deal.Input

	LeadID       string              `json:"leadId"`
	BookingDate  string              `json:"bookingDate"`
	Primary      models.Applicant    `json:"primaryApplicant"`
	CoApplicants []models.Applicant  `json:"coApplicants,omitempty"`
	Uploads      models.Uploads      `json:"uploads,omitempty"`
	Attachments  []models.Attachment `json:"attachments,omitempty"`
	Actor        models.Actor        `json:"actor"`
	Remarks      string              `json:"remarks,omitempty"`
}

// Booking prices the form's deal and wraps it with the rest of the form.
func (q *Quoter) Booking(ctx context.Context, form Form) (*booking.Booking, error) {
	d, err := q.Deal(ctx, form.Input)
	if err != nil {
		return nil, err
	}
	uploads := form.Uploads
	if uploads == nil {
		uploads = models.Uploads{}
	}
	return &booking.Booking{
		Deal:         d,
		LeadID:       form.LeadID,
		BookingDate:  form.BookingDate,
		Primary:      form.Primary,
		CoApplicants: form.CoApplicants,
		Uploads:      uploads,
		Attachments:  form.Attachments,
		Actor:        form.Actor,
		Remarks:      form.Remarks,
	}, nil
}

// UpstreamError maps a sales API failure for resource onto the shared error codes.
func UpstreamError(resource string, err error) *apperrors.StandardError {
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return stdErr
	}
	var apiErr *salesapi.APIError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewUpstreamTimeoutError(resource)
	case errors.As(err, &apiErr) && apiErr.StatusCode == 404:
		return apperrors.NewResourceNotFoundError("sales-api", err.Error())
	case errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403):
		return apperrors.NewAuthenticationError(err.Error())
	default:
		return apperrors.NewUpstreamFetchFailedError(resource, err)
	}
}
