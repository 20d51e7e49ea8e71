package prefilllead

import (
	"context"

	"booking-workers/internal/common/logger"
	"booking-workers/internal/deal"
	"booking-workers/internal/inventory"
	"booking-workers/internal/models"
	"booking-workers/internal/session"
)

type Input struct {
	SessionID string       `json:"sessionId"`
	LeadID    string       `json:"leadId"`
	ProjectID string       `json:"projectId,omitempty"`
	Actor     models.Actor `json:"actor"`
}

type Output struct {
	LeadID             string               `json:"leadId"`
	ProjectID          string               `json:"projectId"`
	PrimaryApplicant   models.Applicant     `json:"primaryApplicant"`
	Attachments        []models.Attachment  `json:"attachments"`
	UnitID             string               `json:"unitId,omitempty"`
	UnitMessage        string               `json:"unitMessage,omitempty"`
	CostTemplate       *models.CostTemplate `json:"costTemplate,omitempty"`
	CostTemplateCached bool                 `json:"costTemplateCached"`
	Offers             []models.Offer       `json:"offers"`
	// Superseded is set when a newer prefill for the same session started meanwhile;
	// nothing else is filled in then.
	Superseded bool `json:"superseded"`
}

// LeadSource reads CRM data for a lead. *salesapi.Client satisfies it.
type LeadSource interface {
	GetLead(ctx context.Context, leadID string) (*models.Lead, error)
	GetOffers(ctx context.Context, leadID string) ([]models.Offer, error)
}

// UnitChecker re-reads a unit's current status. *inventory.Catalog satisfies it.
type UnitChecker interface {
	Unit(ctx context.Context, projectID, unitID string) (*models.Unit, *models.Project, error)
}

type ServiceDependencies struct {
	Leads         LeadSource
	Units         UnitChecker
	CostTemplates *inventory.CostTemplates
	Sessions      *session.Store
	Tracker       *deal.Tracker
	Logger        logger.Logger
}

func (o *Output) Variables() map[string]interface{} {
	if o.Superseded {
		return map[string]interface{}{"prefillSuperseded": true}
	}
	vars := map[string]interface{}{
		"prefillSuperseded":  false,
		"leadId":             o.LeadID,
		"projectId":          o.ProjectID,
		"primaryApplicant":   o.PrimaryApplicant,
		"attachments":        o.Attachments,
		"offers":             o.Offers,
		"costTemplateCached": o.CostTemplateCached,
		"unitId":             o.UnitID,
	}
	if o.UnitMessage != "" {
		vars["unitMessage"] = o.UnitMessage
	}
	if o.CostTemplate != nil {
		vars["costTemplate"] = o.CostTemplate
	}
	return vars
}
