package prefilllead

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"booking-workers/internal/common/errors"
	"booking-workers/internal/common/logger"
	"booking-workers/internal/common/salesapi"
	"booking-workers/internal/deal"
	"booking-workers/internal/inventory"
	"booking-workers/internal/models"
	"booking-workers/internal/quote"
	"booking-workers/internal/session"
)

const paymentProofDocType = "PAYMENT_PROOF"

type Service struct {
	leads         LeadSource
	units         UnitChecker
	costTemplates *inventory.CostTemplates
	sessions      *session.Store
	tracker       *deal.Tracker
	logger        logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	tracker := deps.Tracker
	if tracker == nil {
		tracker = deal.NewTracker()
	}
	return &Service{
		leads:         deps.Leads,
		units:         deps.Units,
		costTemplates: deps.CostTemplates,
		sessions:      deps.Sessions,
		tracker:       tracker,
		logger:        deps.Logger,
	}
}

// Execute loads everything a booking form needs for a lead. Only the latest prefill per
// session counts; an older one that finishes late reports Superseded instead.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	key := input.SessionID
	if key == "" {
		key = "lead:" + input.LeadID
	}

	output, err := deal.Fetch(ctx, s.tracker, key, func(ctx context.Context) (*Output, error) {
		return s.load(ctx, input)
	})
	if stderrors.Is(err, deal.ErrSuperseded) {
		s.logger.Info("Prefill superseded by a newer request", map[string]interface{}{
			"sessionId": input.SessionID,
			"leadId":    input.LeadID,
		})
		return &Output{LeadID: input.LeadID, Superseded: true}, nil
	}
	if err != nil {
		return nil, err
	}

	if input.SessionID != "" {
		if err := s.remember(ctx, input, output.ProjectID); err != nil {
			return nil, err
		}
	}
	return output, nil
}

func (s *Service) load(ctx context.Context, input *Input) (*Output, error) {
	lead, err := s.leads.GetLead(ctx, input.LeadID)
	if err != nil {
		if stderrors.Is(err, salesapi.ErrNoLeadRelation) {
			return nil, errors.NewLeadRelationMissingError(input.LeadID)
		}
		return nil, quote.UpstreamError("lead", err)
	}

	offers, err := s.leads.GetOffers(ctx, input.LeadID)
	if err != nil {
		return nil, quote.UpstreamError("offers", err)
	}
	if offers == nil {
		offers = []models.Offer{}
	}

	tmpl, cached, err := s.costTemplates.Get(ctx, input.LeadID)
	if err != nil {
		return nil, quote.UpstreamError("cost template", err)
	}

	output := &Output{
		LeadID:             lead.ID,
		ProjectID:          input.ProjectID,
		PrimaryApplicant:   applicantFromLead(lead),
		Attachments:        attachmentsFromPayments(lead.PriorPayments),
		CostTemplate:       tmpl,
		CostTemplateCached: cached,
		Offers:             offers,
	}
	if output.LeadID == "" {
		output.LeadID = input.LeadID
	}

	link, ok := pickUnit(lead.InterestedUnits, input.ProjectID)
	if output.ProjectID == "" && ok {
		output.ProjectID = link.ProjectID
	}
	if ok && link.UnitID != "" {
		if err := s.checkUnit(ctx, link, output); err != nil {
			return nil, err
		}
	}
	return output, nil
}

// checkUnit keeps the lead's unit only while it is still bookable.
func (s *Service) checkUnit(ctx context.Context, link models.UnitLink, output *Output) error {
	unit, _, err := s.units.Unit(ctx, link.ProjectID, link.UnitID)
	switch {
	case stderrors.Is(err, inventory.ErrUnitNotFound):
		output.UnitMessage = fmt.Sprintf("Unit %s is no longer listed in this project", link.UnitID)
		return nil
	case err != nil:
		return quote.UpstreamError("project", err)
	}

	if !unit.IsAvailable() {
		output.UnitMessage = fmt.Sprintf("Unit %s is %s and cannot be booked", unitLabel(unit), strings.ToUpper(string(unit.Status)))
		return nil
	}
	output.UnitID = unit.ID
	return nil
}

func (s *Service) remember(ctx context.Context, input *Input, projectID string) error {
	if projectID != "" {
		if _, err := s.sessions.SetActiveProject(ctx, input.SessionID, projectID); err != nil {
			return errors.NewCacheFailedError("session", err)
		}
	}
	if input.Actor.ID != "" {
		if _, err := s.sessions.SetCurrentUser(ctx, input.SessionID, input.Actor); err != nil {
			return errors.NewCacheFailedError("session", err)
		}
	}
	_, err := s.sessions.Update(ctx, input.SessionID, func(sess *models.Session) {
		sess.LeadID = input.LeadID
	})
	if err != nil {
		return errors.NewCacheFailedError("session", err)
	}
	return nil
}

func applicantFromLead(lead *models.Lead) models.Applicant {
	var parts []string
	for _, p := range []string{lead.Address, lead.City, lead.State, lead.Pincode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return models.Applicant{
		Title:      lead.Title,
		FullName:   lead.FullName,
		Email:      lead.Email,
		Phone:      lead.Phone,
		Address:    strings.Join(parts, ", "),
		Occupation: lead.Occupation,
	}
}

func attachmentsFromPayments(payments []models.Payment) []models.Attachment {
	attachments := make([]models.Attachment, 0, len(payments))
	for i, p := range payments {
		attachments = append(attachments, models.Attachment{
			Label:       fmt.Sprintf("Payment %d", i+1),
			DocType:     paymentProofDocType,
			PaymentMode: p.Mode,
			RefNo:       p.RefNo,
			BankName:    p.BankName,
			Amount:      decimal.NewNullDecimal(p.Amount),
			Date:        p.Date,
		})
	}
	return attachments
}

// pickUnit returns the first interested unit in projectID, or the first one at all when
// no project was asked for.
func pickUnit(links []models.UnitLink, projectID string) (models.UnitLink, bool) {
	for _, l := range links {
		if projectID == "" || l.ProjectID == projectID {
			return l, true
		}
	}
	return models.UnitLink{}, false
}

func unitLabel(u *models.Unit) string {
	if u.Number != "" {
		return u.Number
	}
	return u.ID
}
