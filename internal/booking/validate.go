package booking

import (
	"fmt"
	"strings"

	"booking-workers/internal/common/validation"
	"booking-workers/internal/models"
	"booking-workers/internal/pricing"
)

// Rule names, in the order they are checked.
const (
	RuleUnitSelected   = "unit_selected"
	RulePrimaryPAN     = "primary_pan"
	RulePrimaryAadhar  = "primary_aadhar"
	RuleProfilePhoto   = "profile_photo"
	RuleContact        = "contact"
	RuleBookingDetails = "booking_details"
	RulePaymentPlan    = "payment_plan"
	RulePrimaryName    = "primary_name"
	RuleCoApplicants   = "co_applicants"
	RuleLeadRequired   = "lead_required"
	RuleKYCRequest     = "kyc_request"
)

// Rejection is the first failed rule with the message shown to the user.
type Rejection struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("booking rejected (%s): %s", r.Rule, r.Message)
}

type rule struct {
	name  string
	check func(b *Booking) string
}

var rules = []rule{
	{RuleUnitSelected, checkUnit},
	{RulePrimaryPAN, checkPrimaryPAN},
	{RulePrimaryAadhar, checkPrimaryAadhar},
	{RuleProfilePhoto, checkPhoto},
	{RuleContact, checkContact},
	{RuleBookingDetails, checkBookingDetails},
	{RulePaymentPlan, checkPaymentPlan},
	{RulePrimaryName, checkPrimaryName},
	{RuleCoApplicants, checkCoApplicants},
	{RuleLeadRequired, checkLead},
	{RuleKYCRequest, checkKYC},
}

// Validate runs every rule in order and returns the first rejection, or nil.
// It never touches the network.
func Validate(b *Booking) *Rejection {
	for _, r := range rules {
		if msg := r.check(b); msg != "" {
			return &Rejection{Rule: r.name, Message: msg}
		}
	}
	return nil
}

func checkUnit(b *Booking) string {
	if b.Deal == nil || b.Deal.Unit() == nil {
		return "Please select a unit"
	}
	return ""
}

func checkPrimaryPAN(b *Booking) string {
	if !validation.ValidatePAN(b.Primary.PAN) {
		return "PAN number must be exactly 10 characters"
	}
	return missingImages(b.Uploads, PrimarySlot, "PAN card")
}

func checkPrimaryAadhar(b *Booking) string {
	if !validation.ValidateAadhar(b.Primary.Aadhar) {
		return "Aadhar number must be exactly 12 digits"
	}
	return missingAadharImages(b.Uploads, PrimarySlot)
}

func checkPhoto(b *Booking) string {
	if !b.Uploads.Has(PrimarySlot(DocPhoto)) {
		return "Please upload the applicant's profile photo"
	}
	return ""
}

func checkContact(b *Booking) string {
	if email := strings.TrimSpace(b.Primary.Email); email != "" && !validation.ValidateEmail(email) {
		return "Please enter a valid email address"
	}
	if phone := strings.TrimSpace(b.Primary.Phone); phone != "" && !validation.ValidatePhone(phone) {
		return "Phone number must be exactly 10 digits"
	}
	return ""
}

func checkBookingDetails(b *Booking) string {
	if strings.TrimSpace(b.BookingDate) == "" {
		return "Booking date is required"
	}
	if av := b.Deal.AgreementValue(); !av.Valid || av.Decimal.IsZero() {
		return "Agreement value is required"
	}
	return ""
}

func checkPaymentPlan(b *Booking) string {
	plan := b.Deal.Plan()
	total := pricing.PercentTotal(plan.Slabs)
	switch plan.Type {
	case pricing.PlanMaster:
		if plan.TemplateID == "" {
			return "Please select a payment plan"
		}
		if total != 100 {
			return fmt.Sprintf("Payment plan percentages must add up to 100%% (currently %d%%)", total)
		}
	default:
		if total != 100 {
			return fmt.Sprintf("Custom payment plan percentages must add up to 100%% (currently %d%%)", total)
		}
	}
	return ""
}

func checkPrimaryName(b *Booking) string {
	if strings.TrimSpace(b.Primary.FullName) == "" {
		return "Primary applicant full name is required"
	}
	return ""
}

func checkCoApplicants(b *Booking) string {
	if len(b.CoApplicants) > MaxCoApplicants {
		return fmt.Sprintf("At most %d additional applicants are allowed", MaxCoApplicants)
	}
	for i, a := range b.CoApplicants {
		if strings.TrimSpace(a.FullName) == "" {
			continue
		}
		n := i + 1
		slot := func(doc string) string { return CoApplicantSlot(n, doc) }
		label := fmt.Sprintf("Applicant %d: ", n+1)

		if strings.TrimSpace(a.PAN) != "" {
			if !validation.ValidatePAN(a.PAN) {
				return label + "PAN number must be exactly 10 characters"
			}
			if msg := missingImages(b.Uploads, slot, "PAN card"); msg != "" {
				return label + msg
			}
		}
		if strings.TrimSpace(a.Aadhar) != "" {
			if !validation.ValidateAadhar(a.Aadhar) {
				return label + "Aadhar number must be exactly 12 digits"
			}
			if msg := missingAadharImages(b.Uploads, slot); msg != "" {
				return label + msg
			}
		}
	}
	return ""
}

func checkLead(b *Booking) string {
	if b.Actor.Role == models.RoleSales && strings.TrimSpace(b.LeadID) == "" {
		return "Sales users can only book against a lead"
	}
	return ""
}

func checkKYC(b *Booking) string {
	if kyc := b.Deal.KYC(); kyc.Required && kyc.RequestID == "" {
		return "Please send the KYC request before submitting the booking"
	}
	return ""
}

func missingImages(uploads models.Uploads, slot func(string) string, doc string) string {
	if !uploads.Has(slot(DocPANFront)) {
		return fmt.Sprintf("Please upload %s front side image", doc)
	}
	if !uploads.Has(slot(DocPANBack)) {
		return fmt.Sprintf("Please upload %s back side image", doc)
	}
	return ""
}

func missingAadharImages(uploads models.Uploads, slot func(string) string) string {
	if !uploads.Has(slot(DocAadharFront)) {
		return "Please upload Aadhar card front side image"
	}
	if !uploads.Has(slot(DocAadharBack)) {
		return "Please upload Aadhar card back side image"
	}
	return ""
}
