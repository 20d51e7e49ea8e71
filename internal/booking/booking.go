// Package booking gates a deal on completeness, flattens it into the multipart payload
// the sales backend accepts, and drives the submission.
package booking

import (
	"fmt"

	"booking-workers/internal/deal"
	"booking-workers/internal/models"
)

// MaxCoApplicants is how many applicants may join the primary one.
const MaxCoApplicants = 3

// Document slots in the uploads map.
const (
	DocPANFront    = "pan_front"
	DocPANBack     = "pan_back"
	DocAadharFront = "aadhar_front"
	DocAadharBack  = "aadhar_back"
	DocPhoto       = "photo"
)

// PrimarySlot is the uploads key of a primary applicant document, e.g. "primary.pan_back".
func PrimarySlot(doc string) string {
	return "primary." + doc
}

// CoApplicantSlot is the uploads key of a co-applicant document. n counts from 1.
func CoApplicantSlot(n int, doc string) string {
	return fmt.Sprintf("applicant%d.%s", n, doc)
}

// Booking is everything submitted for one booking attempt.
type Booking struct {
	Deal         *deal.Deal
	LeadID       string
	BookingDate  string
	Primary      models.Applicant
	CoApplicants []models.Applicant
	Uploads      models.Uploads
	Attachments  []models.Attachment
	Actor        models.Actor
	Remarks      string
	// IdempotencyKey is sent with the submission so a retried job cannot book twice.
	IdempotencyKey string
}
