package booking

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"booking-workers/internal/models"
)

// Field is one flat key/value entry of the payload.
type Field struct {
	Name  string
	Value string
}

// FilePart is one uploaded document of the payload.
type FilePart struct {
	Name string
	File *models.Upload
}

// Payload is the flattened booking. Repeating groups use bracket-indexed names such as
// applicants[1][pan] and payment_plan[slabs][0][amount].
type Payload struct {
	Fields         []Field
	Files          []FilePart
	IdempotencyKey string
}

func (p *Payload) add(name, value string) {
	p.Fields = append(p.Fields, Field{Name: name, Value: value})
}

// Get returns the first value stored under name.
func (p *Payload) Get(name string) (string, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// File returns the document stored under name.
func (p *Payload) File(name string) (*models.Upload, bool) {
	for _, f := range p.Files {
		if f.Name == name {
			return f.File, true
		}
	}
	return nil, false
}

// Assemble flattens a validated booking. The cost breakdown snapshot is schema-checked
// here, so a malformed snapshot stops the submission before any network call.
func Assemble(b *Booking, now time.Time) (*Payload, error) {
	d := b.Deal
	t := d.Totals()
	p := &Payload{IdempotencyKey: b.IdempotencyKey}

	p.add("project_id", d.ProjectID())
	if u := d.Unit(); u != nil {
		p.add("unit_id", u.ID)
		p.add("unit_number", u.Number)
		p.add("tower_id", u.TowerID)
		p.add("floor_id", u.FloorID)
	}
	p.add("lead_id", b.LeadID)
	p.add("booking_date", b.BookingDate)
	p.add("remarks", b.Remarks)
	p.add("created_by", b.Actor.ID)
	p.add("created_by_role", string(b.Actor.Role))

	areas := d.Areas()
	discount := d.Discount()
	p.add("pricing_mode", string(d.Mode()))
	p.add("base_rate", d.BaseRate().String())
	p.add("carpet_area", areas.Carpet.String())
	p.add("super_builtup_area", areas.SuperBuiltup.String())
	p.add("balcony_area", areas.Balcony.String())
	p.add("discount_percent", nullString(discount.Percent))
	p.add("discount_amount", nullString(discount.Amount))
	p.add("agreement_value", nullString(t.AgreementValue))
	p.add("agreement_value_words", t.AgreementValueWords)

	for i, c := range d.Charges() {
		key := indexed("additional_charges", i)
		p.add(key("name"), c.Name)
		p.add(key("type"), string(c.Type))
		p.add(key("value"), c.Value.String())
		p.add(key("amount"), amount(c.Amount))
	}
	p.add("additional_charges_total", amount(t.AdditionalChargesTotal))

	parking := d.Parking()
	p.add("parking_required", yesNo(parking.Required))
	p.add("parking_count", strconv.Itoa(parking.Count))
	p.add("parking_amount_per_unit", parking.AmountPerUnit.String())
	p.add("parking_total", amount(t.ParkingTotal))

	cost := d.CostTemplate()
	toggles := d.TaxToggles()
	p.add("gst_percent", cost.GSTPercent.String())
	p.add("stamp_duty_percent", cost.StampDutyPercent.String())
	p.add("registration_amount", cost.RegistrationAmount.String())
	p.add("legal_fee_amount", cost.LegalFeeAmount.String())
	p.add("share_application_fee", cost.ShareApplicationFee.String())
	p.add("development_charges_psf", cost.DevelopmentChargesPSF.String())
	p.add("electrical_charges", cost.ElectricalCharges.String())
	p.add("provisional_maintenance_psf", cost.ProvisionalMaintenancePSF.String())
	p.add("provisional_maintenance_months", strconv.Itoa(cost.ProvisionalMaintenanceMonths))
	p.add("gst_enabled", yesNo(toggles.GSTEnabled))
	p.add("stamp_duty_enabled", yesNo(toggles.StampDutyEnabled))
	p.add("registration_enabled", yesNo(toggles.RegistrationEnabled))
	p.add("legal_fee_enabled", yesNo(toggles.LegalFeeEnabled))

	p.add("amount_before_taxes", amount(t.AmountBeforeTaxes))
	p.add("gst_amount", amount(t.Taxes.GST))
	p.add("stamp_duty_amount", amount(t.Taxes.StampDuty))
	p.add("total_taxes", amount(t.Taxes.Total))
	if o := d.Offer(); o != nil {
		p.add("offer_id", o.ID)
		p.add("offer_type", string(o.Type))
		p.add("offer_value", o.Value.String())
	}
	p.add("offer_discount_value", amount(t.OfferDiscount))
	p.add("final_amount", amount(t.FinalAmount))
	p.add("possession_charges_total", amount(t.Possession.TotalWithGST))
	p.add("grand_total", amount(t.GrandTotal))

	plan := d.Plan()
	p.add("payment_plan[type]", string(plan.Type))
	p.add("payment_plan[template_id]", plan.TemplateID)
	p.add("payment_plan[base_amount]", amount(t.PaymentPlanBase))
	for i, s := range plan.Slabs {
		key := indexed("payment_plan[slabs]", i)
		p.add(key("name"), s.Name)
		p.add(key("percentage"), strconv.Itoa(s.Percentage))
		p.add(key("amount"), amount(s.Amount))
		p.add(key("due_date"), s.DueDate)
		p.add(key("days"), strconv.Itoa(s.Days))
	}

	kyc := d.KYC()
	p.add("kyc_required", yesNo(kyc.Required))
	p.add("kyc_deal_amount", kyc.DealAmount.String())
	p.add("kyc_request_id", kyc.RequestID)
	p.add("kyc_status", string(kyc.Status))

	addApplicant(p, 0, "primary", b.Primary)
	included := map[int]bool{0: true}
	for i, a := range b.CoApplicants {
		if strings.TrimSpace(a.FullName) == "" {
			continue
		}
		addApplicant(p, i+1, "co_applicant", a)
		included[i+1] = true
	}
	addUploads(p, b.Uploads, included)

	for i, a := range b.Attachments {
		key := indexed("attachments", i)
		p.add(key("label"), a.Label)
		p.add(key("doc_type"), a.DocType)
		p.add(key("payment_mode"), a.PaymentMode)
		p.add(key("ref_no"), a.RefNo)
		p.add(key("bank_name"), a.BankName)
		p.add(key("amount"), nullString(a.Amount))
		p.add(key("date"), a.Date)
		p.add(key("remarks"), a.Remarks)
		if a.File != nil {
			p.Files = append(p.Files, FilePart{Name: key("file"), File: a.File})
		}
	}

	snapshot, err := Snapshot(d, now).Encode()
	if err != nil {
		return nil, err
	}
	p.add("cost_breakdown", string(snapshot))
	return p, nil
}

func addApplicant(p *Payload, i int, kind string, a models.Applicant) {
	key := indexed("applicants", i)
	p.add(key("type"), kind)
	p.add(key("title"), a.Title)
	p.add(key("full_name"), strings.TrimSpace(a.FullName))
	p.add(key("pan"), strings.ToUpper(strings.TrimSpace(a.PAN)))
	p.add(key("aadhar"), strings.Join(strings.Fields(a.Aadhar), ""))
	p.add(key("email"), strings.TrimSpace(a.Email))
	p.add(key("phone"), strings.TrimSpace(a.Phone))
	p.add(key("dob"), a.DOB)
	p.add(key("address"), a.Address)
	p.add(key("occupation"), a.Occupation)
	p.add(key("relation"), a.Relation)
}

// addUploads maps document slots onto applicant file parts in a stable order.
// Uploads belonging to a skipped applicant are dropped.
func addUploads(p *Payload, uploads models.Uploads, included map[int]bool) {
	keys := make([]string, 0, len(uploads))
	for k := range uploads {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !uploads.Has(k) {
			continue
		}
		owner, doc, ok := strings.Cut(k, ".")
		if !ok {
			continue
		}
		idx := -1
		switch {
		case owner == "primary":
			idx = 0
		case strings.HasPrefix(owner, "applicant"):
			if n, err := strconv.Atoi(strings.TrimPrefix(owner, "applicant")); err == nil {
				idx = n
			}
		}
		if idx < 0 || !included[idx] {
			continue
		}
		p.Files = append(p.Files, FilePart{Name: indexed("applicants", idx)(doc), File: uploads[k]})
	}
}

// Encode writes the payload as multipart/form-data and returns its content type.
func (p *Payload) Encode(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)
	for _, f := range p.Fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return "", fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}
	for _, f := range p.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.Name), escapeQuotes(fileName(f))))
		contentType := f.File.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return "", fmt.Errorf("create part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.File.Data); err != nil {
			return "", fmt.Errorf("write part %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	return mw.FormDataContentType(), nil
}

func indexed(group string, i int) func(string) string {
	return func(field string) string {
		return fmt.Sprintf("%s[%d][%s]", group, i, field)
	}
}

func fileName(f FilePart) string {
	if f.File.FileName != "" {
		return f.File.FileName
	}
	return f.Name
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
