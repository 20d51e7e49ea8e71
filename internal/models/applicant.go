// internal/models/applicant.go
package models

import "github.com/shopspring/decimal"

type Applicant struct {
	Title      string `json:"title"`
	FullName   string `json:"fullName"`
	PAN        string `json:"pan"`
	Aadhar     string `json:"aadhar"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	DOB        string `json:"dob,omitempty"`
	Address    string `json:"address,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	Relation   string `json:"relation,omitempty"`
}

// Upload is a document attached to the booking. Data travels base64-encoded in JSON.
type Upload struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// Uploads maps a document slot (e.g. "primary.pan_back") to its file; the last write wins.
type Uploads map[string]*Upload

func (u Uploads) Put(key string, file *Upload) {
	u[key] = file
}

// Has reports whether key holds a file with content. A named but empty file does not count.
func (u Uploads) Has(key string) bool {
	f, ok := u[key]
	return ok && f != nil && len(f.Data) > 0
}

// Attachment is a free-form proof-of-payment or identity document.
type Attachment struct {
	Label       string              `json:"label"`
	DocType     string              `json:"docType"`
	PaymentMode string              `json:"paymentMode,omitempty"`
	RefNo       string              `json:"refNo,omitempty"`
	BankName    string              `json:"bankName,omitempty"`
	Amount      decimal.NullDecimal `json:"amount,omitempty"`
	Date        string              `json:"date,omitempty"`
	Remarks     string              `json:"remarks,omitempty"`
	File        *Upload             `json:"file,omitempty"`
}

type Role string

const (
	RoleSales   Role = "SALES"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// Actor is the user performing the booking.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
