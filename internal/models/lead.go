package models

import "github.com/shopspring/decimal"

// Lead is the CRM profile used to prefill a booking.
type Lead struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	FullName        string     `json:"fullName"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Address         string     `json:"address"`
	City            string     `json:"city"`
	State           string     `json:"state"`
	Pincode         string     `json:"pincode"`
	Occupation      string     `json:"occupation"`
	OwnerID         string     `json:"ownerId"`
	PriorPayments   []Payment  `json:"priorPayments"`
	InterestedUnits []UnitLink `json:"interestedUnits"`
}

// Payment is a payment recorded against the lead before booking.
type Payment struct {
	Mode     string          `json:"mode"`
	RefNo    string          `json:"refNo"`
	BankName string          `json:"bankName"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
}

// UnitLink records a unit the lead expressed interest in.
type UnitLink struct {
	ProjectID string `json:"projectId"`
	TowerID   string `json:"towerId"`
	UnitID    string `json:"unitId"`
}
