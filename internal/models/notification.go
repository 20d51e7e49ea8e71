// internal/models/notification.go
package models

type Notification struct {
	ID        string `json:"id"`
	BookingID string `json:"bookingId"`
	Channel   string `json:"channel"` // "email", "sms"
	Recipient string `json:"recipient"`
	Status    string `json:"status"` // "sent", "failed", "disabled"
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
	SentAt    string `json:"sentAt,omitempty"`
}
