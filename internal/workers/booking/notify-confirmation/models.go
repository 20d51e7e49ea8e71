package notifyconfirmation

import (
	"context"

	"booking-workers/internal/common/logger"
	"booking-workers/internal/models"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

type Input struct {
	BookingID        string           `json:"bookingId"`
	ProjectID        string           `json:"projectId"`
	UnitID           string           `json:"unitId"`
	PrimaryApplicant models.Applicant `json:"primaryApplicant"`
	FinalAmount      string           `json:"finalAmount"`
	AmountInWords    string           `json:"amountInWords"`
}

type Output struct {
	Notifications []models.Notification `json:"notifications"`
}

// EmailSender delivers one email. *aws.Mailer satisfies it.
type EmailSender interface {
	Send(ctx context.Context, to, subject, text, html string) (string, error)
}

// TextSender delivers one SMS. *aws.SMSSender satisfies it.
type TextSender interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

// Channels says which confirmation channels are switched on.
type Channels struct {
	Email bool
	SMS   bool
}

type ServiceDependencies struct {
	Mailer   EmailSender
	SMS      TextSender
	Channels Channels
	Logger   logger.Logger
}

func (o *Output) Variables() map[string]interface{} {
	statuses := make(map[string]interface{}, len(o.Notifications))
	for _, n := range o.Notifications {
		statuses[n.Channel] = n.Status
	}
	return map[string]interface{}{
		"notifications":       o.Notifications,
		"notificationStatus":  statuses,
		"confirmationEmailed": statuses[ChannelEmail] == StatusSent,
		"confirmationTexted":  statuses[ChannelSMS] == StatusSent,
	}
}
