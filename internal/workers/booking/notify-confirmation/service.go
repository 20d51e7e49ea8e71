package notifyconfirmation

import (
	"context"
	stderrors "errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"

	"booking-workers/internal/common/errors"
	"booking-workers/internal/common/logger"
	"booking-workers/internal/common/metrics"
	"booking-workers/internal/models"
)

var errNoRecipient = stderrors.New("no recipient on the primary applicant")

type Service struct {
	mailer   EmailSender
	sms      TextSender
	channels Channels
	logger   logger.Logger
	now      func() time.Time
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{
		mailer:   deps.Mailer,
		sms:      deps.SMS,
		channels: deps.Channels,
		logger:   deps.Logger,
		now:      time.Now,
	}
}

// Execute sends the confirmation on every enabled channel. A channel failing on its own is
// reported in the output; the job only fails when every enabled channel failed to send.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	email := s.deliver(ctx, input, ChannelEmail, input.PrimaryApplicant.Email, s.channels.Email, func(to string) (string, error) {
		text, htmlBody := emailBody(input)
		return s.mailer.Send(ctx, to, emailSubject(input), text, htmlBody)
	})
	sms := s.deliver(ctx, input, ChannelSMS, input.PrimaryApplicant.Phone, s.channels.SMS, func(to string) (string, error) {
		return s.sms.Send(ctx, to, smsBody(input))
	})

	output := &Output{Notifications: []models.Notification{email, sms}}

	var failures []string
	enabled := 0
	for _, n := range output.Notifications {
		if n.Status == StatusDisabled {
			continue
		}
		enabled++
		if n.Status == StatusFailed {
			failures = append(failures, n.Channel+": "+n.Error)
		}
	}
	if enabled > 0 && len(failures) == enabled {
		return nil, errors.NewNotificationSendFailedError("booking confirmation", fmt.Errorf("%s", strings.Join(failures, "; ")))
	}
	return output, nil
}

func (s *Service) deliver(ctx context.Context, input *Input, channel, recipient string, enabled bool, send func(string) (string, error)) models.Notification {
	n := models.Notification{
		ID:        uuid.NewString(),
		BookingID: input.BookingID,
		Channel:   channel,
		Recipient: recipient,
	}

	switch {
	case !enabled:
		n.Status = StatusDisabled
	case strings.TrimSpace(recipient) == "":
		n.Status = StatusFailed
		n.Error = errNoRecipient.Error()
	default:
		messageID, err := send(recipient)
		if err != nil {
			n.Status = StatusFailed
			n.Error = err.Error()
			s.logger.Warn("Confirmation not delivered", map[string]interface{}{
				"bookingId": input.BookingID,
				"channel":   channel,
				"error":     err.Error(),
			})
		} else {
			n.Status = StatusSent
			n.MessageID = messageID
			n.SentAt = s.now().UTC().Format(time.RFC3339)
		}
	}

	metrics.NotificationsSent.WithLabelValues(channel, n.Status).Inc()
	return n
}

func emailSubject(input *Input) string {
	return fmt.Sprintf("Booking confirmed: %s", unitRef(input))
}

func emailBody(input *Input) (string, string) {
	name := input.PrimaryApplicant.FullName
	if name == "" {
		name = "Customer"
	}

	lines := []string{
		fmt.Sprintf("Dear %s,", name),
		"",
		fmt.Sprintf("Your booking for %s has been received.", unitRef(input)),
		fmt.Sprintf("Booking reference: %s", input.BookingID),
	}
	if input.FinalAmount != "" {
		lines = append(lines, fmt.Sprintf("Deal amount: Rs. %s", input.FinalAmount))
	}
	if input.AmountInWords != "" {
		lines = append(lines, fmt.Sprintf("(%s)", input.AmountInWords))
	}
	text := strings.Join(lines, "\n")

	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	return text, b.String()
}

func smsBody(input *Input) string {
	msg := fmt.Sprintf("Booking %s confirmed for %s.", input.BookingID, unitRef(input))
	if input.FinalAmount != "" {
		msg += fmt.Sprintf(" Deal amount Rs. %s.", input.FinalAmount)
	}
	return msg
}

func unitRef(input *Input) string {
	switch {
	case input.UnitID != "" && input.ProjectID != "":
		return fmt.Sprintf("unit %s in project %s", input.UnitID, input.ProjectID)
	case input.UnitID != "":
		return "unit " + input.UnitID
	default:
		return "your unit"
	}
}
