package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func TestMailer_Send(t *testing.T) {
	var got *ses.SendEmailInput
	mailer := NewMailer(&MockSESService{
		SendEmailFunc: func(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			got = in
			return &ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
		},
	}, "bookings@example.com")

	id, err := mailer.Send(context.Background(), "buyer@example.com", "Booking confirmed", "text", "")
	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)
	assert.Equal(t, "bookings@example.com", aws.ToString(got.Source))
	assert.Equal(t, []string{"buyer@example.com"}, got.Destination.ToAddresses)
	assert.Equal(t, "Booking confirmed", aws.ToString(got.Message.Subject.Data))
	assert.Nil(t, got.Message.Body.Html)
}

func TestMailer_SendError(t *testing.T) {
	mailer := NewMailer(&MockSESService{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}, "bookings@example.com")

	_, err := mailer.Send(context.Background(), "buyer@example.com", "s", "t", "<p>t</p>")
	assert.EqualError(t, err, "throttled")
}

func TestSMSSender_Send(t *testing.T) {
	tests := []struct {
		name     string
		senderID string
		wantAttr bool
	}{
		{name: "with sender id", senderID: "BOOKNG", wantAttr: true},
		{name: "without sender id", senderID: "", wantAttr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *sns.PublishInput
			sender := NewSMSSender(&MockSNSService{
				PublishFunc: func(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
					got = in
					return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
				},
			}, tt.senderID)

			id, err := sender.Send(context.Background(), "+919876543210", "Your booking is confirmed")
			require.NoError(t, err)
			assert.Equal(t, "sns-1", id)
			assert.Equal(t, "+919876543210", aws.ToString(got.PhoneNumber))
			_, ok := got.MessageAttributes["AWS.SNS.SMS.SenderID"]
			assert.Equal(t, tt.wantAttr, ok)
			assert.Equal(t, "Transactional", aws.ToString(got.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
		})
	}
}
