package notifyconfirmation

import "booking-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"bookingId", "primaryApplicant"},
		Properties: map[string]validation.Property{
			"bookingId": {
				Type:      "string",
				MinLength: intPtr(1),
			},
			"primaryApplicant": {
				Type:        "object",
				Description: "Recipient of the confirmation",
			},
			"finalAmount": {
				Type: []string{"string", "null"},
			},
			"amountInWords": {
				Type: []string{"string", "null"},
			},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
