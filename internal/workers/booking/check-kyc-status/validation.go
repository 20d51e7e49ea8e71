package checkkycstatus

import "booking-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"kycRequestId"},
		Properties: map[string]validation.Property{
			"kycRequestId": {
				Type:        "string",
				Description: "Id returned when the KYC request was created",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(64),
			},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
