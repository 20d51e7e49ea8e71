package submitbooking

import "booking-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"projectId"},
		Properties: map[string]validation.Property{
			"projectId": {
				Type:        "string",
				Description: "Project being booked",
				MinLength:   intPtr(1),
			},
			"unitId": {
				Type: "string",
			},
			"leadId": {
				Type: []string{"string", "null"},
			},
			"bookingDate": {
				Type:    "string",
				Pattern: strPtr(`^(\d{4}-\d{2}-\d{2})?$`),
			},
			"primaryApplicant": {
				Type:        "object",
				Description: "Primary applicant details",
			},
			"coApplicants": {
				Type:        []string{"array", "null"},
				Description: "Additional applicants, positional",
			},
			"uploads": {
				Type:        []string{"object", "null"},
				Description: "Document images keyed by slot",
			},
			"attachments": {
				Type: []string{"array", "null"},
			},
			"sessionId": {
				Type:        "string",
				Description: "Booking session the submission belongs to",
			},
			"idempotencyKey": {
				Type:        "string",
				Description: "Overrides the key derived from the process instance",
				MaxLength:   intPtr(128),
			},
			"actor": {
				Type: "object",
				Properties: map[string]validation.Property{
					"role": {
						Type: "string",
						Enum: []string{"", "SALES", "MANAGER", "ADMIN"},
					},
				},
			},
		},
	}
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}
