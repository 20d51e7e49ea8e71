package prefilllead

import "booking-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"leadId"},
		Properties: map[string]validation.Property{
			"leadId": {
				Type:        "string",
				Description: "CRM lead to prefill from",
				MinLength:   intPtr(1),
			},
			"sessionId": {
				Type:        "string",
				Description: "Booking session; prefills for the same session replace each other",
			},
			"projectId": {
				Type: []string{"string", "null"},
			},
			"actor": {
				Type: []string{"object", "null"},
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
