package requestkyc

import "booking-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"projectId", "unitId", "kyc"},
		Properties: map[string]validation.Property{
			"projectId": {
				Type:      "string",
				MinLength: intPtr(1),
			},
			"unitId": {
				Type:        "string",
				Description: "Unit the KYC carve-out applies to",
				MinLength:   intPtr(1),
			},
			"leadId": {
				Type: []string{"string", "null"},
			},
			"kyc": {
				Type:        "object",
				Description: "KYC section of the booking form",
				Required:    []string{"required", "dealAmount"},
				Properties: map[string]validation.Property{
					"required": {
						Type: "boolean",
					},
					"dealAmount": {
						Type:        []string{"number", "string"},
						Description: "Amount carved out of the payment plan base",
					},
				},
			},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
