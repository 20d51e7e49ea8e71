package calculatepricing

import "booking-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"projectId"},
		Properties: map[string]validation.Property{
			"projectId": {
				Type:        "string",
				Description: "Project whose inventory and plan templates are used",
				MinLength:   intPtr(1),
			},
			"unitId": {
				Type:        "string",
				Description: "Selected unit",
			},
			"baseRate":        decimalProperty("Per-square-foot rate override"),
			"agreementValue":  decimalProperty("Manually entered agreement value"),
			"discountPercent": decimalProperty("Discount as a percentage of the base price"),
			"discountAmount":  decimalProperty("Discount as an absolute amount"),
			"additionalCharges": {
				Type:        "array",
				Description: "Extra FIXED or PERCENTAGE charges",
				MaxItems:    intPtr(50),
			},
			"taxToggles": {
				Type:        "object",
				Description: "Per-tax enable flags",
			},
			"paymentPlan": {
				Type:        "object",
				Description: "MASTER template selection or CUSTOM slabs",
				Properties: map[string]validation.Property{
					"type": {
						Type: "string",
						Enum: []string{"MASTER", "CUSTOM"},
					},
				},
			},
			"kyc": {
				Type:        "object",
				Description: "KYC carve-out of the plan base",
			},
		},
	}
}

// decimalProperty accepts money sent either as a JSON number or as a decimal string.
func decimalProperty(description string) validation.Property {
	return validation.Property{
		Type:        []string{"number", "string", "null"},
		Description: description,
	}
}

func intPtr(i int) *int {
	return &i
}
