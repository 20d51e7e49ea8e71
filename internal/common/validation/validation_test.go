package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestValidateInput(t *testing.T) {
	schema := JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"leadId":   {Type: "string", MinLength: intPtr(1)},
			"quantity": {Type: "integer"},
			"mode":     {Type: "string", Enum: []string{"AUTO", "MANUAL"}},
		},
		Required: []string{"leadId"},
	}

	t.Run("valid with extra process variables", func(t *testing.T) {
		res := ValidateInput(map[string]interface{}{
			"leadId":   "lead-1",
			"quantity": float64(2),
			"unrelated": true,
		}, schema)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	t.Run("missing and wrong types", func(t *testing.T) {
		res := ValidateInput(map[string]interface{}{
			"quantity": "two",
			"mode":     "SOMETIMES",
		}, schema)
		require.False(t, res.Valid)
		assert.Len(t, res.Errors, 3)
		assert.True(t, res.HasErrors("mode"))
		assert.True(t, res.HasErrors("quantity"))
		assert.Len(t, res.GetErrorMessages(), 3)
	})
}

func TestIdentityValidators(t *testing.T) {
	assert.True(t, ValidatePAN("ABCDE1234F"))
	assert.True(t, ValidatePAN(" ABCDE1234F "))
	assert.False(t, ValidatePAN("ABCDE1234"))

	assert.True(t, ValidateAadhar("1234 5678 9012"))
	assert.False(t, ValidateAadhar("1234-5678-9012"))
	assert.False(t, ValidateAadhar("12345678901"))

	assert.True(t, ValidatePhone("+91 98765-43210"[3:]))
	assert.True(t, ValidatePhone("(987) 654-3210"))
	assert.False(t, ValidatePhone("+91 98765 43210"))

	assert.True(t, ValidateEmail("buyer@example.co.in"))
	assert.False(t, ValidateEmail("buyer@example"))

	assert.True(t, ValidateURL("https://sales.example.com/api"))
	assert.False(t, ValidateURL("sales.example.com"))
}
