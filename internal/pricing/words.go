package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// AmountInWords spells a rupee amount in the Indian numbering system,
// e.g. 5000000 -> "Fifty Lakh Rupees Only". Paise are dropped.
func AmountInWords(value decimal.NullDecimal) string {
	if !value.Valid {
		return "Zero Rupees Only"
	}
	n := value.Decimal.Abs().Round(0).IntPart()
	if n == 0 {
		return "Zero Rupees Only"
	}
	words := indianWords(n)
	if value.Decimal.IsNegative() {
		words = "Minus " + words
	}
	return words + " Rupees Only"
}

func indianWords(n int64) string {
	var parts []string

	if n >= 10000000 {
		// above 99 crore the crore count is itself spelled in lakhs/thousands
		parts = append(parts, indianWords(n/10000000)+" Crore")
		n %= 10000000
	}
	if n >= 100000 {
		parts = append(parts, under100(n/100000)+" Lakh")
		n %= 100000
	}
	if n >= 1000 {
		parts = append(parts, under100(n/1000)+" Thousand")
		n %= 1000
	}
	if n >= 100 {
		parts = append(parts, ones[n/100]+" Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, under100(n))
	}
	return strings.Join(parts, " ")
}

func under100(n int64) string {
	if n < 20 {
		return ones[n]
	}
	result := tens[n/10]
	if n%10 != 0 {
		result += " " + ones[n%10]
	}
	return result
}
