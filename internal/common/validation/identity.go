package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	aadharPattern = regexp.MustCompile(`^\d{12}$`)
	urlPattern    = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone reports whether phone has exactly 10 digits once everything else is stripped.
func ValidatePhone(phone string) bool {
	return len(DigitsOnly(phone)) == 10
}

// ValidatePAN only checks the length; the PAN format itself is verified by the KYC provider.
func ValidatePAN(pan string) bool {
	return len(strings.TrimSpace(pan)) == 10
}

// ValidateAadhar reports whether the number is 12 digits after removing whitespace.
func ValidateAadhar(aadhar string) bool {
	return aadharPattern.MatchString(StripSpaces(aadhar))
}

// ValidateURL validates URL format
func ValidateURL(url string) bool {
	return urlPattern.MatchString(url)
}

func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
