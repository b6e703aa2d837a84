package booking

import "strings"

const (
	BrandVisa       = "visa"
	BrandMastercard = "mastercard"
	BrandAmex       = "amex"
	BrandGeneric    = "card"
)

// NormalizeCardNumber strips spaces and dashes.
func NormalizeCardNumber(number string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(number)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LuhnValid reports whether digits passes the Luhn checksum. Non-digit input is
// never valid.
func LuhnValid(digits string) bool {
	if !allDigits(digits) {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		n := int(digits[i] - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}

	return sum%10 == 0
}

// CardBrand classifies a card by its leading digits. It is cosmetic only.
func CardBrand(digits string) string {
	n := len(digits)
	if !allDigits(digits) {
		return BrandGeneric
	}

	switch {
	case digits[0] == '4' && n >= 13 && n <= 19:
		return BrandVisa
	case n == 16 && isMastercardPrefix(digits):
		return BrandMastercard
	case n == 15 && (strings.HasPrefix(digits, "34") || strings.HasPrefix(digits, "37")):
		return BrandAmex
	default:
		return BrandGeneric
	}
}

func isMastercardPrefix(digits string) bool {
	if digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5' {
		return true
	}

	prefix := 0
	for _, c := range digits[:4] {
		prefix = prefix*10 + int(c-'0')
	}
	return prefix >= 2221 && prefix <= 2720
}

// LastFour returns the trailing four digits, which is all that is ever stored.
func LastFour(digits string) string {
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
