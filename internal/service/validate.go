package service

import (
	"fmt"
	"strings"
)

// Input limits for customer-entered fields.
const (
	NameMinLen     = 3
	NameMaxLen     = 100
	AddressMinLen  = 10
	AddressMaxLen  = 200
	QuantityMin    = 1
	QuantityMax    = 100
	CommentMaxLen  = 500
	FeedbackMaxLen = 1000

	RatingMin = 1
	RatingMax = 5
	// NegativeRatingMax is the highest rating that still triggers an admin alert
	// and makes feedback mandatory.
	NegativeRatingMax = 2
)

// NormalizePhone strips formatting from a phone number and brings it to a
// canonical "+<digits>" form. A leading 8 on an 11-digit number is rewritten
// to the country code 7.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 10 || len(d) > 12 {
		return "", fmt.Errorf("%w: phone must contain 10 to 12 digits", ErrValidation)
	}
	if len(d) == 11 && d[0] == '8' {
		d = "7" + d[1:]
	}
	return "+" + d, nil
}

// ValidateName trims and checks a customer's display name.
func ValidateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if n := len([]rune(name)); n < NameMinLen || n > NameMaxLen {
		return "", fmt.Errorf("%w: name must be %d to %d characters", ErrValidation, NameMinLen, NameMaxLen)
	}
	return name, nil
}

// ValidateAddress trims and checks a delivery address.
func ValidateAddress(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if n := len([]rune(addr)); n < AddressMinLen || n > AddressMaxLen {
		return "", fmt.Errorf("%w: address must be %d to %d characters", ErrValidation, AddressMinLen, AddressMaxLen)
	}
	return addr, nil
}

// ValidateQuantity checks the bottle count of a single order.
func ValidateQuantity(q int) error {
	if q < QuantityMin || q > QuantityMax {
		return fmt.Errorf("%w: quantity must be %d to %d", ErrValidation, QuantityMin, QuantityMax)
	}
	return nil
}

// ValidateRating checks a delivery rating value.
func ValidateRating(r int) error {
	if r < RatingMin || r > RatingMax {
		return fmt.Errorf("%w: rating must be %d to %d", ErrValidation, RatingMin, RatingMax)
	}
	return nil
}

// TruncateComment caps an order comment at the storage limit. Overlong input
// is cut silently rather than rejected.
func TruncateComment(raw string) string {
	return truncateRunes(strings.TrimSpace(raw), CommentMaxLen)
}

// TruncateFeedback caps rating feedback at the storage limit.
func TruncateFeedback(raw string) string {
	return truncateRunes(strings.TrimSpace(raw), FeedbackMaxLen)
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
