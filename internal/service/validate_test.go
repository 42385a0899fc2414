package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain digits", "79001234567", "+79001234567"},
		{"formatted", "+7 (900) 123-45-67", "+79001234567"},
		{"leading eight rewritten", "89001234567", "+79001234567"},
		{"ten digits kept", "9001234567", "+9001234567"},
		{"twelve digits kept", "380501234567", "+380501234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhoneRejects(t *testing.T) {
	for _, in := range []string{"", "12345", "1234567890123", "no digits here"} {
		_, err := NormalizePhone(in)
		assert.ErrorIs(t, err, ErrValidation, "input %q", in)
	}
}

func TestNormalizePhoneKeepsEightOnOtherLengths(t *testing.T) {
	// The rewrite applies to 11-digit numbers only.
	got, err := NormalizePhone("8900123456")
	require.NoError(t, err)
	assert.Equal(t, "+8900123456", got)
}

func TestValidateName(t *testing.T) {
	got, err := ValidateName("  Ivan Petrov  ")
	require.NoError(t, err)
	assert.Equal(t, "Ivan Petrov", got)

	_, err = ValidateName("ab")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ValidateName(strings.Repeat("x", NameMaxLen+1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateAddress(t *testing.T) {
	got, err := ValidateAddress(" Lenina 5, apt 12 ")
	require.NoError(t, err)
	assert.Equal(t, "Lenina 5, apt 12", got)

	_, err = ValidateAddress("short")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ValidateAddress(strings.Repeat("x", AddressMaxLen+1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, ValidateQuantity(QuantityMin))
	assert.NoError(t, ValidateQuantity(QuantityMax))
	assert.ErrorIs(t, ValidateQuantity(0), ErrValidation)
	assert.ErrorIs(t, ValidateQuantity(QuantityMax+1), ErrValidation)
}

func TestTruncateSilently(t *testing.T) {
	long := strings.Repeat("я", CommentMaxLen+50)
	got := TruncateComment(long)
	assert.Equal(t, CommentMaxLen, len([]rune(got)))

	long = strings.Repeat("f", FeedbackMaxLen+1)
	assert.Equal(t, FeedbackMaxLen, len([]rune(TruncateFeedback(long))))

	assert.Equal(t, "ok", TruncateComment("  ok  "))
}
