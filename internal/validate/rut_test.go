package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDigit(t *testing.T) {
	for _, tc := range []struct {
		body string
		want string
	}{
		{"12345678", "5"},
		{"7654321", "6"},
		{"11111111", "1"},
		{"20347878", "K"},
		{"999999", "K"},
	} {
		assert.Equal(t, tc.want, CheckDigit(tc.body), tc.body)
	}
}

func TestValidRUTAcceptsCorrectCheckDigit(t *testing.T) {
	for _, raw := range []string{
		"12.345.678-5",
		"12345678-5",
		"20.347.878-k",
		"20347878-K",
	} {
		norm, ok := ValidRUT(raw)
		require.True(t, ok, raw)
		assert.NotContains(t, norm, ".")
	}

	norm, ok := ValidRUT("12.345.678-5")
	require.True(t, ok)
	assert.Equal(t, "12345678-5", norm)
}

func TestValidRUTRejectsCorruptedCheckDigit(t *testing.T) {
	for _, raw := range []string{
		"12.345.678-6",
		"12345678-K",
		"20.347.878-1",
	} {
		_, ok := ValidRUT(raw)
		assert.False(t, ok, raw)
	}
}

func TestValidRUTRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"12345678",
		"-5",
		"12a45678-5",
		"12345678-55",
	} {
		_, ok := ValidRUT(raw)
		assert.False(t, ok, raw)
	}
}
