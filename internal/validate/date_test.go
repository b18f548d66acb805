package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func TestNormalizeYear(t *testing.T) {
	assert.Equal(t, 2024, NormalizeYear(24, testNow))
	assert.Equal(t, 2005, NormalizeYear(5, testNow))
	// 2000+YY beyond the current year falls back to 1900+YY
	assert.Equal(t, 1999, NormalizeYear(99, testNow))
	assert.Equal(t, 1925, NormalizeYear(25, testNow))
	// 4-digit years pass through
	assert.Equal(t, 2024, NormalizeYear(2024, testNow))
	assert.Equal(t, 1998, NormalizeYear(1998, testNow))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("05/03/2024", 2015, testNow)
	require.True(t, ok)
	assert.Equal(t, "2024-03-05", d.Format("2006-01-02"))

	d, ok = ParseDate("5-3-24", 2015, testNow)
	require.True(t, ok)
	assert.Equal(t, "2024-03-05", d.Format("2006-01-02"))
}

func TestParseDateWrittenForm(t *testing.T) {
	d, ok := ParseDate("5 de marzo de 2024", 2015, testNow)
	require.True(t, ok)
	assert.Equal(t, "2024-03-05", d.Format("2006-01-02"))

	d, ok = ParseDate("15 de Junio del 2024", 2015, testNow)
	require.True(t, ok)
	assert.Equal(t, "2024-06-15", d.Format("2006-01-02"))

	_, ok = ParseDate("5 de brumario de 2024", 2015, testNow)
	assert.False(t, ok)
}

func TestParseDateRejectsImplausible(t *testing.T) {
	cases := map[string]string{
		"13/13/2024": "month out of range",
		"31/02/2024": "not a real calendar day",
		"05/03/2010": "before the minimum year",
		"05/03/99":   "1999 is before the minimum year",
		"05/03/2026": "more than a year in the future",
		"00/03/2024": "day zero",
	}
	for raw, why := range cases {
		_, ok := ParseDate(raw, 2015, testNow)
		assert.False(t, ok, "%s: %s", raw, why)
	}
}

func TestParseDateWindowBoundary(t *testing.T) {
	// exactly one year ahead is still plausible
	_, ok := ParseDate("15/06/2025", 2015, testNow)
	assert.True(t, ok)
}
