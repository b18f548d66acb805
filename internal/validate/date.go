package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vparedes/boletas-ocr/constants"
)

var (
	reDateParts   = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)
	reTextualDate = regexp.MustCompile(`(?i)^(\d{1,2})\s+de\s+([a-záéíóúñ]+)(?:\s+del?)?\s+(\d{4})$`)
)

// NormalizeYear expands a 2-digit year: 2000+YY unless that lands beyond the
// current year, in which case 1900+YY. 4-digit years pass through.
func NormalizeYear(y int, now time.Time) int {
	if y >= 100 {
		return y
	}
	if 2000+y > now.Year() {
		return 1900 + y
	}
	return 2000 + y
}

// ParseDate parses a boleta date, either D/M/Y or the written form
// "5 de marzo de 2024", and applies the plausibility window: month in [1,12],
// real calendar day, year >= minYear, and not more than one year in the
// future.
func ParseDate(raw string, minYear int, now time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	var day, month, year int
	if m := reDateParts.FindStringSubmatch(raw); m != nil {
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
	} else if m := reTextualDate.FindStringSubmatch(raw); m != nil {
		n, ok := constants.MonthNumber(m[2])
		if !ok {
			return time.Time{}, false
		}
		day, _ = strconv.Atoi(m[1])
		month = n
		year, _ = strconv.Atoi(m[3])
	} else {
		return time.Time{}, false
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year = NormalizeYear(year, now)
	if year < minYear {
		return time.Time{}, false
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31/02 into March; reject such dates
	if d.Day() != day || d.Month() != time.Month(month) || d.Year() != year {
		return time.Time{}, false
	}
	if d.After(now.AddDate(1, 0, 0)) {
		return time.Time{}, false
	}
	return d, true
}
