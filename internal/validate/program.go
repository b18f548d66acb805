package validate

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxProgramDistance is the edit-distance ceiling for a fuzzy program-code
// match; OCR typically misreads at most a character or two in short codes.
const maxProgramDistance = 2

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold uppercases and strips diacritics so "Kinesiología" compares equal to
// "KINESIOLOGIA".
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(strings.TrimSpace(out))
}

// ProgramMatch is the result of comparing a glosa against the known program
// code table.
type ProgramMatch struct {
	Code     string // canonical program code
	Distance int    // 0 = exact (after folding)
}

// MatchProgram compares a glosa text against the known program codes,
// case-insensitively and ignoring diacritics. An exact or substring match has
// distance 0; otherwise the closest code within maxProgramDistance is
// returned. OCR misreads of single characters therefore still resolve, at
// lowered confidence (the caller's concern).
func MatchProgram(glosa string, programs []string) (ProgramMatch, bool) {
	folded := Fold(glosa)
	if folded == "" {
		return ProgramMatch{}, false
	}

	best := ProgramMatch{Distance: maxProgramDistance + 1}
	for _, p := range programs {
		fp := Fold(p)
		if folded == fp || strings.Contains(folded, fp) {
			return ProgramMatch{Code: p}, true
		}
		if d := levenshtein.Distance(folded, fp, nil); d < best.Distance {
			best = ProgramMatch{Code: p, Distance: d}
		}
	}
	if best.Distance <= maxProgramDistance {
		return best, true
	}
	return ProgramMatch{}, false
}
