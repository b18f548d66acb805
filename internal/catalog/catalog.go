// Package catalog defines the extraction grammar for boleta fields: one
// matching rule per field, with a multiplicity policy and a default
// confidence reflecting how specific the pattern is. The catalog is built
// once at process start and shared read-only across all extractions.
package catalog

import (
	"fmt"
	"regexp"

	"github.com/vparedes/boletas-ocr/constants"
)

// Multiplicity is the match policy for a rule.
type Multiplicity int

const (
	// FirstMatch keeps only the first match in document order.
	FirstMatch Multiplicity = iota
	// AllMatches keeps every match, tagged with its offset.
	AllMatches
)

// Match is one raw hit of a rule inside the source text.
type Match struct {
	Text   string // matched substring (capture group when the rule has one)
	Offset int    // byte offset of Text within the source
}

// Rule couples a field identifier with its matcher.
type Rule struct {
	ID                constants.FieldID
	Multiplicity      Multiplicity
	DefaultConfidence float32

	re *regexp.Regexp
	// group selects the submatch used as the field value; 0 = whole match.
	group int
}

var builtinRules = []*Rule{
	{
		ID:                constants.FieldRUT,
		Multiplicity:      AllMatches,
		DefaultConfidence: 0.90,
		re:                regexp.MustCompile(`\b\d{1,2}\.?\d{3}\.?\d{3}-[\dkK]\b`),
	},
	{
		ID:                constants.FieldFolio,
		Multiplicity:      FirstMatch,
		DefaultConfidence: 0.75,
		re:                regexp.MustCompile(`(?i)\b(?:folio|n[°ºo]\.?|nro\.?|n[úu]m(?:ero)?\.?)\s*:?\s*(\d{1,7})\b`),
		group:             1,
	},
	{
		ID:                constants.FieldDate,
		Multiplicity:      AllMatches,
		DefaultConfidence: 0.70,
		re:                regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b|(?i:\b\d{1,2}\s+de\s+[a-záéíóúñ]+(?:\s+del?)?\s+\d{4}\b)`),
	},
	{
		ID:                constants.FieldAmount,
		Multiplicity:      AllMatches,
		DefaultConfidence: 0.65,
		re:                regexp.MustCompile(`\$\s*\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?\b|\b\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{2})?\b`),
	},
	{
		ID:                constants.FieldGlosa,
		Multiplicity:      FirstMatch,
		DefaultConfidence: 0.50,
		re:                regexp.MustCompile(`(?i)por\s+atenci[oó]n\s+profesional\s*:?[ \t]*([^\n]*)`),
		group:             1,
	},
	{
		ID:                constants.FieldHours,
		Multiplicity:      AllMatches,
		DefaultConfidence: 0.60,
		re:                regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:hrs?\.?|horas?)\b`),
		group:             1,
	},
	{
		ID:                constants.FieldDecreto,
		Multiplicity:      FirstMatch,
		DefaultConfidence: 0.70,
		re:                regexp.MustCompile(`(?i)\b(?:d\.?\s*a\.?\s*n[°ºo]?\.?|decreto(?:\s+alcaldicio)?\s*(?:n[°ºo]\.?)?)\s*:?\s*(\d{2,6})\b`),
		group:             1,
	},
}

// Catalog is the immutable rule set.
type Catalog struct {
	rules map[constants.FieldID]*Rule
}

// New builds the built-in catalog.
func New() *Catalog {
	rules := make(map[constants.FieldID]*Rule, len(builtinRules))
	for _, r := range builtinRules {
		rules[r.ID] = r
	}
	return &Catalog{rules: rules}
}

// Rule returns the rule for a field id.
func (c *Catalog) Rule(id constants.FieldID) (*Rule, bool) {
	r, ok := c.rules[id]
	return r, ok
}

// DefaultConfidence returns the rule's default confidence, or 0 for an
// unknown field.
func (c *Catalog) DefaultConfidence(id constants.FieldID) float32 {
	if r, ok := c.rules[id]; ok {
		return r.DefaultConfidence
	}
	return 0
}

// Match applies the field's rule to text and returns the matches in document
// order. Absence is the empty slice, never an error; only an unknown field id
// errors.
func (c *Catalog) Match(id constants.FieldID, text string) ([]Match, error) {
	r, ok := c.rules[id]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", id)
	}
	return r.match(text), nil
}

func (r *Rule) match(text string) []Match {
	limit := -1
	if r.Multiplicity == FirstMatch {
		limit = 1
	}
	idxs := r.re.FindAllStringSubmatchIndex(text, limit)
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Match, 0, len(idxs))
	for _, loc := range idxs {
		start, end := loc[0], loc[1]
		if r.group > 0 && 2*r.group+1 < len(loc) && loc[2*r.group] >= 0 {
			start, end = loc[2*r.group], loc[2*r.group+1]
		}
		out = append(out, Match{Text: text[start:end], Offset: start})
	}
	return out
}
