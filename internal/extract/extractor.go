// Package extract turns raw OCR text into candidate fields by applying the
// pattern catalog, and resolves multi-match ambiguity for dates and amounts
// before the validator sees them. Extraction is a pure function of the OCR
// result and the catalog: no text means empty candidate sets, never an error.
package extract

import (
	"log/slog"
	"sort"
	"time"

	"github.com/vparedes/boletas-ocr/constants"
	"github.com/vparedes/boletas-ocr/internal/catalog"
	"github.com/vparedes/boletas-ocr/internal/common"
	"github.com/vparedes/boletas-ocr/internal/entity"
	"github.com/vparedes/boletas-ocr/internal/ocr"
	"github.com/vparedes/boletas-ocr/internal/validate"
)

type Extractor struct {
	cat    *catalog.Catalog
	cfg    common.ExtractConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewExtractor(cat *catalog.Catalog, cfg common.ExtractConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cat: cat, cfg: cfg, logger: logger, now: time.Now}
}

// Extract applies every catalog rule to the OCR text and returns the
// candidate sets keyed by field. Multi-match fields keep all hits tagged with
// their offset; dates are filtered for plausibility and amounts ordered by
// preference here, so the validator only confirms the front candidate.
func (e *Extractor) Extract(res ocr.Result) map[constants.FieldID][]entity.CandidateField {
	out := make(map[constants.FieldID][]entity.CandidateField)
	if res.Text == "" {
		return out
	}

	for _, id := range constants.AllFields() {
		matches, err := e.cat.Match(id, res.Text)
		if err != nil || len(matches) == 0 {
			continue
		}
		cands := make([]entity.CandidateField, 0, len(matches))
		for _, m := range matches {
			cands = append(cands, entity.CandidateField{
				ID:         id,
				Raw:        m.Text,
				Offset:     m.Offset,
				Confidence: e.matchConfidence(id, m, res.Tokens),
			})
		}
		switch id {
		case constants.FieldDate:
			cands = e.plausibleDates(cands)
		case constants.FieldAmount:
			cands = e.rankAmounts(cands)
		}
		if len(cands) > 0 {
			out[id] = cands
		}
	}
	return out
}

// matchConfidence averages the confidences of OCR tokens overlapping the
// match span; without token detail the rule's default applies.
func (e *Extractor) matchConfidence(id constants.FieldID, m catalog.Match, tokens []ocr.Token) float32 {
	if len(tokens) == 0 {
		return e.cat.DefaultConfidence(id)
	}
	start, end := m.Offset, m.Offset+len(m.Text)
	var sum float64
	var n int
	for _, t := range tokens {
		tEnd := t.Offset + len(t.Text)
		if t.Offset < end && tEnd > start {
			sum += float64(t.Conf)
			n++
		}
	}
	if n == 0 {
		return e.cat.DefaultConfidence(id)
	}
	return float32(sum / float64(n))
}

// plausibleDates drops candidates whose month, day or normalized year fall
// outside the processing window; survivors stay in document order, so the
// match closest to the top of the document wins.
func (e *Extractor) plausibleDates(cands []entity.CandidateField) []entity.CandidateField {
	now := e.now()
	kept := cands[:0]
	for _, c := range cands {
		if _, ok := validate.ParseDate(c.Raw, e.cfg.MinYear, now); ok {
			kept = append(kept, c)
		}
	}
	return kept
}

// rankAmounts discards matches outside the plausibility bounds (OCR noise,
// folio/decree echoes) and orders the rest largest first.
func (e *Extractor) rankAmounts(cands []entity.CandidateField) []entity.CandidateField {
	type scored struct {
		cand entity.CandidateField
		val  int64
	}
	kept := make([]scored, 0, len(cands))
	for _, c := range cands {
		v, ok := validate.ParseAmount(c.Raw)
		if !ok || !validate.AmountInRange(v, e.cfg.MinAmount, e.cfg.MaxAmount) {
			continue
		}
		kept = append(kept, scored{cand: c, val: v})
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].val > kept[j].val })

	out := make([]entity.CandidateField, len(kept))
	for i, s := range kept {
		out[i] = s.cand
	}
	return out
}
