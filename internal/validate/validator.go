// Package validate converts candidate fields into validated, normalized
// values: RUT check digits are recomputed, amounts become whole CLP integers
// within the configured bounds, dates become calendar values, and glosa text
// is cross-checked against the known program codes.
package validate

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/vparedes/boletas-ocr/constants"
	"github.com/vparedes/boletas-ocr/internal/common"
	"github.com/vparedes/boletas-ocr/internal/entity"
)

// fuzzyProgramPenalty scales a glosa's confidence when it only fuzzily
// resembles a known program code.
const fuzzyProgramPenalty = 0.85

type Validator struct {
	cfg      common.ExtractConfig
	programs []string
	logger   *slog.Logger
	now      func() time.Time
}

func NewValidator(cfg common.ExtractConfig, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	programs := make([]string, 0, len(constants.KnownPrograms)+len(cfg.ExtraPrograms))
	programs = append(programs, constants.KnownPrograms...)
	programs = append(programs, cfg.ExtraPrograms...)
	return &Validator{cfg: cfg, programs: programs, logger: logger, now: time.Now}
}

// Validate converts each field's candidates into at most one ValidatedField.
// The second return value carries every check-digit-valid RUT in document
// order, for downstream issuer/payer assignment.
func (v *Validator) Validate(candidates map[constants.FieldID][]entity.CandidateField) (map[constants.FieldID]entity.ValidatedField, []entity.ValidatedField) {
	fields := make(map[constants.FieldID]entity.ValidatedField)
	var ruts []entity.ValidatedField

	for _, id := range constants.AllFields() {
		cands := candidates[id]
		if len(cands) == 0 {
			continue
		}
		switch id {
		case constants.FieldRUT:
			for _, c := range cands {
				norm, ok := ValidRUT(c.Raw)
				if !ok {
					v.logger.Debug("rut check digit mismatch", "raw", c.Raw)
					continue
				}
				ruts = append(ruts, entity.ValidatedField{
					ID: id, Raw: c.Raw, Norm: norm, Valid: true, Confidence: c.Confidence,
				})
			}
			if len(ruts) > 0 {
				fields[id] = ruts[0]
			}
		case constants.FieldAmount:
			if f, ok := v.validateAmount(cands); ok {
				fields[id] = f
			}
		case constants.FieldDate:
			if f, ok := v.validateDate(cands); ok {
				fields[id] = f
			}
		case constants.FieldGlosa:
			if f, ok := v.validateGlosa(cands[0]); ok {
				fields[id] = f
			}
		case constants.FieldHours:
			if f, ok := validateDigits(cands[0], 1, 999); ok {
				fields[id] = f
			}
		case constants.FieldFolio, constants.FieldDecreto:
			c := cands[0]
			fields[id] = entity.ValidatedField{
				ID: id, Raw: c.Raw, Norm: strings.TrimSpace(c.Raw), Valid: true, Confidence: c.Confidence,
			}
		}
	}
	return fields, ruts
}

// validateAmount takes the first candidate that normalizes into the
// plausibility bounds; the extractor already ordered them by preference.
func (v *Validator) validateAmount(cands []entity.CandidateField) (entity.ValidatedField, bool) {
	for _, c := range cands {
		val, ok := ParseAmount(c.Raw)
		if !ok || !AmountInRange(val, v.cfg.MinAmount, v.cfg.MaxAmount) {
			continue
		}
		return entity.ValidatedField{
			ID: c.ID, Raw: c.Raw,
			Norm:  strconv.FormatInt(val, 10),
			Int:   val,
			Valid: true, Confidence: c.Confidence,
		}, true
	}
	return entity.ValidatedField{}, false
}

func (v *Validator) validateDate(cands []entity.CandidateField) (entity.ValidatedField, bool) {
	now := v.now()
	for _, c := range cands {
		d, ok := ParseDate(c.Raw, v.cfg.MinYear, now)
		if !ok {
			continue
		}
		return entity.ValidatedField{
			ID: c.ID, Raw: c.Raw,
			Norm:  d.Format("2006-01-02"),
			Date:  d,
			Valid: true, Confidence: c.Confidence,
		}, true
	}
	return entity.ValidatedField{}, false
}

func (v *Validator) validateGlosa(c entity.CandidateField) (entity.ValidatedField, bool) {
	text := strings.TrimSpace(c.Raw)
	if text == "" {
		return entity.ValidatedField{}, false
	}
	conf := c.Confidence
	if m, ok := MatchProgram(text, v.programs); ok && m.Distance > 0 {
		// an OCR misread of a known code: keep the field, lower confidence
		v.logger.Debug("fuzzy program match", "glosa", text, "code", m.Code, "distance", m.Distance)
		conf *= fuzzyProgramPenalty
	}
	return entity.ValidatedField{
		ID: c.ID, Raw: c.Raw, Norm: text, Valid: true, Confidence: conf,
	}, true
}

func validateDigits(c entity.CandidateField, min, max int64) (entity.ValidatedField, bool) {
	val, err := strconv.ParseInt(strings.TrimSpace(c.Raw), 10, 64)
	if err != nil || val < min || val > max {
		return entity.ValidatedField{}, false
	}
	return entity.ValidatedField{
		ID: c.ID, Raw: c.Raw,
		Norm:  strconv.FormatInt(val, 10),
		Int:   val,
		Valid: true, Confidence: c.Confidence,
	}, true
}
