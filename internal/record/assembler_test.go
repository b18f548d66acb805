package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vparedes/boletas-ocr/constants"
	"github.com/vparedes/boletas-ocr/internal/entity"
	"github.com/vparedes/boletas-ocr/internal/ocr"
)

func vf(id constants.FieldID, norm string, conf float32) entity.ValidatedField {
	return entity.ValidatedField{ID: id, Raw: norm, Norm: norm, Valid: true, Confidence: conf}
}

func fullFields() map[constants.FieldID]entity.ValidatedField {
	return map[constants.FieldID]entity.ValidatedField{
		constants.FieldRUT:     vf(constants.FieldRUT, "12345678-5", 0.9),
		constants.FieldFolio:   vf(constants.FieldFolio, "001234", 0.8),
		constants.FieldDate:    vf(constants.FieldDate, "2024-03-05", 0.7),
		constants.FieldAmount:  vf(constants.FieldAmount, "45000", 0.7),
		constants.FieldGlosa:   vf(constants.FieldGlosa, "Kinesiología", 0.6),
		constants.FieldHours:   vf(constants.FieldHours, "4", 0.6),
		constants.FieldDecreto: vf(constants.FieldDecreto, "4521", 0.7),
	}
}

func TestAssembleFullRecord(t *testing.T) {
	a := NewAssembler(0.5, nil)

	rec := a.Assemble("boleta.png", ocr.Result{Engine: "tesseract", Pages: 1}, fullFields(), nil)

	assert.Empty(t, rec.MissingFields)
	assert.False(t, rec.NeedsReview)
	assert.Greater(t, rec.Confidence, float32(0))
	assert.NotEqual(t, "", rec.ID.String())
	// unweighted mean of the seven field confidences
	assert.InDelta(t, (0.9+0.8+0.7+0.7+0.6+0.6+0.7)/7, float64(rec.Confidence), 1e-4)
}

func TestAssembleEmptyRecord(t *testing.T) {
	a := NewAssembler(0.5, nil)

	rec := a.Assemble("boleta.png", ocr.Result{Failed: true}, nil, nil)

	assert.Zero(t, rec.Confidence)
	assert.True(t, rec.OCRFailed)
	assert.True(t, rec.NeedsReview)
	assert.ElementsMatch(t, constants.AllFields(), rec.MissingFields)
}

func TestAssembleLowConfidenceFieldCountsAsMissing(t *testing.T) {
	a := NewAssembler(0.5, nil)

	fields := fullFields()
	low := fields[constants.FieldGlosa]
	low.Confidence = 0.2
	fields[constants.FieldGlosa] = low

	rec := a.Assemble("boleta.png", ocr.Result{Engine: "tesseract"}, fields, nil)

	assert.True(t, rec.IsMissing(constants.FieldGlosa))
	assert.True(t, rec.NeedsReview)
	// the field stays present in the mapping for review purposes
	_, ok := rec.Field(constants.FieldGlosa)
	assert.True(t, ok)
}

func TestMarshalValidatedFullRecord(t *testing.T) {
	a := NewAssembler(0.5, nil)
	rec := a.Assemble("boleta.png", ocr.Result{Engine: "tesseract"}, fullFields(), nil)

	data, err := MarshalValidated(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"12345678-5"`)
}

func TestMarshalValidatedEmptyRecord(t *testing.T) {
	a := NewAssembler(0.5, nil)
	rec := a.Assemble("boleta.png", ocr.Result{Failed: true}, nil, nil)

	_, err := MarshalValidated(rec)
	require.NoError(t, err)
}

func TestMarshalValidatedRejectsOutOfRangeConfidence(t *testing.T) {
	a := NewAssembler(0.5, nil)
	rec := a.Assemble("boleta.png", ocr.Result{Engine: "tesseract"}, fullFields(), nil)
	rec.Confidence = 1.5

	_, err := MarshalValidated(rec)
	assert.Error(t, err)
}
