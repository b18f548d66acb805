package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vparedes/boletas-ocr/constants"
	"github.com/vparedes/boletas-ocr/internal/catalog"
	"github.com/vparedes/boletas-ocr/internal/common"
	"github.com/vparedes/boletas-ocr/internal/ocr"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e := NewExtractor(catalog.New(), common.ExtractConfig{
		MinConfidence: 0.5,
		MinAmount:     1000,
		MaxAmount:     5000000,
		MinYear:       2015,
	}, nil)
	e.now = func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }
	return e
}

const boletaText = "Folio: 001234\nRUT: 12.345.678-5\nFecha: 05/03/2024\nPor atención profesional: Kinesiología\n$45.000"

func TestExtractEmptyTextYieldsNoCandidates(t *testing.T) {
	e := newTestExtractor(t)
	assert.Empty(t, e.Extract(ocr.Result{}))
}

func TestExtractSingleMatchFields(t *testing.T) {
	e := newTestExtractor(t)

	cands := e.Extract(ocr.Result{Text: boletaText})
	require.Len(t, cands[constants.FieldFolio], 1)
	assert.Equal(t, "001234", cands[constants.FieldFolio][0].Raw)
	require.Len(t, cands[constants.FieldGlosa], 1)
	assert.Equal(t, "Kinesiología", cands[constants.FieldGlosa][0].Raw)
}

func TestExtractIdempotent(t *testing.T) {
	e := newTestExtractor(t)
	res := ocr.Result{Text: boletaText}

	first := e.Extract(res)
	second := e.Extract(res)
	assert.Equal(t, first, second)
}

func TestExtractDatePlausibilityFilter(t *testing.T) {
	e := newTestExtractor(t)

	// the month-13 and pre-window matches are discarded; the plausible one
	// closest to the top survives in front position
	cands := e.Extract(ocr.Result{Text: "13/13/2024 luego 05/03/2024 y 01/01/2010"})
	require.NotEmpty(t, cands[constants.FieldDate])
	assert.Equal(t, "05/03/2024", cands[constants.FieldDate][0].Raw)
	assert.Len(t, cands[constants.FieldDate], 1)
}

func TestExtractNoPlausibleDateMeansAbsent(t *testing.T) {
	e := newTestExtractor(t)

	cands := e.Extract(ocr.Result{Text: "vencimiento 13/13/2024"})
	assert.Empty(t, cands[constants.FieldDate])
}

func TestExtractAmountRanking(t *testing.T) {
	e := newTestExtractor(t)

	// the RUT body echo (12.345.678) exceeds MaxAmount and is discarded;
	// the largest in-range value ranks first
	cands := e.Extract(ocr.Result{Text: "RUT 12.345.678-5 monto $45.000 y saldo $12.000"})
	require.NotEmpty(t, cands[constants.FieldAmount])
	assert.Equal(t, "$45.000", cands[constants.FieldAmount][0].Raw)
	for _, c := range cands[constants.FieldAmount] {
		assert.NotEqual(t, "12.345.678", c.Raw)
	}
}

func TestExtractAllRUTsForwarded(t *testing.T) {
	e := newTestExtractor(t)

	cands := e.Extract(ocr.Result{Text: "emisor 12.345.678-5 pagador 20.347.878-K"})
	require.Len(t, cands[constants.FieldRUT], 2)
	assert.Less(t, cands[constants.FieldRUT][0].Offset, cands[constants.FieldRUT][1].Offset)
}

func TestExtractTokenConfidence(t *testing.T) {
	e := newTestExtractor(t)

	text := "Folio: 001234"
	res := ocr.Result{
		Text: text,
		Tokens: []ocr.Token{
			{Text: "Folio:", Offset: 0, Conf: 0.9},
			{Text: "001234", Offset: 7, Conf: 0.6},
		},
	}
	cands := e.Extract(res)
	require.Len(t, cands[constants.FieldFolio], 1)
	// the match span "001234" overlaps only the second token
	assert.InDelta(t, 0.6, cands[constants.FieldFolio][0].Confidence, 1e-6)
}

func TestExtractDefaultConfidenceWithoutTokens(t *testing.T) {
	e := newTestExtractor(t)
	cat := catalog.New()

	cands := e.Extract(ocr.Result{Text: boletaText})
	for id, cs := range cands {
		for _, c := range cs {
			assert.Equal(t, cat.DefaultConfidence(id), c.Confidence, id)
		}
	}
}
