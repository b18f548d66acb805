package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vparedes/boletas-ocr/constants"
	"github.com/vparedes/boletas-ocr/internal/catalog"
	"github.com/vparedes/boletas-ocr/internal/common"
	"github.com/vparedes/boletas-ocr/internal/extract"
	"github.com/vparedes/boletas-ocr/internal/ocr"
	"github.com/vparedes/boletas-ocr/internal/record"
	"github.com/vparedes/boletas-ocr/internal/validate"
)

type cannedEngine struct {
	text string
	err  error
}

func (c *cannedEngine) Name() string    { return "canned" }
func (c *cannedEngine) Available() bool { return true }

func (c *cannedEngine) Recognize(_ context.Context, _ string) (ocr.Result, error) {
	if c.err != nil {
		return ocr.Result{}, c.err
	}
	return ocr.Result{Text: c.text, MeanConfidence: 0.9, Engine: c.Name()}, nil
}

func newTestProcessor(eng ocr.Engine) *Processor {
	cfg := common.ExtractConfig{
		MinConfidence: 0.5,
		MinAmount:     1000,
		MaxAmount:     5000000,
		MinYear:       2015,
	}
	adapter := ocr.NewAdapter(ocr.AdapterConfig{
		CallTimeout:     time.Second,
		ConfidenceFloor: 0.3,
	}, []ocr.Engine{eng}, nil, nil)

	return NewProcessor(
		nil,
		adapter,
		extract.NewExtractor(catalog.New(), cfg, nil),
		validate.NewValidator(cfg, nil),
		record.NewAssembler(cfg.MinConfidence, nil),
		nil,
	)
}

func TestProcessHappyPath(t *testing.T) {
	eng := &cannedEngine{text: "Folio: 001234\nRUT: 12.345.678-5\nFecha: 05/03/2024\nPor atención profesional: Kinesiología\n$45.000"}
	p := newTestProcessor(eng)

	rec, err := p.Process(context.Background(), "boleta.png")
	require.NoError(t, err)

	assert.Equal(t, "001234", rec.Fields[constants.FieldFolio].Norm)
	assert.Equal(t, "12345678-5", rec.Fields[constants.FieldRUT].Norm)
	assert.Equal(t, "2024-03-05", rec.Fields[constants.FieldDate].Norm)
	assert.Equal(t, "Kinesiología", rec.Fields[constants.FieldGlosa].Norm)
	assert.Equal(t, int64(45000), rec.Fields[constants.FieldAmount].Int)
	assert.False(t, rec.OCRFailed)
	assert.Greater(t, rec.Confidence, float32(0))
	// hours and decreto are genuinely absent from this document
	assert.ElementsMatch(t, []constants.FieldID{constants.FieldHours, constants.FieldDecreto}, rec.MissingFields)
}

func TestProcessCompleteDocumentHasNoMissingFields(t *testing.T) {
	eng := &cannedEngine{text: "Folio: 001234\nRUT: 12.345.678-5\nFecha: 05/03/2024\nPor atención profesional: Kinesiología\n4 hrs\nD.A.N° 4521\nMonto $45.000"}
	p := newTestProcessor(eng)

	rec, err := p.Process(context.Background(), "boleta.png")
	require.NoError(t, err)
	assert.Empty(t, rec.MissingFields)
	assert.Greater(t, rec.Confidence, float32(0))
	assert.False(t, rec.NeedsReview)
}

func TestProcessAmountAboveMaxIsMissing(t *testing.T) {
	eng := &cannedEngine{text: "Folio: 001234\nRUT: 12.345.678-5\nmonto total $99,999,999 por servicios"}
	p := newTestProcessor(eng)

	rec, err := p.Process(context.Background(), "boleta.png")
	require.NoError(t, err)

	_, ok := rec.Fields[constants.FieldAmount]
	assert.False(t, ok)
	assert.True(t, rec.IsMissing(constants.FieldAmount))
}

func TestProcessBackendFailureYieldsAllMissingRecord(t *testing.T) {
	eng := &cannedEngine{err: errors.New("exit status 1")}
	p := newTestProcessor(eng)

	rec, err := p.Process(context.Background(), "boleta.png")
	require.NoError(t, err)

	assert.True(t, rec.OCRFailed)
	assert.Empty(t, rec.Fields)
	assert.Zero(t, rec.Confidence)
	assert.ElementsMatch(t, constants.AllFields(), rec.MissingFields)
	assert.True(t, rec.NeedsReview)
}

func TestQueueProcessesAllJobs(t *testing.T) {
	eng := &cannedEngine{text: "Folio: 001234\nRUT: 12.345.678-5\nFecha: 05/03/2024\nPor atención profesional: Kinesiología\n$45.000"}
	p := newTestProcessor(eng)

	q := NewQueue(p, nil, WithWorkers(2), WithQueueSize(8), WithProcessTimeout(5*time.Second))
	for i := 0; i < 5; i++ {
		q.Enqueue(context.Background(), Job{Path: "boleta.png"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	q.Shutdown(ctx)
	// shutdown drains the channel; nothing left to assert beyond no deadlock
}
