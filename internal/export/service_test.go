package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vparedes/boletas-ocr/constants"
	"github.com/vparedes/boletas-ocr/internal/entity"
	"github.com/vparedes/boletas-ocr/internal/ocr"
	"github.com/vparedes/boletas-ocr/internal/record"
)

func exportSample(t *testing.T) []entity.DocumentRecord {
	t.Helper()
	a := record.NewAssembler(0.5, nil)

	rut := entity.ValidatedField{ID: constants.FieldRUT, Raw: "12.345.678-5", Norm: "12345678-5", Valid: true, Confidence: 0.9}
	full := a.Assemble("boleta-1.png", ocr.Result{Engine: "tesseract"}, map[constants.FieldID]entity.ValidatedField{
		constants.FieldRUT:     rut,
		constants.FieldFolio:   {ID: constants.FieldFolio, Raw: "001234", Norm: "001234", Valid: true, Confidence: 0.8},
		constants.FieldDate:    {ID: constants.FieldDate, Raw: "05/03/2024", Norm: "2024-03-05", Valid: true, Confidence: 0.7},
		constants.FieldAmount:  {ID: constants.FieldAmount, Raw: "$45.000", Norm: "45000", Int: 45000, Valid: true, Confidence: 0.7},
		constants.FieldGlosa:   {ID: constants.FieldGlosa, Raw: "Kinesiología", Norm: "Kinesiología", Valid: true, Confidence: 0.6},
		constants.FieldHours:   {ID: constants.FieldHours, Raw: "4 hrs", Norm: "4", Int: 4, Valid: true, Confidence: 0.6},
		constants.FieldDecreto: {ID: constants.FieldDecreto, Raw: "4521", Norm: "4521", Valid: true, Confidence: 0.7},
	}, []entity.ValidatedField{rut})

	failed := a.Assemble("boleta-2.png", ocr.Result{Failed: true}, nil, nil)
	return []entity.DocumentRecord{full, failed}
}

func TestRecordsXLSX(t *testing.T) {
	svc := NewService(nil)

	data, err := svc.RecordsXLSX(exportSample(t))
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue("Boletas", cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Archivo", get("A1"))
	assert.Equal(t, "Revisar", get("K1"))

	assert.Equal(t, "boleta-1.png", get("A2"))
	assert.Equal(t, "001234", get("B2"))
	assert.Equal(t, "12345678-5", get("C2"))
	assert.Equal(t, "2024-03-05", get("D2"))
	assert.Equal(t, "45000", get("E2"))
	assert.Equal(t, "Kinesiología", get("F2"))
	assert.Equal(t, "NO", get("K2"))

	assert.Equal(t, "boleta-2.png", get("A3"))
	assert.Equal(t, "", get("B3"))
	assert.Equal(t, "SI", get("K3"))
	assert.NotEmpty(t, get("J3"))
}

func TestRecordsXLSXEmpty(t *testing.T) {
	svc := NewService(nil)

	data, err := svc.RecordsXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Boletas", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Archivo", v)
}
