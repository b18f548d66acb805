package constants

import "strings"

// KnownPrograms holds the closed set of municipal program ("convenio") codes
// that may appear in a boleta's glosa line. Loaded once; never mutated.
var KnownPrograms = []string{
	"KINESIOLOGIA",
	"FONOAUDIOLOGIA",
	"PSICOLOGIA",
	"NUTRICION",
	"PODOLOGIA",
	"TERAPIA OCUPACIONAL",
	"ATENCION DOMICILIARIA",
	"SALUD MENTAL",
	"REHABILITACION",
	"CONVENIO SENAMA",
}

// SpanishMonths maps lowercase Spanish month names to their 1-12 number.
var SpanishMonths = map[string]int{
	"enero":      1,
	"febrero":    2,
	"marzo":      3,
	"abril":      4,
	"mayo":       5,
	"junio":      6,
	"julio":      7,
	"agosto":     8,
	"septiembre": 9,
	"octubre":    10,
	"noviembre":  11,
	"diciembre":  12,
}

// MonthNumber resolves a Spanish month name, case-insensitively.
func MonthNumber(name string) (int, bool) {
	n, ok := SpanishMonths[strings.ToLower(strings.TrimSpace(name))]
	return n, ok
}
