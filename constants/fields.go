package constants

// FieldID identifies one extractable boleta field.
type FieldID string

// Stable values (store these exact strings in exports and the DB).
const (
	FieldRUT     FieldID = "rut"
	FieldFolio   FieldID = "folio"
	FieldDate    FieldID = "date"
	FieldAmount  FieldID = "amount"
	FieldGlosa   FieldID = "glosa"
	FieldHours   FieldID = "hours"
	FieldDecreto FieldID = "decreto"
)

var allFields = []FieldID{
	FieldRUT,
	FieldFolio,
	FieldDate,
	FieldAmount,
	FieldGlosa,
	FieldHours,
	FieldDecreto,
}

// AllFields returns every known field identifier in canonical order.
func AllFields() []FieldID {
	out := make([]FieldID, len(allFields))
	copy(out, allFields)
	return out
}

// IsKnownField reports whether id names a field in the catalog.
func IsKnownField(id FieldID) bool {
	for _, f := range allFields {
		if f == id {
			return true
		}
	}
	return false
}
