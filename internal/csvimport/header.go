package csvimport

import "strings"

// Canonical field names every header alias resolves to.
const (
	FieldStudentID          = "student_id"
	FieldEmail              = "email"
	FieldFullName           = "full_name"
	FieldPhone              = "phone"
	FieldAddress            = "address"
	FieldGPA                = "gpa"
	FieldFamilyIncome       = "family_income"
	FieldEssay              = "essay"
	FieldSupportingDocument = "supporting_document"
	FieldRecommendation     = "recommendation"
	FieldStatus             = "status"
	FieldStage              = "stage"
	FieldNote               = "note"
)

// Columns is the column layout written by the exporter and the fixer tool.
// The scholarship office spreadsheets use the Indonesian names.
var Columns = []string{
	"nim", "email", "nama_lengkap", "nomor_telepon", "alamat", "ipk", "penghasilan_keluarga",
	"essay", "dokumen_pendukung", "rekomendasi", "status", "tahap", "catatan",
}

var headerAliases = map[string]string{
	"nim":                  FieldStudentID,
	"student_id":           FieldStudentID,
	"studentid":            FieldStudentID,
	"id_mahasiswa":         FieldStudentID,
	"email":                FieldEmail,
	"e_mail":               FieldEmail,
	"surel":                FieldEmail,
	"nama_lengkap":         FieldFullName,
	"nama":                 FieldFullName,
	"full_name":            FieldFullName,
	"fullname":             FieldFullName,
	"name":                 FieldFullName,
	"nomor_telepon":        FieldPhone,
	"no_telepon":           FieldPhone,
	"telepon":              FieldPhone,
	"no_hp":                FieldPhone,
	"phone":                FieldPhone,
	"phone_number":         FieldPhone,
	"alamat":               FieldAddress,
	"address":              FieldAddress,
	"ipk":                  FieldGPA,
	"gpa":                  FieldGPA,
	"penghasilan_keluarga": FieldFamilyIncome,
	"penghasilan":          FieldFamilyIncome,
	"family_income":        FieldFamilyIncome,
	"income":               FieldFamilyIncome,
	"essay":                FieldEssay,
	"esai":                 FieldEssay,
	"dokumen_pendukung":    FieldSupportingDocument,
	"supporting_document":  FieldSupportingDocument,
	"document":             FieldSupportingDocument,
	"rekomendasi":          FieldRecommendation,
	"recommendation":       FieldRecommendation,
	"status":               FieldStatus,
	"tahap":                FieldStage,
	"stage":                FieldStage,
	"catatan":              FieldNote,
	"note":                 FieldNote,
	"notes":                FieldNote,
	"keterangan":           FieldNote,
}

// NormalizeHeader reduces a raw header cell to its canonical field name. Unknown
// headers are returned in normalized form so they can still be reported.
func NormalizeHeader(raw string) string {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
	key = strings.TrimPrefix(key, "format.")
	key = strings.Join(strings.FieldsFunc(key, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
	if field, ok := headerAliases[key]; ok {
		return field
	}
	return key
}

// Header maps canonical field names to column positions.
type Header map[string]int

// ParseHeader builds the column index from the header record. When two columns
// resolve to the same field the first one wins.
func ParseHeader(record []string) Header {
	h := make(Header, len(record))
	for i, cell := range record {
		name := NormalizeHeader(cell)
		if name == "" {
			continue
		}
		if _, exists := h[name]; !exists {
			h[name] = i
		}
	}
	return h
}

// Has reports whether the header carries the field.
func (h Header) Has(field string) bool {
	_, ok := h[field]
	return ok
}

// cell returns the trimmed value for field and whether the column exists in this record.
// The placeholder "-" reads as empty.
func (h Header) cell(record []string, field string) (string, bool) {
	idx, ok := h[field]
	if !ok || idx >= len(record) {
		return "", false
	}
	value := strings.TrimSpace(record[idx])
	if value == placeholderCell {
		value = ""
	}
	return value, true
}
