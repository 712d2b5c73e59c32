package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// CellKind identifies which variant a CellValue holds.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// CellValue is a single spreadsheet cell: empty, text or number.
type CellValue struct {
	kind CellKind
	text string
	num  float64
}

// Empty returns the empty cell.
func Empty() CellValue { return CellValue{} }

// Text returns a text cell. Blank text is treated as empty.
func Text(s string) CellValue {
	if strings.TrimSpace(s) == "" {
		return CellValue{}
	}
	return CellValue{kind: CellText, text: s}
}

// Number returns a numeric cell.
func Number(f float64) CellValue {
	return CellValue{kind: CellNumber, num: f}
}

func (v CellValue) Kind() CellKind { return v.kind }

func (v CellValue) IsEmpty() bool { return v.kind == CellEmpty }

// String renders the cell as the vendor typed it. Numbers use the shortest
// representation that round-trips.
func (v CellValue) String() string {
	switch v.kind {
	case CellText:
		return strings.TrimSpace(v.text)
	case CellNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

func (v CellValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case CellText:
		return json.Marshal(v.String())
	case CellNumber:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// RawRow is one data row of an uploaded sheet: an immutable, ordered
// header to cell mapping. Header lookups ignore case, whitespace and
// punctuation.
type RawRow struct {
	line    int
	headers []string
	values  []CellValue
	index   map[string]int
}

// NewRawRow builds a row. line is the display row number (sheet data index
// + 2, header being row 1). Missing trailing values are empty; values past
// the last header stay reachable through Column.
func NewRawRow(line int, headers []string, values []CellValue) RawRow {
	r := RawRow{
		line:    line,
		headers: make([]string, len(headers)),
		index:   make(map[string]int, len(headers)),
	}
	for i, h := range headers {
		h = strings.TrimSpace(h)
		r.headers[i] = h
		key := HeaderKey(h)
		if key == "" {
			continue
		}
		// First occurrence wins for duplicated headers
		if _, exists := r.index[key]; !exists {
			r.index[key] = i
		}
	}

	n := len(values)
	if n < len(headers) {
		n = len(headers)
	}
	r.values = make([]CellValue, n)
	copy(r.values, values)
	return r
}

// HeaderKey normalizes a header for comparison: lowercase letters and
// digits only.
func HeaderKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Line returns the display row number.
func (r RawRow) Line() int { return r.line }

// Headers returns a copy of the row's headers in sheet order.
func (r RawRow) Headers() []string {
	out := make([]string, len(r.headers))
	copy(out, r.headers)
	return out
}

// Value returns the cell under header, if the header exists.
func (r RawRow) Value(header string) (CellValue, bool) {
	i, ok := r.index[HeaderKey(header)]
	if !ok {
		return CellValue{}, false
	}
	return r.values[i], true
}

// GetVal returns the first non-empty cell among the given header aliases,
// in alias order.
func (r RawRow) GetVal(aliases ...string) CellValue {
	for _, a := range aliases {
		if v, ok := r.Value(a); ok && !v.IsEmpty() {
			return v
		}
	}
	return CellValue{}
}

// GetString is GetVal rendered as trimmed text.
func (r RawRow) GetString(aliases ...string) string {
	return r.GetVal(aliases...).String()
}

// Lookup resolves a canonical field through the shared alias table.
func (r RawRow) Lookup(f CanonicalField) CellValue {
	return r.GetVal(Aliases(f)...)
}

// Column returns the cell at a spreadsheet column letter ("A", "C", "AB")
// in this row.
func (r RawRow) Column(letter string) CellValue {
	n, err := excelize.ColumnNameToNumber(letter)
	if err != nil || n < 1 || n > len(r.values) {
		return CellValue{}
	}
	return r.values[n-1]
}

// ColumnHeader returns the header above a spreadsheet column letter, or ""
// when the column has none.
func (r RawRow) ColumnHeader(letter string) string {
	n, err := excelize.ColumnNameToNumber(letter)
	if err != nil || n < 1 || n > len(r.headers) {
		return ""
	}
	return r.headers[n-1]
}

// IsEmpty reports whether every cell in the row is empty.
func (r RawRow) IsEmpty() bool {
	for _, v := range r.values {
		if !v.IsEmpty() {
			return false
		}
	}
	return true
}

// Cells returns the row as header to text, for error reports.
func (r RawRow) Cells() map[string]string {
	out := make(map[string]string, len(r.headers))
	for i, h := range r.headers {
		if h == "" {
			continue
		}
		if _, exists := out[h]; exists {
			continue
		}
		out[h] = r.values[i].String()
	}
	return out
}
