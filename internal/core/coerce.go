package core

// coerce.go turns messy spreadsheet cells into numbers and purity fractions.
//
// Vendor sheets carry every kind of noise around a number:
//   - Currency symbols and codes (₹, $, €, £, Rs., INR)
//   - Thousands separators, including non-breaking spaces
//   - Accounting format for negatives "(123.45)"
//   - Trailing units ("12.5 g", "0.30 ct")
//   - Excel formula prefixes (="value")
//
// Coercion never fails: anything that cannot be read as a finite number
// becomes zero, and the validator decides whether zero is acceptable.

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// leadingNumberRegex matches the numeric prefix of a cleaned cell.
// Matches integers, decimals, and scientific notation.
var leadingNumberRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

var currencyReplacer = strings.NewReplacer(
	"₹", "", // Rupee
	"$", "",
	"€", "", // Euro
	"£", "", // Pound
	",", "",
	"\u00a0", "", // NBSP
	" ", "",
)

// currencyCodes are stripped case-insensitively from either end of a cell.
var currencyCodes = []string{"rs.", "rs", "inr", "usd"}

// DefaultPurity is the gold fraction used when a purity cell is missing or
// unrecognised. 0.916 is 22K.
var DefaultPurity = 0.916

// karatFractions is the fixed karat to gold-fraction table.
var karatFractions = map[int]float64{
	24: 1.0,
	23: 0.958,
	22: 0.916,
	21: 0.875,
	20: 0.833,
	18: 0.75,
	16: 0.666,
	15: 0.625,
	14: 0.585,
	12: 0.5,
	10: 0.417,
	9:  0.375,
}

var karatRegex = regexp.MustCompile(`^(\d{1,2})\s*(k|kt|kr|karat|karats|carat|ct)$`)

var (
	decimalHundred  = decimal.NewFromInt(100)
	decimalThousand = decimal.NewFromInt(1000)
	decimalOne      = decimal.NewFromInt(1)
)

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// numericText reduces a cell to the leading number it carries.
// Returns false when no number is present.
func numericText(s string) (string, bool) {
	s = CleanCell(s)
	if s == "" {
		return "", false
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = s[1 : len(s)-1]
	}

	s = strings.ToLower(currencyReplacer.Replace(s))
	for _, code := range currencyCodes {
		s = strings.TrimPrefix(s, code)
		s = strings.TrimSuffix(s, code)
	}

	m := leadingNumberRegex.FindString(s)
	if m == "" {
		return "", false
	}
	if isNegative && !strings.HasPrefix(m, "-") {
		m = "-" + strings.TrimPrefix(m, "+")
	}
	return m, true
}

// SafeNumberString parses a cell's text as a float.
// Returns 0 for empty, unparseable, NaN or infinite input.
func SafeNumberString(s string) float64 {
	text, ok := numericText(s)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// SafeNumber coerces a cell to a float. It never panics.
func SafeNumber(v CellValue) float64 {
	switch v.Kind() {
	case CellNumber:
		f := v.num
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	case CellText:
		return SafeNumberString(v.text)
	default:
		return 0
	}
}

// SafeDecimal coerces a cell to an exact decimal, following the same rules
// as SafeNumber.
func SafeDecimal(v CellValue) decimal.Decimal {
	switch v.Kind() {
	case CellNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(v.num)
	case CellText:
		text, ok := numericText(v.text)
		if !ok {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(text)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// SafeInt coerces a cell to an integer, truncating fractions.
// Empty or unparseable cells yield def.
func SafeInt(v CellValue, def int) int {
	if v.IsEmpty() {
		return def
	}
	if v.Kind() == CellText {
		if _, ok := numericText(v.text); !ok {
			return def
		}
	}
	f := SafeNumber(v)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(math.Trunc(f))
}

// ParsePurity reads a purity label as a gold fraction in (0, 1].
//
// Accepted forms:
//   - Karat labels "22K", "18 KT", "14karat" (fixed table, 24K..9K)
//   - Bare karat numbers that appear in the table ("22")
//   - Percentages "91.6%"
//   - Fractions in (0, 1] ("0.75")
//   - Numbers in (1, 100] as percent ("75" is 0.75)
//   - Numbers in (100, 1000] as millesimal fineness ("916")
//
// The second return value reports whether the label was recognised.
func ParsePurity(s string) (float64, bool) {
	s = strings.ToLower(CleanCell(s))
	if s == "" {
		return 0, false
	}

	if m := karatRegex.FindStringSubmatch(s); m != nil {
		k, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		f, ok := karatFractions[k]
		return f, ok
	}

	if strings.HasSuffix(s, "%") {
		d, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(s, "%")))
		if err != nil {
			return 0, false
		}
		return purityFraction(d.Div(decimalHundred))
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}

	if d.IsInteger() {
		if f, ok := karatFractions[int(d.IntPart())]; ok {
			return f, true
		}
	}

	switch {
	case d.Sign() <= 0:
		return 0, false
	case d.LessThanOrEqual(decimalOne):
		return purityFraction(d)
	case d.LessThanOrEqual(decimalHundred):
		return purityFraction(d.Div(decimalHundred))
	case d.LessThanOrEqual(decimalThousand):
		return purityFraction(d.Div(decimalThousand))
	default:
		return 0, false
	}
}

func purityFraction(d decimal.Decimal) (float64, bool) {
	if d.Sign() <= 0 || d.GreaterThan(decimalOne) {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// NormalizePurity returns the gold fraction for a purity label, falling
// back to DefaultPurity.
func NormalizePurity(s string) float64 {
	return NormalizePurityOr(s, DefaultPurity)
}

// NormalizePurityOr is NormalizePurity with an explicit fallback.
func NormalizePurityOr(s string, fallback float64) float64 {
	if f, ok := ParsePurity(s); ok {
		return f
	}
	return fallback
}
