package core

import (
	"math"
	"testing"
)

// ----------------------------------------------------------------------------
// SafeNumber Tests
// ----------------------------------------------------------------------------

func TestSafeNumberString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		// Zero cases
		{name: "empty", input: "", want: 0},
		{name: "whitespace", input: "   ", want: 0},
		{name: "text", input: "abc", want: 0},
		{name: "NaN text", input: "NaN", want: 0},
		{name: "infinity text", input: "Infinity", want: 0},
		{name: "overflow", input: "1e999", want: 0},
		{name: "dash only", input: "-", want: 0},

		// Plain numbers
		{name: "integer", input: "42", want: 42},
		{name: "decimal", input: "10.5", want: 10.5},
		{name: "leading decimal point", input: ".75", want: 0.75},
		{name: "negative", input: "-3", want: -3},
		{name: "scientific", input: "1.5e3", want: 1500},

		// Currency and separators
		{name: "rupee sign", input: "₹1,20,000", want: 120000},
		{name: "dollar sign", input: "$1,234.56", want: 1234.56},
		{name: "euro sign", input: "€99", want: 99},
		{name: "pound sign", input: "£5.5", want: 5.5},
		{name: "Rs prefix", input: "Rs. 2,500", want: 2500},
		{name: "INR suffix", input: "7000 INR", want: 7000},
		{name: "nbsp thousands", input: "1 000", want: 1000},

		// Accounting and units
		{name: "accounting negative", input: "(123.45)", want: -123.45},
		{name: "accounting negative with currency", input: "($1,234.56)", want: -1234.56},
		{name: "grams suffix", input: "12.5 g", want: 12.5},
		{name: "carat suffix", input: "0.30ct", want: 0.30},
		{name: "excel formula", input: `="450"`, want: 450},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeNumberString(tt.input)
			if got != tt.want {
				t.Errorf("SafeNumberString(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSafeNumber_CellKinds(t *testing.T) {
	tests := []struct {
		name string
		cell CellValue
		want float64
	}{
		{name: "empty cell", cell: Empty(), want: 0},
		{name: "blank text is empty", cell: Text("  "), want: 0},
		{name: "number cell", cell: Number(7.25), want: 7.25},
		{name: "NaN number", cell: Number(math.NaN()), want: 0},
		{name: "infinite number", cell: Number(math.Inf(1)), want: 0},
		{name: "text cell", cell: Text("1,000"), want: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeNumber(tt.cell); got != tt.want {
				t.Errorf("SafeNumber() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSafeDecimal(t *testing.T) {
	tests := []struct {
		name string
		cell CellValue
		want string
	}{
		{name: "empty", cell: Empty(), want: "0"},
		{name: "garbage", cell: Text("n/a"), want: "0"},
		{name: "exact decimal text", cell: Text("0.1"), want: "0.1"},
		{name: "float cell", cell: Number(0.916), want: "0.916"},
		{name: "currency text", cell: Text("₹64,120.00"), want: "64120"},
		{name: "NaN", cell: Number(math.NaN()), want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeDecimal(tt.cell).String(); got != tt.want {
				t.Errorf("SafeDecimal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSafeInt(t *testing.T) {
	tests := []struct {
		name string
		cell CellValue
		def  int
		want int
	}{
		{name: "empty uses default", cell: Empty(), def: 1, want: 1},
		{name: "text uses default", cell: Text("many"), def: 1, want: 1},
		{name: "integer", cell: Text("5"), def: 1, want: 5},
		{name: "fraction truncated", cell: Number(3.9), def: 1, want: 3},
		{name: "zero kept", cell: Number(0), def: 1, want: 0},
		{name: "negative kept", cell: Text("-2"), def: 1, want: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeInt(tt.cell, tt.def); got != tt.want {
				t.Errorf("SafeInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Purity Tests
// ----------------------------------------------------------------------------

func TestNormalizePurity(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		// Karat table
		{"24K", 1.0},
		{"23K", 0.958},
		{"22K", 0.916},
		{"21K", 0.875},
		{"20K", 0.833},
		{"18K", 0.75},
		{"16K", 0.666},
		{"15K", 0.625},
		{"14K", 0.585},
		{"12K", 0.5},
		{"10K", 0.417},
		{"9K", 0.375},

		// Suffix spellings
		{"22kt", 0.916},
		{"18 KT", 0.75},
		{"14 Karat", 0.585},
		{"22", 0.916},

		// Percent, fraction, fineness
		{"91.6%", 0.916},
		{"75%", 0.75},
		{"0.75", 0.75},
		{"1", 1.0},
		{"58.5", 0.585},
		{"916", 0.916},
		{"750", 0.75},

		// Fallbacks
		{"", DefaultPurity},
		{"gold", DefaultPurity},
		{"11K", DefaultPurity},
		{"0", DefaultPurity},
		{"-18", DefaultPurity},
		{"1200", DefaultPurity},
		{"150%", DefaultPurity},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizePurity(tt.input); got != tt.want {
				t.Errorf("NormalizePurity(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePurity_Recognition(t *testing.T) {
	if _, ok := ParsePurity("22K"); !ok {
		t.Error("ParsePurity(22K) not recognised")
	}
	if _, ok := ParsePurity("platinum"); ok {
		t.Error("ParsePurity(platinum) recognised, want false")
	}
	if got := NormalizePurityOr("platinum", 0.95); got != 0.95 {
		t.Errorf("NormalizePurityOr fallback = %v, want 0.95", got)
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{`="00123"`, "00123"},
		{"=SUM", "SUM"},
		{`"quoted"`, "quoted"},
		{"'single'", "single"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
