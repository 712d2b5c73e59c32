package core

// validation.go checks canonical records before they reach the preview.
//
// Validation happens at two levels:
//  1. Common rules: name, positive price, non-negative stock
//  2. Category rules: registered per category (weights, purity, shape...)
//
// All violations of a row are collected so the vendor sees every problem
// at once. Messages name the canonical field they concern.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PlaceholderPrice is written into price_inr when a row has no usable
// price. Rows carrying it are flagged price_defaulted.
var PlaceholderPrice = decimal.RequireFromString("0.01")

// RowError reports why a row (or a group of duplicate rows) was rejected.
type RowError struct {
	RowNumber  int      `json:"rowNumber"`
	Identifier string   `json:"identifier"`
	Messages   []string `json:"messages"`
	RowNumbers []int    `json:"rowNumbers,omitempty"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %s", e.RowNumber, e.Identifier, strings.Join(e.Messages, "; "))
}

// ValidationOptions tunes the common rules.
type ValidationOptions struct {
	// StrictPricing rejects rows whose price fell back to the placeholder.
	StrictPricing bool
}

// ValidateRecord runs the common rules, then the category's own validator.
func ValidateRecord(def CategoryDefinition, rec ProductRecord, opts ValidationOptions) []string {
	var msgs []string

	if rec.ProductType() != def.Info.Type {
		msgs = append(msgs, fmt.Sprintf("product type %q does not match category %q", rec.ProductType(), def.Info.Type))
	}

	msgs = append(msgs, validateCommon(rec.Common(), opts)...)

	if def.Validate != nil {
		msgs = append(msgs, def.Validate(rec)...)
	}
	return msgs
}

func validateCommon(c CommonFields, opts ValidationOptions) []string {
	var msgs []string

	if msg := RequireText(FieldName, c.Name); msg != "" {
		msgs = append(msgs, msg)
	}
	if msg := RequirePositive(FieldPriceINR, c.PriceINR); msg != "" {
		msgs = append(msgs, msg)
	}
	if opts.StrictPricing && c.PriceDefaulted {
		msgs = append(msgs, fmt.Sprintf("%s is missing; a real price is required", FieldPriceINR))
	}
	if c.StockQuantity < 0 {
		msgs = append(msgs, fmt.Sprintf("%s must be >= 0, got %d", FieldStockQuantity, c.StockQuantity))
	}
	if msg := NonNegative(FieldCostPrice, c.CostPrice); msg != "" {
		msgs = append(msgs, msg)
	}
	if msg := NonNegative(FieldRetailPrice, c.RetailPrice); msg != "" {
		msgs = append(msgs, msg)
	}
	return msgs
}

// RequireText returns a violation if value is blank.
func RequireText(f CanonicalField, value string) string {
	if strings.TrimSpace(value) == "" {
		return fmt.Sprintf("missing required field %s", f)
	}
	return ""
}

// RequirePositive returns a violation unless d > 0.
func RequirePositive(f CanonicalField, d decimal.Decimal) string {
	if !d.IsPositive() {
		return fmt.Sprintf("%s must be > 0, got %s", f, d.String())
	}
	return ""
}

// NonNegative returns a violation if d < 0.
func NonNegative(f CanonicalField, d decimal.Decimal) string {
	if d.IsNegative() {
		return fmt.Sprintf("%s must be >= 0, got %s", f, d.String())
	}
	return ""
}

// OneOf returns a violation unless value is in allowed.
func OneOf(f CanonicalField, value string, allowed ...string) string {
	for _, a := range allowed {
		if value == a {
			return ""
		}
	}
	return fmt.Sprintf("%s must be one of %s, got %q", f, strings.Join(allowed, ", "), value)
}

// PurityInRange returns a violation unless 0 < fraction <= 1.
func PurityInRange(fraction float64) string {
	if fraction <= 0 || fraction > 1 {
		return fmt.Sprintf("purity fraction must be in (0, 1], got %s", strconv.FormatFloat(fraction, 'f', -1, 64))
	}
	return ""
}

// ValidateHeaders checks that every required field of the category was
// resolved. It returns nil when nothing is missing.
func ValidateHeaders(report ColumnReport) error {
	if !report.HasMissing() {
		return nil
	}
	names := make([]string, len(report.Missing))
	for i, f := range report.Missing {
		names[i] = string(f)
	}
	return fmt.Errorf("missing required columns: %s", strings.Join(names, ", "))
}
