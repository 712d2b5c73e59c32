package core

import (
	"strings"
	"testing"
)

func TestValidateRecord_Common(t *testing.T) {
	def := CategoryDefinition{Info: CategoryInfo{Type: ProductTypeGemstone}}

	tests := []struct {
		name     string
		rec      *GemstoneRecord
		opts     ValidationOptions
		wantErrs []string
	}{
		{
			name: "valid",
			rec:  &GemstoneRecord{CommonFields: CommonFields{Name: "Ruby", PriceINR: dec("100"), StockQuantity: 1}},
		},
		{
			name:     "missing name",
			rec:      &GemstoneRecord{CommonFields: CommonFields{PriceINR: dec("100")}},
			wantErrs: []string{"name"},
		},
		{
			name:     "zero price",
			rec:      &GemstoneRecord{CommonFields: CommonFields{Name: "Ruby"}},
			wantErrs: []string{"price_inr must be > 0"},
		},
		{
			name:     "negative stock",
			rec:      &GemstoneRecord{CommonFields: CommonFields{Name: "Ruby", PriceINR: dec("1"), StockQuantity: -1}},
			wantErrs: []string{"stock_quantity"},
		},
		{
			name: "placeholder allowed by default",
			rec:  &GemstoneRecord{CommonFields: CommonFields{Name: "Ruby", PriceINR: PlaceholderPrice, PriceDefaulted: true}},
		},
		{
			name:     "placeholder rejected when strict",
			rec:      &GemstoneRecord{CommonFields: CommonFields{Name: "Ruby", PriceINR: PlaceholderPrice, PriceDefaulted: true}},
			opts:     ValidationOptions{StrictPricing: true},
			wantErrs: []string{"price_inr is missing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := ValidateRecord(def, tt.rec, tt.opts)
			if len(msgs) != len(tt.wantErrs) {
				t.Fatalf("ValidateRecord() = %v, want %d errors", msgs, len(tt.wantErrs))
			}
			for i, want := range tt.wantErrs {
				if !strings.Contains(msgs[i], want) {
					t.Errorf("error %d = %q, want it to contain %q", i, msgs[i], want)
				}
			}
		})
	}
}

func TestValidateRecord_TypeMismatch(t *testing.T) {
	def := CategoryDefinition{Info: CategoryInfo{Type: ProductTypeDiamond}}
	rec := &GemstoneRecord{CommonFields: CommonFields{Name: "Ruby", PriceINR: dec("1")}}

	msgs := ValidateRecord(def, rec, ValidationOptions{})
	if len(msgs) != 1 || !strings.Contains(msgs[0], "does not match") {
		t.Errorf("ValidateRecord() = %v, want product type mismatch", msgs)
	}
}

func TestValidateRecord_CategoryValidatorRuns(t *testing.T) {
	def := CategoryDefinition{
		Info: CategoryInfo{Type: ProductTypeGemstone},
		Validate: func(rec ProductRecord) []string {
			return []string{RequireText(FieldGemstoneName, rec.(*GemstoneRecord).GemstoneName)}
		},
	}
	rec := &GemstoneRecord{CommonFields: CommonFields{Name: "Ruby", PriceINR: dec("1")}}

	msgs := ValidateRecord(def, rec, ValidationOptions{})
	if len(msgs) != 1 || msgs[0] != "missing required field gemstone_name" {
		t.Errorf("ValidateRecord() = %v", msgs)
	}
}

func TestHelpers(t *testing.T) {
	if msg := OneOf(FieldDeliveryType, "later", "immediate", "scheduled"); msg == "" {
		t.Error("OneOf should reject unknown value")
	}
	if msg := OneOf(FieldDeliveryType, "scheduled", "immediate", "scheduled"); msg != "" {
		t.Errorf("OneOf(scheduled) = %q", msg)
	}
	if msg := PurityInRange(1.2); msg == "" {
		t.Error("PurityInRange(1.2) should fail")
	}
	if msg := PurityInRange(1); msg != "" {
		t.Errorf("PurityInRange(1) = %q", msg)
	}
	if msg := NonNegative(FieldCarat, dec("-0.1")); !strings.Contains(msg, "carat must be >= 0") {
		t.Errorf("NonNegative = %q", msg)
	}
}
