package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductType is the catalog category a batch imports into.
type ProductType string

const (
	ProductTypeJewellery ProductType = "jewellery"
	ProductTypeGemstone  ProductType = "gemstone"
	ProductTypeDiamond   ProductType = "diamond"
)

// ParseProductType accepts the category names used in URLs and forms.
// Returns false for anything else.
func ParseProductType(s string) (ProductType, bool) {
	switch HeaderKey(s) {
	case "jewellery", "jewelry":
		return ProductTypeJewellery, true
	case "gemstone", "gemstones", "gem", "gems":
		return ProductTypeGemstone, true
	case "diamond", "diamonds":
		return ProductTypeDiamond, true
	default:
		return "", false
	}
}

// Valid reports whether t is one of the known categories.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeJewellery, ProductTypeGemstone, ProductTypeDiamond:
		return true
	}
	return false
}

// FieldType represents the expected data type for a sheet column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldNumeric
	FieldURL
)

func (t FieldType) String() string {
	switch t {
	case FieldEnum:
		return "enum"
	case FieldNumeric:
		return "number"
	case FieldURL:
		return "url"
	default:
		return "text"
	}
}

// FieldSpec describes one canonical column of a category.
type FieldSpec struct {
	Field       CanonicalField // Canonical field name
	Label       string         // Header written into downloadable templates
	Type        FieldType      // Expected data type
	Required    bool           // Column must be present for the import to make sense
	EnumValues  []string       // Valid values for FieldEnum type
	Example     string         // Sample value for templates
	Description string         // Help text for templates
}

// HeaderLabel returns the template header for the field.
func (f FieldSpec) HeaderLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return string(f.Field)
}

// CategoryInfo contains display information about a category.
type CategoryInfo struct {
	Type      ProductType // "jewellery"
	Label     string      // Display name: "Jewellery"
	SKUPrefix string      // Prefix for generated SKUs: "GEM"; empty leaves blank SKUs blank
}

// RowProcessor turns one raw row into a canonical record. Processors are
// pure: no I/O, no errors, every value coerced with a default.
type RowProcessor func(row RawRow, vendorID string, index int, images ImageSet, pctx PricingContext) ProductRecord

// RecordValidator returns category-specific violations for a record.
// An empty result means the record passes.
type RecordValidator func(rec ProductRecord) []string

// CategoryDefinition contains everything needed to import one category.
type CategoryDefinition struct {
	Info     CategoryInfo
	Fields   []FieldSpec
	Process  RowProcessor
	Validate RecordValidator
}

// RequiredFields returns the canonical fields marked required.
func (d CategoryDefinition) RequiredFields() []CanonicalField {
	var out []CanonicalField
	for _, f := range d.Fields {
		if f.Required {
			out = append(out, f.Field)
		}
	}
	return out
}

// PricingProfile is a vendor's configured commodity rates. Zero values mean
// the vendor has not configured that rate.
type PricingProfile struct {
	GoldRatePerGram     decimal.Decimal
	MakingChargePerGram decimal.Decimal
}

// PricingContext carries the per-batch inputs of the pricing calculator.
// It is built once per batch and shared read-only by every row.
type PricingContext struct {
	VendorID             string
	GoldRatePerGram      decimal.Decimal
	MakingChargePerGram  decimal.Decimal
	ExchangeRateINRtoUSD decimal.NullDecimal
}

// StoredProduct is the store's view of an existing catalog product.
type StoredProduct struct {
	ID          string
	VendorID    string
	SKU         string
	ProductType ProductType
}

// PricingProfileProvider looks up a vendor's pricing profile.
type PricingProfileProvider interface {
	PricingProfile(ctx context.Context, vendorID string) (PricingProfile, error)
}

// ExchangeRateSource returns the current INR to USD rate.
type ExchangeRateSource interface {
	INRToUSD(ctx context.Context) (decimal.Decimal, error)
}

// ProductStore persists confirmed records.
type ProductStore interface {
	// FindBySKU returns the vendor's products whose SKU is in skus.
	FindBySKU(ctx context.Context, vendorID string, skus []string) ([]StoredProduct, error)
	// InsertMany inserts all records or none.
	InsertMany(ctx context.Context, records []ProductRecord) ([]StoredProduct, error)
	// UpdateByID overwrites an existing product with rec.
	UpdateByID(ctx context.Context, id string, rec ProductRecord) error
}
