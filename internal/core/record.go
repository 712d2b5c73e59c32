package core

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductRecord is a canonical, category-tagged product built from one row.
// The set of implementations is closed: *JewelleryRecord, *GemstoneRecord
// and *DiamondRecord.
type ProductRecord interface {
	ProductType() ProductType
	Common() CommonFields
	// Attributes returns the category-specific fields keyed by canonical name.
	Attributes() map[string]any
	isProductRecord()
}

// ImageSet holds up to three product image URLs in display order.
type ImageSet [3]string

// ImagesFromRow reads image_url1..3 through the alias table.
func ImagesFromRow(row RawRow) ImageSet {
	return ImageSet{
		row.Lookup(FieldImageURL1).String(),
		row.Lookup(FieldImageURL2).String(),
		row.Lookup(FieldImageURL3).String(),
	}
}

// CommonFields are shared by every category.
type CommonFields struct {
	VendorID       string              `json:"vendor_id"`
	RowNumber      int                 `json:"row_number"`
	SKU            string              `json:"sku"`
	Name           string              `json:"name"`
	Category       string              `json:"category,omitempty"`
	ImageURL1      *string             `json:"image_url1"`
	ImageURL2      *string             `json:"image_url2"`
	ImageURL3      *string             `json:"image_url3"`
	StockQuantity  int                 `json:"stock_quantity"`
	PriceINR       decimal.Decimal     `json:"price_inr"`
	PriceUSD       decimal.NullDecimal `json:"price_usd"`
	CostPrice      decimal.Decimal     `json:"cost_price"`
	RetailPrice    decimal.Decimal     `json:"retail_price"`
	PriceDefaulted bool                `json:"price_defaulted,omitempty"`
	SKUGenerated   bool                `json:"sku_generated,omitempty"`
}

// SetImages stores non-empty URLs, leaving missing ones nil.
func (c *CommonFields) SetImages(images ImageSet) {
	ptrs := [3]**string{&c.ImageURL1, &c.ImageURL2, &c.ImageURL3}
	for i, url := range images {
		if url == "" {
			*ptrs[i] = nil
			continue
		}
		u := url
		*ptrs[i] = &u
	}
}

// Identifier names the record in error messages: name, else SKU, else row.
func (c CommonFields) Identifier() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.SKU != "":
		return c.SKU
	default:
		return fmt.Sprintf("Row %d", c.RowNumber)
	}
}

// DeliveryType is how soon a jewellery piece ships.
type DeliveryType string

const (
	DeliveryImmediate DeliveryType = "immediate"
	DeliveryScheduled DeliveryType = "scheduled"
)

// Valid reports whether d is a known delivery type.
func (d DeliveryType) Valid() bool {
	return d == DeliveryImmediate || d == DeliveryScheduled
}

// JewelleryRecord is a priced jewellery piece.
type JewelleryRecord struct {
	CommonFields

	WeightGrams        decimal.Decimal `json:"weight_grams"`
	NetWeight          decimal.Decimal `json:"net_weight"`
	DiamondWeight      decimal.Decimal `json:"diamond_weight"`
	Purity             string          `json:"purity"`
	PurityFractionUsed float64         `json:"purity_fraction_used"`
	DWt1               decimal.Decimal `json:"d_wt_1"`
	DWt2               decimal.Decimal `json:"d_wt_2"`
	DRate1             decimal.Decimal `json:"d_rate_1"`
	PointerDiamond     decimal.Decimal `json:"pointer_diamond"`
	GoldPerGramPrice   decimal.Decimal `json:"gold_per_gram_price"`
	GoldValue          decimal.Decimal `json:"gold_value"`
	MakingCharges      decimal.Decimal `json:"mkg"`
	DiamondValue       decimal.Decimal `json:"diamond_value"`
	CertificationCost  decimal.Decimal `json:"certification_cost"`
	GemstoneCost       decimal.Decimal `json:"gemstone_cost"`
	GemstoneWeight     decimal.Decimal `json:"gemstone_weight"`
	DiamondColor       string          `json:"diamond_color,omitempty"`
	DiamondClarity     string          `json:"diamond_clarity,omitempty"`
	DeliveryType       DeliveryType    `json:"delivery_type"`
}

func (r *JewelleryRecord) ProductType() ProductType { return ProductTypeJewellery }
func (r *JewelleryRecord) Common() CommonFields     { return r.CommonFields }
func (r *JewelleryRecord) isProductRecord()         {}

func (r *JewelleryRecord) Attributes() map[string]any {
	return map[string]any{
		"weight_grams":         r.WeightGrams,
		"net_weight":           r.NetWeight,
		"diamond_weight":       r.DiamondWeight,
		"purity":               r.Purity,
		"purity_fraction_used": r.PurityFractionUsed,
		"d_wt_1":               r.DWt1,
		"d_wt_2":               r.DWt2,
		"d_rate_1":             r.DRate1,
		"pointer_diamond":      r.PointerDiamond,
		"gold_per_gram_price":  r.GoldPerGramPrice,
		"gold_value":           r.GoldValue,
		"mkg":                  r.MakingCharges,
		"diamond_value":        r.DiamondValue,
		"certification_cost":   r.CertificationCost,
		"gemstone_cost":        r.GemstoneCost,
		"gemstone_weight":      r.GemstoneWeight,
		"diamond_color":        r.DiamondColor,
		"diamond_clarity":      r.DiamondClarity,
		"delivery_type":        r.DeliveryType,
	}
}

func (r *JewelleryRecord) MarshalJSON() ([]byte, error) {
	type plain JewelleryRecord
	return json.Marshal(struct {
		ProductType ProductType `json:"product_type"`
		*plain
	}{ProductTypeJewellery, (*plain)(r)})
}

// GemstoneRecord is a loose coloured gemstone.
type GemstoneRecord struct {
	CommonFields

	GemstoneName string          `json:"gemstone_name"`
	CaratWeight  decimal.Decimal `json:"carat_weight"`
	Color        string          `json:"color,omitempty"`
	Clarity      string          `json:"clarity,omitempty"`
	Cut          string          `json:"cut,omitempty"`
}

func (r *GemstoneRecord) ProductType() ProductType { return ProductTypeGemstone }
func (r *GemstoneRecord) Common() CommonFields     { return r.CommonFields }
func (r *GemstoneRecord) isProductRecord()         {}

func (r *GemstoneRecord) Attributes() map[string]any {
	return map[string]any{
		"gemstone_name": r.GemstoneName,
		"carat_weight":  r.CaratWeight,
		"color":         r.Color,
		"clarity":       r.Clarity,
		"cut":           r.Cut,
	}
}

func (r *GemstoneRecord) MarshalJSON() ([]byte, error) {
	type plain GemstoneRecord
	return json.Marshal(struct {
		ProductType ProductType `json:"product_type"`
		*plain
	}{ProductTypeGemstone, (*plain)(r)})
}

// DiamondRecord is a loose diamond.
type DiamondRecord struct {
	CommonFields

	Shape   string          `json:"shape"`
	Carat   decimal.Decimal `json:"carat"`
	Clarity string          `json:"clarity,omitempty"`
	Color   string          `json:"color,omitempty"`
	Cut     string          `json:"cut,omitempty"`
	Lab     string          `json:"lab,omitempty"`
}

func (r *DiamondRecord) ProductType() ProductType { return ProductTypeDiamond }
func (r *DiamondRecord) Common() CommonFields     { return r.CommonFields }
func (r *DiamondRecord) isProductRecord()         {}

func (r *DiamondRecord) Attributes() map[string]any {
	return map[string]any{
		"shape":   r.Shape,
		"carat":   r.Carat,
		"clarity": r.Clarity,
		"color":   r.Color,
		"cut":     r.Cut,
		"lab":     r.Lab,
	}
}

func (r *DiamondRecord) MarshalJSON() ([]byte, error) {
	type plain DiamondRecord
	return json.Marshal(struct {
		ProductType ProductType `json:"product_type"`
		*plain
	}{ProductTypeDiamond, (*plain)(r)})
}
