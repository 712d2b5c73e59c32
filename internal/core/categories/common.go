package categories

import (
	"fmt"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/shopspring/decimal"
)

// commonFields reads the fields every category shares. computedPrice is
// the category's own price (zero if it has none); the sheet's price column
// is used when it is not positive, then the placeholder. A blank SKU is
// generated only for categories with a SKU prefix.
func commonFields(row core.RawRow, vendorID string, index int, images core.ImageSet, pctx core.PricingContext, info core.CategoryInfo, fallbackName string, computedPrice decimal.Decimal) core.CommonFields {
	c := core.CommonFields{
		VendorID:      vendorID,
		RowNumber:     row.Line(),
		SKU:           row.Lookup(core.FieldSKU).String(),
		Name:          row.Lookup(core.FieldName).String(),
		Category:      row.Lookup(core.FieldCategory).String(),
		StockQuantity: core.SafeInt(row.Lookup(core.FieldStockQuantity), 1),
	}
	c.SetImages(images)

	if c.SKU == "" && info.SKUPrefix != "" {
		c.SKU = fmt.Sprintf("%s-%d", info.SKUPrefix, index+1)
		c.SKUGenerated = true
	}
	if c.Name == "" {
		c.Name = fmt.Sprintf("%s %d", fallbackName, index+1)
	}

	price := computedPrice
	if !price.IsPositive() {
		price = core.SafeDecimal(row.Lookup(core.FieldPriceINR))
	}
	if !price.IsPositive() {
		price = core.PlaceholderPrice
		c.PriceDefaulted = true
	}
	c.PriceINR = price
	c.PriceUSD = core.ConvertINRToUSD(price, pctx.ExchangeRateINRtoUSD)

	c.CostPrice = firstPositive(core.SafeDecimal(row.Lookup(core.FieldCostPrice)), price)
	c.RetailPrice = firstPositive(core.SafeDecimal(row.Lookup(core.FieldRetailPrice)), price)

	return c
}

func firstPositive(ds ...decimal.Decimal) decimal.Decimal {
	for _, d := range ds {
		if d.IsPositive() {
			return d
		}
	}
	return decimal.Zero
}

type fieldValue struct {
	field core.CanonicalField
	value decimal.Decimal
}

// nonNegative collects violations for optional numeric fields.
func nonNegative(values ...fieldValue) []string {
	var msgs []string
	for _, v := range values {
		if msg := core.NonNegative(v.field, v.value); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
