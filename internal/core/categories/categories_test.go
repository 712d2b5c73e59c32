package categories

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPricing() core.PricingContext {
	return core.PricingContext{
		VendorID:             "v1",
		GoldRatePerGram:      decimal.NewFromInt(7000),
		MakingChargePerGram:  decimal.NewFromInt(500),
		ExchangeRateINRtoUSD: decimal.NewNullDecimal(decimal.RequireFromString("0.012")),
	}
}

func row(line int, headers []string, values ...core.CellValue) core.RawRow {
	return core.NewRawRow(line, headers, values)
}

func TestRegistry_AllCategoriesRegistered(t *testing.T) {
	for _, pt := range []core.ProductType{core.ProductTypeJewellery, core.ProductTypeGemstone, core.ProductTypeDiamond} {
		def, ok := core.Get(pt)
		require.True(t, ok, "category %s not registered", pt)
		assert.NotEmpty(t, def.RequiredFields())
		for _, f := range def.Fields {
			assert.NotEmpty(t, f.Label, "field %s of %s has no label", f.Field, pt)
		}
	}
}

// ----------------------------------------------------------------------------
// Jewellery
// ----------------------------------------------------------------------------

func TestProcessJewellery_Pricing(t *testing.T) {
	headers := []string{"SKU", "Product Title", "Gross Weight", "Purity", "MKG"}
	r := row(2, headers, core.Text("RNG-1"), core.Text("Band"), core.Number(10), core.Text("22K"), core.Number(99999))

	rec, ok := processJewellery(r, "v1", 0, core.ImagesFromRow(r), testPricing()).(*core.JewelleryRecord)
	require.True(t, ok)

	assert.Equal(t, "64120", rec.GoldValue.String())
	assert.Equal(t, "5000", rec.MakingCharges.String())
	assert.Equal(t, "69120", rec.PriceINR.String())
	assert.Equal(t, 0.916, rec.PurityFractionUsed)
	assert.Equal(t, "10", rec.NetWeight.String())
	assert.False(t, rec.PriceDefaulted)
	require.True(t, rec.PriceUSD.Valid)
	assert.Equal(t, "829.44", rec.PriceUSD.Decimal.String())
	assert.Equal(t, core.DeliveryImmediate, rec.DeliveryType)
}

func TestProcessJewellery_WithDiamonds(t *testing.T) {
	headers := []string{"SKU", "Gross Weight", "Purity", "D.Wt 1", "D.Rate 1", "D.Wt 2", "Pointer Diamond", "Certification Cost"}
	r := row(2, headers,
		core.Text("RNG-2"), core.Number(5.2), core.Text("18K"),
		core.Number(0.5), core.Number(60000), core.Number(0.5), core.Number(40000), core.Number(1500))

	rec := processJewellery(r, "v1", 0, core.ImageSet{}, testPricing()).(*core.JewelleryRecord)

	// 5.2g less 1 carat of stones (0.2g)
	assert.Equal(t, "5", rec.NetWeight.String())
	assert.Equal(t, "1", rec.DiamondWeight.String())
	assert.Equal(t, "50000", rec.DiamondValue.String())
	// gold 5 x 0.75 x 7000 + making 5 x 500 + diamonds + certification
	assert.Equal(t, "80250", rec.PriceINR.String())
}

func TestProcessJewellery_Defaults(t *testing.T) {
	headers := []string{"Gross Weight", "Purity"}
	r := row(5, headers, core.Number(0), core.Empty())

	rec := processJewellery(r, "v1", 3, core.ImageSet{}, testPricing()).(*core.JewelleryRecord)

	assert.Empty(t, rec.SKU, "jewellery SKUs are never generated")
	assert.False(t, rec.SKUGenerated)
	assert.Equal(t, "Product 4", rec.Name)
	assert.Equal(t, 1, rec.StockQuantity)
	assert.True(t, rec.PriceDefaulted)
	assert.True(t, rec.PriceINR.Equal(core.PlaceholderPrice))

	msgs := validateJewellery(rec)
	assert.Contains(t, msgs, "gross_weight must be > 0, got 0")
	assert.Contains(t, msgs, "missing required field purity")
}

func TestStoneGrades(t *testing.T) {
	t.Run("named columns", func(t *testing.T) {
		r := row(2, []string{"SKU", "Diamond Color", "Diamond Clarity"}, core.Text("A"), core.Text("g"), core.Text("vs1"))
		color, clarity := stoneGrades(r)
		assert.Equal(t, "G", color)
		assert.Equal(t, "VS1", clarity)
	})

	t.Run("positional fallback on unlabelled columns", func(t *testing.T) {
		r := row(2, []string{"SKU", "Gross Weight", "", ""}, core.Text("A"), core.Number(4), core.Text("ef"), core.Text("vvs2"))
		color, clarity := stoneGrades(r)
		assert.Equal(t, "EF", color)
		assert.Equal(t, "VVS2", clarity)
	})

	t.Run("no fallback under another field's header", func(t *testing.T) {
		r := row(2, []string{"SKU", "Name", "Purity", "Category"}, core.Text("A"), core.Text("Ring"), core.Text("22K"), core.Text("Rings"))
		color, clarity := stoneGrades(r)
		assert.Empty(t, color)
		assert.Empty(t, clarity)
	})

	t.Run("numeric cells are not grades", func(t *testing.T) {
		r := row(2, []string{"SKU", "Gross Weight", "", ""}, core.Text("A"), core.Number(4), core.Number(3), core.Number(7))
		color, clarity := stoneGrades(r)
		assert.Empty(t, color)
		assert.Empty(t, clarity)
	})
}

func TestDeliveryType(t *testing.T) {
	assert.Equal(t, core.DeliveryScheduled, deliveryType("Scheduled"))
	assert.Equal(t, core.DeliveryScheduled, deliveryType("made to order - schedule"))
	assert.Equal(t, core.DeliveryImmediate, deliveryType("In stock"))
	assert.Equal(t, core.DeliveryImmediate, deliveryType(""))
}

// ----------------------------------------------------------------------------
// Gemstone and diamond
// ----------------------------------------------------------------------------

func TestProcessGemstone(t *testing.T) {
	headers := []string{"SKU", "Gemstone", "Carat Weight", "Clarity", "Price", "Image URL 1"}
	r := row(2, headers, core.Text("GEM-7"), core.Text("Ruby"), core.Number(1.25), core.Text("vs"), core.Text("₹85,000"), core.Text("https://img/1.jpg"))

	rec := processGemstone(r, "v1", 0, core.ImagesFromRow(r), testPricing()).(*core.GemstoneRecord)

	assert.Equal(t, "Ruby", rec.GemstoneName)
	assert.Equal(t, "1.25", rec.CaratWeight.String())
	assert.Equal(t, "VS", rec.Clarity)
	assert.Equal(t, "85000", rec.PriceINR.String())
	assert.Equal(t, "85000", rec.CostPrice.String())
	assert.Equal(t, "Gemstone 1", rec.Name)
	require.NotNil(t, rec.ImageURL1)
	assert.Equal(t, "https://img/1.jpg", *rec.ImageURL1)
	assert.Nil(t, rec.ImageURL2)
	assert.Empty(t, validateGemstone(rec))
}

func TestProcessDiamond(t *testing.T) {
	headers := []string{"Shape", "Carat", "Color", "Clarity", "Lab", "Price"}
	r := row(2, headers, core.Text("rbc"), core.Number(1.5), core.Text("f"), core.Text("vvs2"), core.Text("gia"), core.Number(450000))

	rec := processDiamond(r, "v1", 0, core.ImageSet{}, testPricing()).(*core.DiamondRecord)

	assert.Equal(t, "Round", rec.Shape)
	assert.Equal(t, "F", rec.Color)
	assert.Equal(t, "VVS2", rec.Clarity)
	assert.Equal(t, "GIA", rec.Lab)
	assert.Equal(t, "DIA-1", rec.SKU)
	assert.True(t, rec.SKUGenerated)
	assert.Empty(t, validateDiamond(rec))
}

func TestNormalizeShape(t *testing.T) {
	tests := map[string]string{
		"RD":        "Round",
		" oval ":    "Oval",
		"PS":        "Pear",
		"Trillion":  "Trillion",
		"":          "",
		"Brilliant": "Round",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeShape(in), "NormalizeShape(%q)", in)
	}
}

func TestNormalizeGrade(t *testing.T) {
	assert.Equal(t, "VS1", NormalizeGrade(" vs1 "))
	assert.Equal(t, "Pigeon Blood", NormalizeGrade("Pigeon Blood"))
}

// ----------------------------------------------------------------------------
// Preview through the registry
// ----------------------------------------------------------------------------

func TestPreview_MissingRequiredFieldIsInvalid(t *testing.T) {
	headers := []string{"SKU", "Gemstone", "Carat Weight", "Price"}
	rows := []core.RawRow{
		row(2, headers, core.Text("G-1"), core.Text("Ruby"), core.Number(1), core.Number(1000)),
		row(3, headers, core.Text("G-2"), core.Empty(), core.Number(1), core.Number(1000)),
	}

	res, err := core.Preview(core.ProductTypeGemstone, rows, testPricing())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Summary.ValidRows)
	require.Len(t, res.Invalid, 1)
	assert.Equal(t, 3, res.Invalid[0].RowNumber)
	assert.Contains(t, strings.Join(res.Invalid[0].Messages, "; "), "gemstone_name")
}

func TestPreview_DuplicatesExcluded(t *testing.T) {
	headers := []string{"SKU", "Shape", "Carat", "Price"}
	rows := []core.RawRow{
		row(2, headers, core.Text("D-1"), core.Text("RD"), core.Number(1), core.Number(100)),
		row(3, headers, core.Text("D-2"), core.Text("RD"), core.Number(1), core.Number(100)),
		row(4, headers, core.Text("D-1"), core.Text("OV"), core.Number(2), core.Number(200)),
		row(5, headers),
	}

	res, err := core.Preview(core.ProductTypeDiamond, rows, testPricing())
	require.NoError(t, err)

	require.Len(t, res.Valid, 1)
	assert.Equal(t, "D-2", res.Valid[0].Common().SKU)
	assert.Equal(t, 2, res.Summary.DuplicateRows)
	assert.Equal(t, 1, res.Summary.SkippedEmptyRows)
	assert.Equal(t, 3, res.Summary.TotalRows)
	require.Len(t, res.Invalid, 1)
	assert.Equal(t, []int{2, 4}, res.Invalid[0].RowNumbers)
}

func TestPreview_MissingColumnsWarn(t *testing.T) {
	headers := []string{"SKU", "Shape", "Price"}
	rows := []core.RawRow{row(2, headers, core.Text("D-1"), core.Text("RD"), core.Number(100))}

	res, err := core.Preview(core.ProductTypeDiamond, rows, testPricing())
	require.NoError(t, err)

	assert.Equal(t, []string{"carat"}, fieldNames(res.Columns.Missing))
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "carat")
	assert.Len(t, res.Invalid, 1)
}

func fieldNames(fs []core.CanonicalField) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

func TestPreview_Deterministic(t *testing.T) {
	headers := []string{"SKU", "Product Title", "Gross Weight", "Purity", "D.Wt 1", "D.Rate 1"}
	rows := make([]core.RawRow, 200)
	for i := range rows {
		sku := fmt.Sprintf("RNG-%d", i%150) // some duplicates
		rows[i] = row(i+2, headers,
			core.Text(sku), core.Text("Ring"), core.Number(float64(3+i%7)), core.Text("18K"),
			core.Number(0.1*float64(i%4)), core.Number(55000))
	}

	var first []byte
	for run := 0; run < 5; run++ {
		res, err := core.PreviewWithOptions(core.ProductTypeJewellery, rows, testPricing(), core.PreviewOptions{Workers: run + 1})
		require.NoError(t, err)

		b, err := json.Marshal(res)
		require.NoError(t, err)
		if first == nil {
			first = b
			continue
		}
		assert.Equal(t, string(first), string(b), "run %d differs", run)
	}
}
