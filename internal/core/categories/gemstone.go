package categories

import (
	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/shopspring/decimal"
)

func init() {
	registerGemstone()
}

var gemstoneInfo = core.CategoryInfo{
	Type:      core.ProductTypeGemstone,
	Label:     "Gemstone",
	SKUPrefix: "GEM",
}

func registerGemstone() {
	core.Register(core.CategoryDefinition{
		Info: gemstoneInfo,
		Fields: []core.FieldSpec{
			{Field: core.FieldSKU, Label: "SKU", Type: core.FieldText, Example: "GEM-RUBY-07"},
			{Field: core.FieldName, Label: "Product Title", Type: core.FieldText, Example: "Burmese Ruby"},
			{Field: core.FieldGemstoneName, Type: core.FieldText, Required: true, Example: "Ruby"},
			{Field: core.FieldCaratWeight, Type: core.FieldNumeric, Required: true, Example: "1.25"},
			{Field: core.FieldColor, Type: core.FieldText, Example: "Pigeon Blood"},
			{Field: core.FieldClarity, Type: core.FieldText, Example: "VS"},
			{Field: core.FieldCut, Type: core.FieldText, Example: "Oval"},
			{Field: core.FieldPriceINR, Type: core.FieldNumeric, Required: true, Example: "85000"},
			{Field: core.FieldCostPrice, Type: core.FieldNumeric},
			{Field: core.FieldRetailPrice, Type: core.FieldNumeric},
			{Field: core.FieldStockQuantity, Type: core.FieldNumeric, Example: "1"},
			{Field: core.FieldImageURL1, Type: core.FieldURL},
			{Field: core.FieldImageURL2, Type: core.FieldURL},
			{Field: core.FieldImageURL3, Type: core.FieldURL},
		},
		Process:  processGemstone,
		Validate: validateGemstone,
	})
}

func processGemstone(row core.RawRow, vendorID string, index int, images core.ImageSet, pctx core.PricingContext) core.ProductRecord {
	return &core.GemstoneRecord{
		CommonFields: commonFields(row, vendorID, index, images, pctx, gemstoneInfo, "Gemstone", decimal.Zero),
		GemstoneName: row.Lookup(core.FieldGemstoneName).String(),
		CaratWeight:  core.SafeDecimal(row.Lookup(core.FieldCaratWeight)),
		Color:        row.Lookup(core.FieldColor).String(),
		Clarity:      NormalizeGrade(row.Lookup(core.FieldClarity).String()),
		Cut:          row.Lookup(core.FieldCut).String(),
	}
}

func validateGemstone(rec core.ProductRecord) []string {
	r, ok := rec.(*core.GemstoneRecord)
	if !ok {
		return []string{"record is not a gemstone"}
	}

	var msgs []string
	if msg := core.RequireText(core.FieldGemstoneName, r.GemstoneName); msg != "" {
		msgs = append(msgs, msg)
	}
	if msg := core.RequirePositive(core.FieldCaratWeight, r.CaratWeight); msg != "" {
		msgs = append(msgs, msg)
	}
	return msgs
}
