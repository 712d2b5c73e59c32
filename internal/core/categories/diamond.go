package categories

import (
	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/shopspring/decimal"
)

func init() {
	registerDiamond()
}

var diamondInfo = core.CategoryInfo{
	Type:      core.ProductTypeDiamond,
	Label:     "Diamond",
	SKUPrefix: "DIA",
}

func registerDiamond() {
	core.Register(core.CategoryDefinition{
		Info: diamondInfo,
		Fields: []core.FieldSpec{
			{Field: core.FieldSKU, Label: "SKU", Type: core.FieldText, Example: "DIA-RD-0150"},
			{Field: core.FieldName, Label: "Product Title", Type: core.FieldText, Example: "1.5ct Round Brilliant"},
			{Field: core.FieldShape, Type: core.FieldText, Required: true, Example: "Round"},
			{Field: core.FieldCarat, Type: core.FieldNumeric, Required: true, Example: "1.5"},
			{Field: core.FieldColor, Type: core.FieldText, Example: "F"},
			{Field: core.FieldClarity, Type: core.FieldText, Example: "VVS2"},
			{Field: core.FieldCut, Type: core.FieldText, Example: "Excellent"},
			{Field: core.FieldLab, Type: core.FieldText, Example: "GIA"},
			{Field: core.FieldPriceINR, Type: core.FieldNumeric, Required: true, Example: "450000"},
			{Field: core.FieldCostPrice, Type: core.FieldNumeric},
			{Field: core.FieldRetailPrice, Type: core.FieldNumeric},
			{Field: core.FieldStockQuantity, Type: core.FieldNumeric, Example: "1"},
			{Field: core.FieldImageURL1, Type: core.FieldURL},
			{Field: core.FieldImageURL2, Type: core.FieldURL},
			{Field: core.FieldImageURL3, Type: core.FieldURL},
		},
		Process:  processDiamond,
		Validate: validateDiamond,
	})
}

func processDiamond(row core.RawRow, vendorID string, index int, images core.ImageSet, pctx core.PricingContext) core.ProductRecord {
	return &core.DiamondRecord{
		CommonFields: commonFields(row, vendorID, index, images, pctx, diamondInfo, "Diamond", decimal.Zero),
		Shape:        NormalizeShape(row.Lookup(core.FieldShape).String()),
		Carat:        core.SafeDecimal(row.Lookup(core.FieldCarat)),
		Clarity:      NormalizeGrade(row.Lookup(core.FieldClarity).String()),
		Color:        NormalizeGrade(row.Lookup(core.FieldColor).String()),
		Cut:          row.Lookup(core.FieldCut).String(),
		Lab:          NormalizeLab(row.Lookup(core.FieldLab).String()),
	}
}

func validateDiamond(rec core.ProductRecord) []string {
	r, ok := rec.(*core.DiamondRecord)
	if !ok {
		return []string{"record is not a diamond"}
	}

	var msgs []string
	if msg := core.RequireText(core.FieldShape, r.Shape); msg != "" {
		msgs = append(msgs, msg)
	}
	if msg := core.RequirePositive(core.FieldCarat, r.Carat); msg != "" {
		msgs = append(msgs, msg)
	}
	return msgs
}
