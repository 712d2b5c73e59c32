package categories

import (
	"strings"

	"github.com/JonMunkholm/catalogimport/internal/core"
)

func init() {
	registerJewellery()
}

var jewelleryInfo = core.CategoryInfo{
	Type:  core.ProductTypeJewellery,
	Label: "Jewellery",
}

func registerJewellery() {
	core.Register(core.CategoryDefinition{
		Info: jewelleryInfo,
		Fields: []core.FieldSpec{
			{Field: core.FieldSKU, Label: "SKU", Type: core.FieldText, Example: "RNG-1042"},
			{Field: core.FieldName, Label: "Product Title", Type: core.FieldText, Example: "Solitaire Ring"},
			{Field: core.FieldCategory, Type: core.FieldText, Example: "Ring"},
			{Field: core.FieldGrossWeight, Type: core.FieldNumeric, Required: true, Example: "10.5", Description: "grams"},
			{Field: core.FieldNetWeight, Type: core.FieldNumeric, Example: "10", Description: "grams; derived from gross weight when empty"},
			{Field: core.FieldPurity, Type: core.FieldText, Required: true, Example: "22K", Description: "24K..9K, 91.6%, 0.916 or 916"},
			{Field: core.FieldDiamondWeight1, Type: core.FieldNumeric, Example: "0.25", Description: "carats"},
			{Field: core.FieldDiamondRate1, Type: core.FieldNumeric, Example: "60000", Description: "per carat"},
			{Field: core.FieldDiamondWeight2, Type: core.FieldNumeric, Example: "0.1", Description: "pointer diamonds, carats"},
			{Field: core.FieldPointerDiamond, Type: core.FieldNumeric, Example: "40000", Description: "pointer diamond rate per carat"},
			{Field: core.FieldDiamondColor, Type: core.FieldText, Example: "G"},
			{Field: core.FieldDiamondClarity, Type: core.FieldText, Example: "VS1"},
			{Field: core.FieldCertificationCost, Type: core.FieldNumeric, Example: "1500"},
			{Field: core.FieldGemstoneCost, Type: core.FieldNumeric, Example: "0"},
			{Field: core.FieldGemstoneWeight, Type: core.FieldNumeric, Example: "0", Description: "carats"},
			{Field: core.FieldDeliveryType, Type: core.FieldEnum, EnumValues: []string{string(core.DeliveryImmediate), string(core.DeliveryScheduled)}, Example: "immediate"},
			{Field: core.FieldStockQuantity, Type: core.FieldNumeric, Example: "1"},
			{Field: core.FieldRetailPrice, Type: core.FieldNumeric},
			{Field: core.FieldImageURL1, Type: core.FieldURL},
			{Field: core.FieldImageURL2, Type: core.FieldURL},
			{Field: core.FieldImageURL3, Type: core.FieldURL},
		},
		Process:  processJewellery,
		Validate: validateJewellery,
	})
}

func processJewellery(row core.RawRow, vendorID string, index int, images core.ImageSet, pctx core.PricingContext) core.ProductRecord {
	gross := core.SafeDecimal(row.Lookup(core.FieldGrossWeight))
	net := core.SafeDecimal(row.Lookup(core.FieldNetWeight))
	dWt1 := core.SafeDecimal(row.Lookup(core.FieldDiamondWeight1))
	dWt2 := core.SafeDecimal(row.Lookup(core.FieldDiamondWeight2))
	dRate1 := core.SafeDecimal(row.Lookup(core.FieldDiamondRate1))
	pointerRate := core.SafeDecimal(row.Lookup(core.FieldPointerDiamond))
	certCost := core.SafeDecimal(row.Lookup(core.FieldCertificationCost))
	gemCost := core.SafeDecimal(row.Lookup(core.FieldGemstoneCost))
	gemWeight := core.SafeDecimal(row.Lookup(core.FieldGemstoneWeight))

	purity := row.Lookup(core.FieldPurity).String()
	fraction := core.NormalizePurity(purity)

	// Making charges come from the vendor profile; sheet MKG columns are ignored
	val := core.CalculateJewelleryPrice(core.PricingInput{
		GrossWeight:         gross,
		NetWeight:           net,
		PurityFraction:      fraction,
		GoldRatePerGram:     pctx.GoldRatePerGram,
		MakingChargePerGram: pctx.MakingChargePerGram,
		Diamonds:            []core.DiamondLine{{Weight: dWt1, Rate: dRate1}},
		PointerDiamond:      core.DiamondLine{Weight: dWt2, Rate: pointerRate},
		CertificationCost:   certCost,
		GemstoneCost:        gemCost,
		GemstoneWeight:      gemWeight,
	})

	common := commonFields(row, vendorID, index, images, pctx, jewelleryInfo, "Product", val.TotalPrice)
	if val.CostPrice.IsPositive() && !common.PriceDefaulted {
		common.CostPrice = val.CostPrice
	}

	color, clarity := stoneGrades(row)

	return &core.JewelleryRecord{
		CommonFields:       common,
		WeightGrams:        gross,
		NetWeight:          val.NetWeight,
		DiamondWeight:      val.TotalDiamondWeight,
		Purity:             purity,
		PurityFractionUsed: fraction,
		DWt1:               dWt1,
		DWt2:               dWt2,
		DRate1:             dRate1,
		PointerDiamond:     pointerRate,
		GoldPerGramPrice:   pctx.GoldRatePerGram,
		GoldValue:          val.GoldValue,
		MakingCharges:      val.MakingCharges,
		DiamondValue:       val.DiamondValue,
		CertificationCost:  certCost,
		GemstoneCost:       gemCost,
		GemstoneWeight:     gemWeight,
		DiamondColor:       color,
		DiamondClarity:     clarity,
		DeliveryType:       deliveryType(row.Lookup(core.FieldDeliveryType).String()),
	}
}

// stoneGrades resolves diamond colour and clarity from named columns,
// falling back to the fixed cells C and D of the same row that some
// vendor templates use without headers.
func stoneGrades(row core.RawRow) (color, clarity string) {
	color = row.Lookup(core.FieldDiamondColor).String()
	clarity = row.Lookup(core.FieldDiamondClarity).String()
	if color == "" {
		color = positionalGrade(row, "C")
	}
	if clarity == "" {
		clarity = positionalGrade(row, "D")
	}
	return NormalizeGrade(color), NormalizeGrade(clarity)
}

// positionalGrade reads a grade from a fixed column. Columns whose header
// names another field, and numeric cells, are not grades.
func positionalGrade(row core.RawRow, column string) string {
	if f, known := core.KnownHeader(row.ColumnHeader(column)); known &&
		f != core.FieldDiamondColor && f != core.FieldDiamondClarity && f != core.FieldColor && f != core.FieldClarity {
		return ""
	}
	v := row.Column(column)
	if v.Kind() != core.CellText {
		return ""
	}
	return v.String()
}

func deliveryType(s string) core.DeliveryType {
	if strings.Contains(strings.ToLower(s), "schedule") {
		return core.DeliveryScheduled
	}
	return core.DeliveryImmediate
}

func validateJewellery(rec core.ProductRecord) []string {
	r, ok := rec.(*core.JewelleryRecord)
	if !ok {
		return []string{"record is not jewellery"}
	}

	var msgs []string
	if msg := core.RequirePositive(core.FieldGrossWeight, r.WeightGrams); msg != "" {
		msgs = append(msgs, msg)
	}
	if msg := core.RequireText(core.FieldPurity, r.Purity); msg != "" {
		msgs = append(msgs, msg)
	} else if msg := core.PurityInRange(r.PurityFractionUsed); msg != "" {
		msgs = append(msgs, msg)
	}
	if msg := core.OneOf(core.FieldDeliveryType, string(r.DeliveryType),
		string(core.DeliveryImmediate), string(core.DeliveryScheduled)); msg != "" {
		msgs = append(msgs, msg)
	}

	msgs = append(msgs, nonNegative(
		fieldValue{core.FieldNetWeight, r.NetWeight},
		fieldValue{core.FieldDiamondWeight1, r.DWt1},
		fieldValue{core.FieldDiamondWeight2, r.DWt2},
		fieldValue{core.FieldDiamondRate1, r.DRate1},
		fieldValue{core.FieldPointerDiamond, r.PointerDiamond},
		fieldValue{core.FieldCertificationCost, r.CertificationCost},
		fieldValue{core.FieldGemstoneCost, r.GemstoneCost},
		fieldValue{core.FieldGemstoneWeight, r.GemstoneWeight},
	)...)

	return msgs
}
