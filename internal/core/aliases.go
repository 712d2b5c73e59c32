package core

import "sync"

// CanonicalField is the name of a product field in the catalog schema.
type CanonicalField string

// Common fields
const (
	FieldSKU           CanonicalField = "sku"
	FieldName          CanonicalField = "name"
	FieldCategory      CanonicalField = "category"
	FieldImageURL1     CanonicalField = "image_url1"
	FieldImageURL2     CanonicalField = "image_url2"
	FieldImageURL3     CanonicalField = "image_url3"
	FieldStockQuantity CanonicalField = "stock_quantity"
	FieldPriceINR      CanonicalField = "price_inr"
	FieldCostPrice     CanonicalField = "cost_price"
	FieldRetailPrice   CanonicalField = "retail_price"
)

// Jewellery fields
const (
	FieldGrossWeight       CanonicalField = "gross_weight"
	FieldNetWeight         CanonicalField = "net_weight"
	FieldDiamondWeight1    CanonicalField = "d_wt_1"
	FieldDiamondWeight2    CanonicalField = "d_wt_2"
	FieldDiamondRate1      CanonicalField = "d_rate_1"
	FieldPointerDiamond    CanonicalField = "pointer_diamond"
	FieldPurity            CanonicalField = "purity"
	FieldMakingCharges     CanonicalField = "mkg"
	FieldCertificationCost CanonicalField = "certification_cost"
	FieldGemstoneCost      CanonicalField = "gemstone_cost"
	FieldGemstoneWeight    CanonicalField = "gemstone_weight"
	FieldDiamondColor      CanonicalField = "diamond_color"
	FieldDiamondClarity    CanonicalField = "diamond_clarity"
	FieldDeliveryType      CanonicalField = "delivery_type"
)

// Gemstone and diamond fields
const (
	FieldGemstoneName CanonicalField = "gemstone_name"
	FieldCaratWeight  CanonicalField = "carat_weight"
	FieldColor        CanonicalField = "color"
	FieldClarity      CanonicalField = "clarity"
	FieldCut          CanonicalField = "cut"
	FieldShape        CanonicalField = "shape"
	FieldCarat        CanonicalField = "carat"
	FieldLab          CanonicalField = "lab"
)

// FieldAliases maps each canonical field to the header spellings vendors
// use for it, in preference order. Matching goes through HeaderKey, so
// case, spaces and punctuation do not matter.
//
// The column resolver and the row processors both read this table.
var FieldAliases = map[CanonicalField][]string{
	FieldSKU:           {"SKU", "Style No", "Style Number", "Design No", "Design Number", "Item Code", "Product Code"},
	FieldName:          {"Prodcut", "Prodcut Title", "Product Title", "PRODUCT", "Name", "Product Name", "Title"},
	FieldCategory:      {"Category", "Product Category", "Type"},
	FieldImageURL1:     {"Image URL 1", "Image 1", "Image", "Image URL", "Photo"},
	FieldImageURL2:     {"Image URL 2", "Image 2"},
	FieldImageURL3:     {"Image URL 3", "Image 3"},
	FieldStockQuantity: {"Stock", "Stock Quantity", "Qty", "Quantity", "Inventory"},
	FieldPriceINR:      {"Price", "Price INR", "Price (INR)", "MRP", "Selling Price", "Sale Price"},
	FieldCostPrice:     {"Cost Price", "Cost", "Purchase Price"},
	FieldRetailPrice:   {"Retail Price", "RRP", "List Price"},

	FieldGrossWeight:       {"Gross Weight", "Gross Wt", "G.Wt", "GWT", "Gross Weight (g)", "Weight", "Weight (g)"},
	FieldNetWeight:         {"Net Weight", "Net Wt", "N.Wt", "NWT", "Net Weight (g)", "Gold Weight"},
	FieldDiamondWeight1:    {"D.Wt 1", "D Wt 1", "Diamond Weight", "Diamond Wt", "Dia Wt", "D.Wt"},
	FieldDiamondWeight2:    {"D.Wt 2", "D Wt 2", "Pointer Weight", "Pointer Diamond Weight"},
	FieldDiamondRate1:      {"D.Rate 1", "D Rate 1", "Diamond Rate", "Dia Rate", "D.Rate"},
	FieldPointerDiamond:    {"Pointer Diamond", "Pointer Diamond Rate", "Pointer Rate"},
	FieldPurity:            {"Purity", "Karat", "KT", "Gold Purity", "Metal Purity", "Gold Karat"},
	FieldMakingCharges:     {"Making Charges", "MKG", "Making", "Labour"},
	FieldCertificationCost: {"Certification", "Certification Cost", "Cert Cost", "Certificate"},
	FieldGemstoneCost:      {"Gemstone Cost", "Stone Cost", "Colour Stone Cost", "Color Stone Cost"},
	FieldGemstoneWeight:    {"Gemstone Weight", "Stone Weight", "Stone Wt", "CS Wt"},
	FieldDiamondColor:      {"Diamond Color", "Diamond Colour", "Dia Color", "Color", "Colour"},
	FieldDiamondClarity:    {"Diamond Clarity", "Dia Clarity", "Clarity"},
	FieldDeliveryType:      {"Delivery Type", "Delivery", "Availability"},

	FieldGemstoneName: {"Gemstone Name", "Gemstone", "Stone", "Stone Name", "Gem"},
	FieldCaratWeight:  {"Carat Weight", "Carat", "Carats", "Weight (ct)", "Ct Wt", "Weight"},
	FieldColor:        {"Color", "Colour"},
	FieldClarity:      {"Clarity"},
	FieldCut:          {"Cut", "Cut Grade"},
	FieldShape:        {"Shape", "Diamond Shape"},
	FieldCarat:        {"Carat", "Carats", "Carat Weight", "Weight (ct)", "Ct", "Weight"},
	FieldLab:          {"Lab", "Certificate Lab", "Grading Lab", "Certification"},
}

// Aliases returns the header spellings tried for f: the alias table
// entries in order, then the canonical name itself.
func Aliases(f CanonicalField) []string {
	aliases := FieldAliases[f]
	out := make([]string, 0, len(aliases)+1)
	out = append(out, aliases...)
	return append(out, string(f))
}

var (
	knownHeadersOnce sync.Once
	knownHeaders     map[string]CanonicalField
)

// KnownHeader reports which canonical field a header spelling belongs to,
// if any. Fields sharing a spelling resolve to one of them arbitrarily.
func KnownHeader(header string) (CanonicalField, bool) {
	knownHeadersOnce.Do(func() {
		knownHeaders = make(map[string]CanonicalField)
		for f := range FieldAliases {
			for _, a := range Aliases(f) {
				knownHeaders[HeaderKey(a)] = f
			}
		}
	})
	f, ok := knownHeaders[HeaderKey(header)]
	return f, ok
}
