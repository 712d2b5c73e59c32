package core

import "github.com/shopspring/decimal"

// CaratToGrams is the mass of one carat in grams.
var CaratToGrams = decimal.RequireFromString("0.2")

// DiamondLine is one diamond parcel in a piece: total carats and rate per
// carat.
type DiamondLine struct {
	Weight decimal.Decimal
	Rate   decimal.Decimal
}

// Cost returns weight × rate.
func (l DiamondLine) Cost() decimal.Decimal {
	return l.Weight.Mul(l.Rate)
}

// PricingInput is everything the jewellery calculator needs for one piece.
type PricingInput struct {
	GrossWeight         decimal.Decimal // grams
	NetWeight           decimal.Decimal // grams; zero means derive from gross
	PurityFraction      float64         // (0, 1]
	GoldRatePerGram     decimal.Decimal
	MakingChargePerGram decimal.Decimal
	Diamonds            []DiamondLine
	PointerDiamond      DiamondLine
	CertificationCost   decimal.Decimal
	GemstoneCost        decimal.Decimal
	GemstoneWeight      decimal.Decimal // carats
}

// Valuation is the calculator's breakdown. No rounding is applied.
type Valuation struct {
	NetWeight          decimal.Decimal
	TotalDiamondWeight decimal.Decimal
	GoldValue          decimal.Decimal
	MakingCharges      decimal.Decimal
	DiamondValue       decimal.Decimal
	TotalPrice         decimal.Decimal
	CostPrice          decimal.Decimal
}

// DeriveNetWeight returns gross minus stone weight (carats converted to
// grams), floored at zero.
func DeriveNetWeight(gross, diamondCarats, gemstoneCarats decimal.Decimal) decimal.Decimal {
	stones := diamondCarats.Add(gemstoneCarats).Mul(CaratToGrams)
	net := gross.Sub(stones)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// CalculateJewelleryPrice prices a piece:
//
//	gold    = net × purity × goldRate
//	making  = net × makingRate
//	diamond = Σ(weight × rate) + pointer weight × pointer rate
//	total   = gold + making + diamond + certification + gemstone
//
// Cost price equals total.
func CalculateJewelleryPrice(in PricingInput) Valuation {
	diamondWeight := in.PointerDiamond.Weight
	diamondValue := in.PointerDiamond.Cost()
	for _, d := range in.Diamonds {
		diamondWeight = diamondWeight.Add(d.Weight)
		diamondValue = diamondValue.Add(d.Cost())
	}

	net := in.NetWeight
	if !net.IsPositive() {
		net = DeriveNetWeight(in.GrossWeight, diamondWeight, in.GemstoneWeight)
	}

	purity := decimal.NewFromFloat(in.PurityFraction)
	gold := net.Mul(purity).Mul(in.GoldRatePerGram)
	making := net.Mul(in.MakingChargePerGram)

	total := gold.
		Add(making).
		Add(diamondValue).
		Add(in.CertificationCost).
		Add(in.GemstoneCost)

	return Valuation{
		NetWeight:          net,
		TotalDiamondWeight: diamondWeight,
		GoldValue:          gold,
		MakingCharges:      making,
		DiamondValue:       diamondValue,
		TotalPrice:         total,
		CostPrice:          total,
	}
}

// ConvertINRToUSD converts a rupee amount with the batch rate. The result
// is null when the rate is unknown.
func ConvertINRToUSD(inr decimal.Decimal, rate decimal.NullDecimal) decimal.NullDecimal {
	if !rate.Valid || !rate.Decimal.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(inr.Mul(rate.Decimal))
}
