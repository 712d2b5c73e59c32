// Package fxrate provides the INR to USD exchange rate used to fill USD
// prices. Sources chain: an HTTP provider, an optional Redis layer shared by
// replicas, and an in-process cache in front.
package fxrate

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrRateUnavailable is returned when no rate can be obtained.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// Source returns the number of US dollars per rupee.
type Source interface {
	INRToUSD(ctx context.Context) (decimal.Decimal, error)
}

// Fixed is a Source that always returns the same rate.
type Fixed decimal.Decimal

func (f Fixed) INRToUSD(context.Context) (decimal.Decimal, error) {
	d := decimal.Decimal(f)
	if !d.IsPositive() {
		return decimal.Zero, ErrRateUnavailable
	}
	return d, nil
}
