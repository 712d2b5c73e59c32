package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// PricingProfiles reads per-vendor gold and making-charge rates.
type PricingProfiles struct {
	db DBTX
}

// NewPricingProfiles creates a profile provider on db.
func NewPricingProfiles(db DBTX) *PricingProfiles {
	return &PricingProfiles{db: db}
}

var _ core.PricingProfileProvider = (*PricingProfiles)(nil)

// PricingProfile returns the vendor's rates. A vendor without a profile
// gets a zero profile, which the service replaces with defaults.
func (p *PricingProfiles) PricingProfile(ctx context.Context, vendorID string) (core.PricingProfile, error) {
	var gold, making pgtype.Numeric
	err := p.db.QueryRow(ctx,
		`SELECT gold_rate_per_gram, making_charge_per_gram FROM vendor_pricing_profiles WHERE vendor_id = $1`,
		vendorID,
	).Scan(&gold, &making)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.PricingProfile{}, nil
	}
	if err != nil {
		return core.PricingProfile{}, fmt.Errorf("query pricing profile: %w", err)
	}

	var profile core.PricingProfile
	if d, ok := numericToDecimal(gold); ok {
		profile.GoldRatePerGram = d
	}
	if d, ok := numericToDecimal(making); ok {
		profile.MakingChargePerGram = d
	}
	return profile, nil
}

// SetPricingProfile stores the vendor's rates. Non-positive rates are
// stored as NULL so the defaults apply.
func (p *PricingProfiles) SetPricingProfile(ctx context.Context, vendorID string, profile core.PricingProfile) error {
	_, err := p.db.Exec(ctx, `
INSERT INTO vendor_pricing_profiles (vendor_id, gold_rate_per_gram, making_charge_per_gram)
VALUES ($1, $2, $3)
ON CONFLICT (vendor_id) DO UPDATE SET
    gold_rate_per_gram = EXCLUDED.gold_rate_per_gram,
    making_charge_per_gram = EXCLUDED.making_charge_per_gram,
    updated_at = now()`,
		vendorID, positiveOrNull(profile.GoldRatePerGram), positiveOrNull(profile.MakingChargePerGram),
	)
	if err != nil {
		return fmt.Errorf("upsert pricing profile: %w", err)
	}
	return nil
}

func positiveOrNull(d decimal.Decimal) pgtype.Numeric {
	if !d.IsPositive() {
		return pgtype.Numeric{Valid: false}
	}
	return toPgNumeric(d)
}
