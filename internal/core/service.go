package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PreviewTimeout is the maximum duration for building a preview.
var PreviewTimeout = 2 * time.Minute

// ConfirmTimeout is the maximum duration for committing a batch.
var ConfirmTimeout = 5 * time.Minute

// DefaultBatchTTL is how long a preview stays confirmable.
const DefaultBatchTTL = 30 * time.Minute

// Rates used when a vendor has not configured their own.
var (
	DefaultGoldRatePerGram     = decimal.NewFromInt(7000)
	DefaultMakingChargePerGram = decimal.NewFromInt(500)
)

// Options configures a Service. Zero values select defaults.
type Options struct {
	Workers             int           // row processing concurrency per preview
	StrictPricing       bool          // reject placeholder prices
	BatchTTL            time.Duration // how long a preview can be confirmed
	MaxConcurrent       int           // concurrent imports across vendors
	MaxWait             time.Duration // how long to wait for an import slot
	DefaultGoldRate     decimal.Decimal
	DefaultMakingCharge decimal.Decimal
}

// Service coordinates import batches: it builds the pricing context,
// previews uploads and commits confirmed batches to the product store.
type Service struct {
	store    ProductStore
	profiles PricingProfileProvider
	rates    ExchangeRateSource
	opts     Options
	limiter  *ImportLimiter
	now      func() time.Time

	mu      sync.RWMutex
	batches map[string]*Batch
}

// NewService creates a new Service. profiles and rates may be nil, in which
// case default rates are used and USD prices stay empty.
func NewService(store ProductStore, profiles PricingProfileProvider, rates ExchangeRateSource, opts Options) *Service {
	if opts.BatchTTL <= 0 {
		opts.BatchTTL = DefaultBatchTTL
	}
	if !opts.DefaultGoldRate.IsPositive() {
		opts.DefaultGoldRate = DefaultGoldRatePerGram
	}
	if !opts.DefaultMakingCharge.IsPositive() {
		opts.DefaultMakingCharge = DefaultMakingChargePerGram
	}

	return &Service{
		store:    store,
		profiles: profiles,
		rates:    rates,
		opts:     opts,
		limiter:  NewImportLimiter(opts.MaxConcurrent, opts.MaxWait),
		now:      time.Now,
		batches:  make(map[string]*Batch),
	}
}

// Categories returns the importable categories.
func (s *Service) Categories() []CategoryInfo {
	defs := All()
	infos := make([]CategoryInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ImportQueueStatus reports import slot usage.
func (s *Service) ImportQueueStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// BuildPricingContext resolves the vendor's rates and the exchange rate
// once for a batch. A failing exchange-rate source is not fatal: USD
// prices are left empty.
func (s *Service) BuildPricingContext(ctx context.Context, vendorID string) (PricingContext, error) {
	pctx := PricingContext{
		VendorID:            vendorID,
		GoldRatePerGram:     s.opts.DefaultGoldRate,
		MakingChargePerGram: s.opts.DefaultMakingCharge,
	}

	if s.profiles != nil {
		profile, err := s.profiles.PricingProfile(ctx, vendorID)
		if err != nil {
			return PricingContext{}, fmt.Errorf("load pricing profile: %w", err)
		}
		if profile.GoldRatePerGram.IsPositive() {
			pctx.GoldRatePerGram = profile.GoldRatePerGram
		}
		if profile.MakingChargePerGram.IsPositive() {
			pctx.MakingChargePerGram = profile.MakingChargePerGram
		}
	}

	if s.rates != nil {
		rate, err := s.rates.INRToUSD(ctx)
		if err != nil {
			slog.Warn("exchange rate unavailable, USD prices left empty",
				"vendor_id", vendorID,
				"error", err,
			)
		} else if rate.IsPositive() {
			pctx.ExchangeRateINRtoUSD = decimal.NewNullDecimal(rate)
		}
	}

	return pctx, nil
}

// BatchRequest is one upload to preview.
type BatchRequest struct {
	VendorID    string
	ProductType ProductType
	FileName    string
	Rows        []RawRow
}

// StartBatch previews an upload and registers it for confirmation.
// Fatal input errors and unknown categories leave no batch behind.
func (s *Service) StartBatch(ctx context.Context, req BatchRequest) (*Batch, error) {
	if req.VendorID == "" {
		return nil, ErrMissingVendor
	}
	if !req.ProductType.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProductType, req.ProductType)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, PreviewTimeout)
	defer cancel()

	start := s.now()
	b := newBatch(uuid.New().String(), req.VendorID, req.ProductType, req.FileName, start, s.opts.BatchTTL)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.transition(StatePreviewing); err != nil {
		return nil, err
	}

	pctx, err := s.BuildPricingContext(ctx, req.VendorID)
	if err != nil {
		b.err = err
		_ = b.transition(StateIdle)
		return nil, err
	}

	result, err := PreviewWithOptions(req.ProductType, req.Rows, pctx, PreviewOptions{
		Workers:       s.opts.Workers,
		StrictPricing: s.opts.StrictPricing,
	})
	if err != nil {
		b.err = err
		_ = b.transition(StateIdle)
		return nil, err
	}

	b.result = result
	if err := b.transition(StatePreviewed); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.batches[b.ID] = b
	s.mu.Unlock()

	slog.Info("import previewed",
		"batch_id", b.ID,
		"vendor_id", b.VendorID,
		"product_type", b.ProductType,
		"file", b.FileName,
		"rows", result.Summary.TotalRows,
		"valid", result.Summary.ValidRows,
		"invalid", result.Summary.InvalidRows,
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)

	return b, nil
}

// GetBatch returns a vendor's batch. Batches of other vendors are reported
// as not found.
func (s *Service) GetBatch(id, vendorID string) (*Batch, error) {
	s.mu.RLock()
	b, ok := s.batches[id]
	s.mu.RUnlock()

	if !ok || b.VendorID != vendorID {
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	}
	return b, nil
}

// ConfirmBatch commits a previewed batch. The batch ends Committed, or
// Failed if the store rejected part of it; the CommitResult is returned
// in both cases.
func (s *Service) ConfirmBatch(ctx context.Context, id, vendorID string) (*CommitResult, error) {
	b, err := s.GetBatch(id, vendorID)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, ConfirmTimeout)
	defer cancel()

	b.mu.Lock()
	if b.state == StatePreviewed && b.Expired(s.now()) {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrBatchExpired, id)
	}
	if err := b.transition(StateCommitting); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	records := b.result.Valid
	b.mu.Unlock()

	res, commitErr := s.Confirm(ctx, b.ProductType, records, vendorID)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.commit = res
	if commitErr != nil {
		b.err = commitErr
		_ = b.transition(StateFailed)
		return res, commitErr
	}
	if err := b.transition(StateCommitted); err != nil {
		return res, err
	}
	return res, nil
}

// CancelBatch discards a previewed batch. Nothing was persisted, so this
// only returns the batch to Idle.
func (s *Service) CancelBatch(id, vendorID string) error {
	b, err := s.GetBatch(id, vendorID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StatePreviewed {
		return fmt.Errorf("%w: cannot cancel %s batch", ErrInvalidTransition, b.state)
	}
	if err := b.transition(StateIdle); err != nil {
		return err
	}
	b.cancelled = true

	slog.Info("import cancelled", "batch_id", b.ID, "vendor_id", b.VendorID)
	return nil
}

// PurgeExpiredBatches drops batches past their TTL, except those being
// committed. Returns the number removed.
func (s *Service) PurgeExpiredBatches() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, b := range s.batches {
		if !b.Expired(now) || b.State() == StateCommitting {
			continue
		}
		delete(s.batches, id)
		removed++
	}
	return removed
}

// BatchCount returns the number of tracked batches.
func (s *Service) BatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.batches)
}
