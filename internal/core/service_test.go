package core_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JonMunkholm/catalogimport/internal/core"
	_ "github.com/JonMunkholm/catalogimport/internal/core/categories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory ProductStore.
type memStore struct {
	mu        sync.Mutex
	products  map[string]core.StoredProduct // id -> product
	updated   []string
	inserted  int
	failIDs   map[string]bool
	conflicts []string
	lookups   [][]string // skus passed to each FindBySKU
}

func newMemStore() *memStore {
	return &memStore{products: make(map[string]core.StoredProduct), failIDs: make(map[string]bool)}
}

func (m *memStore) seed(vendorID, sku string, pt core.ProductType) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("p-%d", len(m.products)+1)
	m.products[id] = core.StoredProduct{ID: id, VendorID: vendorID, SKU: sku, ProductType: pt}
	return id
}

func (m *memStore) FindBySKU(_ context.Context, vendorID string, skus []string) ([]core.StoredProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, append([]string(nil), skus...))
	want := make(map[string]bool, len(skus))
	for _, s := range skus {
		want[s] = true
	}
	var out []core.StoredProduct
	for _, p := range m.products {
		if p.VendorID == vendorID && want[p.SKU] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) InsertMany(_ context.Context, records []core.ProductRecord) ([]core.StoredProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.conflicts) > 0 {
		return nil, &core.StoreConflictError{SKUs: m.conflicts}
	}
	out := make([]core.StoredProduct, 0, len(records))
	for _, rec := range records {
		c := rec.Common()
		id := fmt.Sprintf("p-%d", len(m.products)+1)
		p := core.StoredProduct{ID: id, VendorID: c.VendorID, SKU: c.SKU, ProductType: rec.ProductType()}
		m.products[id] = p
		out = append(out, p)
	}
	m.inserted += len(out)
	return out, nil
}

func (m *memStore) UpdateByID(_ context.Context, id string, _ core.ProductRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failIDs[id] {
		return errors.New("connection reset by peer")
	}
	m.updated = append(m.updated, id)
	return nil
}

type staticProfiles map[string]core.PricingProfile

func (p staticProfiles) PricingProfile(_ context.Context, vendorID string) (core.PricingProfile, error) {
	return p[vendorID], nil
}

// countingRates counts exchange-rate fetches.
type countingRates struct {
	calls atomic.Int64
	rate  decimal.Decimal
	err   error
}

func (r *countingRates) INRToUSD(context.Context) (decimal.Decimal, error) {
	r.calls.Add(1)
	return r.rate, r.err
}

var diamondHeaders = []string{"SKU", "Product Title", "Shape", "Carat", "Color", "Clarity", "Price (INR)"}

func diamondRows(n int) []core.RawRow {
	rows := make([]core.RawRow, n)
	for i := range rows {
		rows[i] = core.NewRawRow(i+2, diamondHeaders, []core.CellValue{
			core.Text(fmt.Sprintf("DIA-%03d", i+1)),
			core.Text(fmt.Sprintf("Diamond %d", i+1)),
			core.Text("rd"),
			core.Number(1.01),
			core.Text("g"),
			core.Text("vs1"),
			core.Number(450000),
		})
	}
	return rows
}

func newTestService(store *memStore, rates *countingRates, opts core.Options) *core.Service {
	profiles := staticProfiles{"v1": {GoldRatePerGram: decimal.NewFromInt(6400), MakingChargePerGram: decimal.NewFromInt(500)}}
	return core.NewService(store, profiles, rates, opts)
}

func TestStartBatch_FetchesExchangeRateOnce(t *testing.T) {
	rates := &countingRates{rate: decimal.RequireFromString("0.012")}
	svc := newTestService(newMemStore(), rates, core.Options{Workers: 8})

	b, err := svc.StartBatch(context.Background(), core.BatchRequest{
		VendorID:    "v1",
		ProductType: core.ProductTypeDiamond,
		FileName:    "diamonds.xlsx",
		Rows:        diamondRows(500),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), rates.calls.Load())
	assert.Equal(t, core.StatePreviewed, b.State())

	res := b.Result()
	require.NotNil(t, res)
	assert.Equal(t, 500, res.Summary.ValidRows)
	assert.Empty(t, res.Invalid)

	first := res.Valid[0].Common()
	require.True(t, first.PriceUSD.Valid)
	assert.Equal(t, "5400", first.PriceUSD.Decimal.String())
}

func TestStartBatch_ExchangeRateFailureLeavesUSDEmpty(t *testing.T) {
	rates := &countingRates{err: errors.New("exchange rate: status 503")}
	svc := newTestService(newMemStore(), rates, core.Options{})

	b, err := svc.StartBatch(context.Background(), core.BatchRequest{
		VendorID:    "v1",
		ProductType: core.ProductTypeDiamond,
		Rows:        diamondRows(3),
	})
	require.NoError(t, err)

	for _, rec := range b.Result().Valid {
		assert.False(t, rec.Common().PriceUSD.Valid)
		assert.True(t, rec.Common().PriceINR.Equal(decimal.NewFromInt(450000)))
	}
}

func TestStartBatch_RejectsBadRequests(t *testing.T) {
	svc := newTestService(newMemStore(), &countingRates{}, core.Options{})
	ctx := context.Background()

	_, err := svc.StartBatch(ctx, core.BatchRequest{ProductType: core.ProductTypeDiamond, Rows: diamondRows(1)})
	assert.ErrorIs(t, err, core.ErrMissingVendor)

	_, err = svc.StartBatch(ctx, core.BatchRequest{VendorID: "v1", ProductType: "watches", Rows: diamondRows(1)})
	assert.ErrorIs(t, err, core.ErrUnknownProductType)

	_, err = svc.StartBatch(ctx, core.BatchRequest{VendorID: "v1", ProductType: core.ProductTypeDiamond})
	assert.ErrorIs(t, err, core.ErrNoDataRows)

	assert.Equal(t, 0, svc.BatchCount())
}

func TestConfirmBatch_UpdatesExistingAndInsertsNew(t *testing.T) {
	store := newMemStore()
	existingID := store.seed("v1", "DIA-001", core.ProductTypeDiamond)
	store.seed("v2", "DIA-002", core.ProductTypeDiamond) // other vendor, same SKU

	svc := newTestService(store, &countingRates{}, core.Options{})
	ctx := context.Background()

	b, err := svc.StartBatch(ctx, core.BatchRequest{VendorID: "v1", ProductType: core.ProductTypeDiamond, Rows: diamondRows(3)})
	require.NoError(t, err)

	res, err := svc.ConfirmBatch(ctx, b.ID, "v1")
	require.NoError(t, err)

	assert.Equal(t, 1, res.UpdatedCount)
	assert.Equal(t, 2, res.InsertedCount)
	assert.Empty(t, res.FailedUpdates)
	assert.Equal(t, []string{existingID}, store.updated)
	assert.Equal(t, core.StateCommitted, b.State())

	_, err = svc.ConfirmBatch(ctx, b.ID, "v1")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
}

func TestConfirmBatch_UpdateFailureIsCollected(t *testing.T) {
	store := newMemStore()
	id := store.seed("v1", "DIA-002", core.ProductTypeDiamond)
	store.failIDs[id] = true

	svc := newTestService(store, &countingRates{}, core.Options{})
	ctx := context.Background()

	b, err := svc.StartBatch(ctx, core.BatchRequest{VendorID: "v1", ProductType: core.ProductTypeDiamond, Rows: diamondRows(3)})
	require.NoError(t, err)

	res, err := svc.ConfirmBatch(ctx, b.ID, "v1")
	require.NoError(t, err)

	assert.Equal(t, 0, res.UpdatedCount)
	assert.Equal(t, 2, res.InsertedCount)
	require.Len(t, res.FailedUpdates, 1)
	assert.Equal(t, 3, res.FailedUpdates[0].RowNumber)
	assert.Contains(t, res.FailedUpdates[0].Messages[0], "DB003")
}

func TestConfirmBatch_ConflictFailsBatch(t *testing.T) {
	store := newMemStore()
	store.conflicts = []string{"DIA-002"}

	svc := newTestService(store, &countingRates{}, core.Options{})
	ctx := context.Background()

	b, err := svc.StartBatch(ctx, core.BatchRequest{VendorID: "v1", ProductType: core.ProductTypeDiamond, Rows: diamondRows(2)})
	require.NoError(t, err)

	res, err := svc.ConfirmBatch(ctx, b.ID, "v1")
	var conflict *core.StoreConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"DIA-002"}, conflict.SKUs)
	assert.Equal(t, "duplicate SKU already exists in catalog: DIA-002", conflict.Error())
	require.NotNil(t, res)
	assert.Equal(t, 0, res.InsertedCount)

	assert.Equal(t, core.StateFailed, b.State())
	assert.Contains(t, b.Snapshot().Error, "CAT001")
}

func TestConfirmBatch_VendorScoping(t *testing.T) {
	svc := newTestService(newMemStore(), &countingRates{}, core.Options{})
	ctx := context.Background()

	b, err := svc.StartBatch(ctx, core.BatchRequest{VendorID: "v1", ProductType: core.ProductTypeDiamond, Rows: diamondRows(1)})
	require.NoError(t, err)

	_, err = svc.GetBatch(b.ID, "v2")
	assert.ErrorIs(t, err, core.ErrBatchNotFound)

	_, err = svc.ConfirmBatch(ctx, b.ID, "v2")
	assert.ErrorIs(t, err, core.ErrBatchNotFound)

	assert.ErrorIs(t, svc.CancelBatch(b.ID, "v2"), core.ErrBatchNotFound)
	assert.Equal(t, core.StatePreviewed, b.State())
}

func TestCancelBatch(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &countingRates{}, core.Options{})
	ctx := context.Background()

	b, err := svc.StartBatch(ctx, core.BatchRequest{VendorID: "v1", ProductType: core.ProductTypeDiamond, Rows: diamondRows(2)})
	require.NoError(t, err)

	require.NoError(t, svc.CancelBatch(b.ID, "v1"))
	assert.Equal(t, core.StateIdle, b.State())
	assert.True(t, b.Snapshot().Cancelled)

	_, err = svc.ConfirmBatch(ctx, b.ID, "v1")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
	assert.Equal(t, 0, store.inserted)

	assert.ErrorIs(t, svc.CancelBatch(b.ID, "v1"), core.ErrInvalidTransition)
}

func TestConfirmBatch_Expired(t *testing.T) {
	svc := newTestService(newMemStore(), &countingRates{}, core.Options{BatchTTL: time.Millisecond})
	ctx := context.Background()

	b, err := svc.StartBatch(ctx, core.BatchRequest{VendorID: "v1", ProductType: core.ProductTypeDiamond, Rows: diamondRows(1)})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = svc.ConfirmBatch(ctx, b.ID, "v1")
	assert.ErrorIs(t, err, core.ErrBatchExpired)
	assert.Equal(t, core.StatePreviewed, b.State())

	assert.Equal(t, 1, svc.PurgeExpiredBatches())
	assert.Equal(t, 0, svc.BatchCount())
}

func TestConfirm_RejectsForeignRecords(t *testing.T) {
	svc := newTestService(newMemStore(), &countingRates{}, core.Options{})
	ctx := context.Background()

	b, err := svc.StartBatch(ctx, core.BatchRequest{VendorID: "v1", ProductType: core.ProductTypeDiamond, Rows: diamondRows(1)})
	require.NoError(t, err)
	records := b.Result().Valid

	_, err = svc.Confirm(ctx, core.ProductTypeGemstone, records, "v1")
	assert.ErrorIs(t, err, core.ErrProductTypeMismatch)

	_, err = svc.Confirm(ctx, core.ProductTypeDiamond, records, "v2")
	assert.ErrorIs(t, err, core.ErrVendorMismatch)

	_, err = svc.Confirm(ctx, core.ProductTypeDiamond, records, "")
	assert.ErrorIs(t, err, core.ErrMissingVendor)
}

func TestStartBatch_UsesVendorProfile(t *testing.T) {
	svc := newTestService(newMemStore(), &countingRates{}, core.Options{})

	headers := []string{"SKU", "Gross Weight", "Purity"}
	rows := []core.RawRow{
		core.NewRawRow(2, headers, []core.CellValue{core.Text("RNG-1"), core.Number(10), core.Text("100%")}),
	}

	b, err := svc.StartBatch(context.Background(), core.BatchRequest{VendorID: "v1", ProductType: core.ProductTypeJewellery, Rows: rows})
	require.NoError(t, err)
	require.Len(t, b.Result().Valid, 1)

	rec, ok := b.Result().Valid[0].(*core.JewelleryRecord)
	require.True(t, ok)
	// 10g x 6400 gold + 10g x 500 making
	assert.Equal(t, "69000", rec.PriceINR.String())
	assert.True(t, strings.EqualFold(rec.Name, "Product 1"))
}

func TestConfirm_BlankSKUAlwaysInserts(t *testing.T) {
	store := newMemStore()
	store.seed("v1", "", core.ProductTypeJewellery)
	svc := newTestService(store, &countingRates{}, core.Options{})

	records := []core.ProductRecord{
		&core.JewelleryRecord{CommonFields: core.CommonFields{VendorID: "v1", RowNumber: 2, Name: "Ring A"}},
	}

	res, err := svc.Confirm(context.Background(), core.ProductTypeJewellery, records, "v1")
	require.NoError(t, err)

	assert.Equal(t, 1, res.InsertedCount)
	assert.Equal(t, 0, res.UpdatedCount)
	assert.Empty(t, store.updated)
	for _, skus := range store.lookups {
		assert.NotContains(t, skus, "")
	}
}

func TestConfirmBatch_JewelleryWithoutSKUInsertsEveryUpload(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &countingRates{}, core.Options{})
	ctx := context.Background()

	headers := []string{"Product Title", "Gross Weight", "Purity"}
	uploads := [][]core.CellValue{
		{core.Text("Ring A"), core.Number(10), core.Text("22K")},
		{core.Text("Necklace B"), core.Number(20), core.Text("18K")},
	}

	for _, values := range uploads {
		rows := []core.RawRow{core.NewRawRow(2, headers, values)}
		b, err := svc.StartBatch(ctx, core.BatchRequest{VendorID: "v1", ProductType: core.ProductTypeJewellery, Rows: rows})
		require.NoError(t, err)
		require.Len(t, b.Result().Valid, 1)
		assert.Empty(t, b.Result().Valid[0].Common().SKU)

		res, err := svc.ConfirmBatch(ctx, b.ID, "v1")
		require.NoError(t, err)
		assert.Equal(t, 1, res.InsertedCount)
		assert.Equal(t, 0, res.UpdatedCount)
	}

	assert.Equal(t, 2, store.inserted)
	assert.Empty(t, store.updated)
}
