package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func TestNumericRoundTrip(t *testing.T) {
	tests := []string{"0", "0.01", "69120", "829.44", "-12.5", "123456789.123456789"}
	for _, s := range tests {
		d := decimal.RequireFromString(s)
		got, ok := numericToDecimal(toPgNumeric(d))
		if !ok {
			t.Errorf("numericToDecimal(%s) not ok", s)
			continue
		}
		if !got.Equal(d) {
			t.Errorf("round trip %s = %s", s, got)
		}
	}

	if _, ok := numericToDecimal(pgtype.Numeric{}); ok {
		t.Error("NULL numeric should not be ok")
	}
	if _, ok := numericToDecimal(pgtype.Numeric{NaN: true, Valid: true}); ok {
		t.Error("NaN numeric should not be ok")
	}
	if toPgNullNumeric(decimal.NullDecimal{}).Valid {
		t.Error("null decimal should map to NULL")
	}
}

func TestPgTextAndUUID(t *testing.T) {
	if toPgText("  ").Valid {
		t.Error("blank text should be NULL")
	}
	if got := toPgText(" Rings "); !got.Valid || got.String != "Rings" {
		t.Errorf("toPgText = %+v", got)
	}
	if toPgTextPtr(nil).Valid {
		t.Error("nil pointer should be NULL")
	}

	if toPgUUID("not-a-uuid").Valid {
		t.Error("invalid uuid should be NULL")
	}
	id := "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	if got := pgUUIDToString(toPgUUID(id)); got != id {
		t.Errorf("uuid round trip = %q", got)
	}
}

func TestConflictOr(t *testing.T) {
	t.Run("unique violation with detail", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:   "23505",
			Detail: "Key (vendor_id, sku)=(v1, RNG-1042) already exists.",
		}
		err := conflictOr(fmt.Errorf("exec: %w", pgErr), "fallback", "insert row 2")

		var conflict *core.StoreConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected StoreConflictError, got %v", err)
		}
		if len(conflict.SKUs) != 1 || conflict.SKUs[0] != "RNG-1042" {
			t.Errorf("SKUs = %v, want [RNG-1042]", conflict.SKUs)
		}
		if got := core.MapError(err).Code; got != "CAT001" {
			t.Errorf("code = %s, want CAT001", got)
		}
	})

	t.Run("unique violation without detail", func(t *testing.T) {
		err := conflictOr(&pgconn.PgError{Code: "23505"}, "RNG-7", "insert row 2")
		var conflict *core.StoreConflictError
		if !errors.As(err, &conflict) || conflict.SKUs[0] != "RNG-7" {
			t.Errorf("expected conflict on RNG-7, got %v", err)
		}
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		base := &pgconn.PgError{Code: "23502", Message: "null value"}
		err := conflictOr(base, "RNG-7", "insert row 2")
		var conflict *core.StoreConflictError
		if errors.As(err, &conflict) {
			t.Error("not-null violation reported as conflict")
		}
		if !errors.Is(err, base) {
			t.Error("original error lost")
		}
	})
}

// fakeBatchResults fails the Exec at failAt (-1 never fails).
type fakeBatchResults struct {
	failAt int
	err    error
	execs  int
	closed bool
}

func (f *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	defer func() { f.execs++ }()
	if f.execs == f.failAt {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("not used") }
func (f *fakeBatchResults) QueryRow() pgx.Row        { return nil }

func (f *fakeBatchResults) Close() error {
	f.closed = true
	return nil
}

func TestExecBatch(t *testing.T) {
	records := []core.ProductRecord{diamond("v1", "D-1", 2), diamond("v1", "D-2", 3), diamond("v1", "D-3", 4)}

	t.Run("all succeed", func(t *testing.T) {
		br := &fakeBatchResults{failAt: -1}
		if err := execBatch(br, records); err != nil {
			t.Fatalf("execBatch: %v", err)
		}
		if br.execs != 3 || !br.closed {
			t.Errorf("execs = %d closed = %v, want 3 true", br.execs, br.closed)
		}
	})

	t.Run("unique violation names the row's SKU", func(t *testing.T) {
		br := &fakeBatchResults{failAt: 1, err: &pgconn.PgError{Code: "23505"}}
		err := execBatch(br, records)

		var conflict *core.StoreConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected StoreConflictError, got %v", err)
		}
		if len(conflict.SKUs) != 1 || conflict.SKUs[0] != "D-2" {
			t.Errorf("SKUs = %v, want [D-2]", conflict.SKUs)
		}
		if br.execs != 2 || !br.closed {
			t.Errorf("execs = %d closed = %v, want 2 true", br.execs, br.closed)
		}
	})

	t.Run("other errors name the row", func(t *testing.T) {
		br := &fakeBatchResults{failAt: 0, err: errors.New("conn reset")}
		err := execBatch(br, records)
		if err == nil || !strings.Contains(err.Error(), "insert row 2") {
			t.Errorf("err = %v, want insert row 2", err)
		}
	})
}

func TestInsertArgs_BlankSKUIsNull(t *testing.T) {
	args := insertArgs(uuid.New(), diamond("v1", "  ", 2))
	sku, ok := args[2].(pgtype.Text)
	if !ok || sku.Valid {
		t.Errorf("sku arg = %#v, want NULL text", args[2])
	}
}

// ----------------------------------------------------------------------------
// Database tests (require TEST_DATABASE_URL)
// ----------------------------------------------------------------------------

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return pool
}

func testVendor(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	vendor := fmt.Sprintf("test-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM products WHERE vendor_id = $1`, vendor)
		_, _ = pool.Exec(ctx, `DELETE FROM vendor_pricing_profiles WHERE vendor_id = $1`, vendor)
	})
	return vendor
}

func diamond(vendor, sku string, row int) *core.DiamondRecord {
	return &core.DiamondRecord{
		CommonFields: core.CommonFields{
			VendorID:      vendor,
			RowNumber:     row,
			SKU:           sku,
			Name:          "Round " + sku,
			StockQuantity: 1,
			PriceINR:      decimal.NewFromInt(450000),
			PriceUSD:      decimal.NewNullDecimal(decimal.RequireFromString("5400")),
			CostPrice:     decimal.NewFromInt(450000),
			RetailPrice:   decimal.NewFromInt(450000),
		},
		Shape: "Round",
		Carat: decimal.RequireFromString("1.01"),
	}
}

func TestProducts_InsertFindUpdate(t *testing.T) {
	pool := testPool(t)
	vendor := testVendor(t, pool)
	ctx := context.Background()
	products := NewProducts(pool)

	inserted, err := products.InsertMany(ctx, []core.ProductRecord{
		diamond(vendor, "D-1", 2),
		diamond(vendor, "D-2", 3),
	})
	if err != nil {
		t.Fatalf("InsertMany: %v", err)
	}
	if len(inserted) != 2 {
		t.Fatalf("inserted %d, want 2", len(inserted))
	}

	found, err := products.FindBySKU(ctx, vendor, []string{"D-1", "D-9"})
	if err != nil {
		t.Fatalf("FindBySKU: %v", err)
	}
	if len(found) != 1 || found[0].SKU != "D-1" || found[0].ProductType != core.ProductTypeDiamond {
		t.Fatalf("FindBySKU = %+v", found)
	}

	found2, err := products.FindBySKU(ctx, "someone-else", []string{"D-1"})
	if err != nil || len(found2) != 0 {
		t.Errorf("FindBySKU crossed vendors: %+v, %v", found2, err)
	}

	updated := diamond(vendor, "D-1", 2)
	updated.PriceINR = decimal.NewFromInt(475000)
	if err := products.UpdateByID(ctx, found[0].ID, updated); err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}

	var price pgtype.Numeric
	if err := pool.QueryRow(ctx, `SELECT price_inr FROM products WHERE id = $1`, toPgUUID(found[0].ID)).Scan(&price); err != nil {
		t.Fatalf("select price: %v", err)
	}
	if got, _ := numericToDecimal(price); !got.Equal(decimal.NewFromInt(475000)) {
		t.Errorf("price after update = %s", got)
	}

	err = products.UpdateByID(ctx, "1b4e28ba-2fa1-11d2-883f-0016d3cca427", updated)
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("update of missing id = %v, want ErrProductNotFound", err)
	}
}

func TestProducts_InsertConflictIsAtomic(t *testing.T) {
	pool := testPool(t)
	vendor := testVendor(t, pool)
	ctx := context.Background()
	products := NewProducts(pool)

	if _, err := products.InsertMany(ctx, []core.ProductRecord{diamond(vendor, "D-1", 2)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := products.InsertMany(ctx, []core.ProductRecord{
		diamond(vendor, "D-2", 2),
		diamond(vendor, "D-1", 3),
	})
	var conflict *core.StoreConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StoreConflictError, got %v", err)
	}
	if len(conflict.SKUs) != 1 || conflict.SKUs[0] != "D-1" {
		t.Errorf("SKUs = %v", conflict.SKUs)
	}

	found, err := products.FindBySKU(ctx, vendor, []string{"D-2"})
	if err != nil {
		t.Fatalf("FindBySKU: %v", err)
	}
	if len(found) != 0 {
		t.Error("D-2 was inserted despite the conflict")
	}
}

func TestProducts_BlankSKUsInsertAsNull(t *testing.T) {
	pool := testPool(t)
	vendor := testVendor(t, pool)
	ctx := context.Background()
	products := NewProducts(pool)

	for i := 0; i < 2; i++ {
		if _, err := products.InsertMany(ctx, []core.ProductRecord{diamond(vendor, "", 2)}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	var n int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE vendor_id = $1 AND sku IS NULL`, vendor).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("NULL-SKU products = %d, want 2", n)
	}
}

func TestPricingProfiles(t *testing.T) {
	pool := testPool(t)
	vendor := testVendor(t, pool)
	ctx := context.Background()
	profiles := NewPricingProfiles(pool)

	got, err := profiles.PricingProfile(ctx, vendor)
	if err != nil {
		t.Fatalf("PricingProfile: %v", err)
	}
	if !got.GoldRatePerGram.IsZero() || !got.MakingChargePerGram.IsZero() {
		t.Errorf("missing profile = %+v, want zero", got)
	}

	err = profiles.SetPricingProfile(ctx, vendor, core.PricingProfile{GoldRatePerGram: decimal.NewFromInt(6850)})
	if err != nil {
		t.Fatalf("SetPricingProfile: %v", err)
	}

	got, err = profiles.PricingProfile(ctx, vendor)
	if err != nil {
		t.Fatalf("PricingProfile: %v", err)
	}
	if !got.GoldRatePerGram.Equal(decimal.NewFromInt(6850)) {
		t.Errorf("gold rate = %s, want 6850", got.GoldRatePerGram)
	}
	if !got.MakingChargePerGram.IsZero() {
		t.Errorf("making charge = %s, want zero", got.MakingChargePerGram)
	}
}
