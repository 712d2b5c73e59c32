package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrProductNotFound is returned when an update targets a missing row.
var ErrProductNotFound = errors.New("product not found")

const uniqueViolation = "23505"

// Products is the PostgreSQL product catalog.
type Products struct {
	db TxBeginner
}

// NewProducts creates a product store on db (normally a *pgxpool.Pool).
func NewProducts(db TxBeginner) *Products {
	return &Products{db: db}
}

var _ core.ProductStore = (*Products)(nil)

const findBySKUSQL = `
SELECT id, vendor_id, sku, product_type
FROM products
WHERE vendor_id = $1 AND sku = ANY($2)
ORDER BY sku`

// FindBySKU returns the vendor's products whose SKU is in skus, in one
// round trip.
func (p *Products) FindBySKU(ctx context.Context, vendorID string, skus []string) ([]core.StoredProduct, error) {
	if len(skus) == 0 {
		return nil, nil
	}

	rows, err := p.db.Query(ctx, findBySKUSQL, vendorID, skus)
	if err != nil {
		return nil, fmt.Errorf("query products by sku: %w", err)
	}
	defer rows.Close()

	var out []core.StoredProduct
	for rows.Next() {
		var (
			id          pgtype.UUID
			sku         pgtype.Text
			sp          core.StoredProduct
			productType string
		)
		if err := rows.Scan(&id, &sp.VendorID, &sku, &productType); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		sp.ID = pgUUIDToString(id)
		sp.SKU = sku.String
		sp.ProductType = core.ProductType(productType)
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

const insertProductSQL = `
INSERT INTO products (
    id, vendor_id, sku, product_type, name, category,
    image_url1, image_url2, image_url3, stock_quantity,
    price_inr, price_usd, cost_price, retail_price, price_defaulted, attributes
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

// InsertMany inserts records in one transaction: all of them or none. The
// inserts are queued on one pgx.Batch and sent in a single round trip. A
// blank SKU is stored as NULL. A (vendor_id, sku) collision fails the
// whole insert with a *core.StoreConflictError naming the SKU.
func (p *Products) InsertMany(ctx context.Context, records []core.ProductRecord) ([]core.StoredProduct, error) {
	if len(records) == 0 {
		return nil, nil
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	batch := &pgx.Batch{}
	out := make([]core.StoredProduct, 0, len(records))
	for _, rec := range records {
		c := rec.Common()
		id := uuid.New()

		batch.Queue(insertProductSQL, insertArgs(id, rec)...)
		out = append(out, core.StoredProduct{
			ID:          id.String(),
			VendorID:    c.VendorID,
			SKU:         c.SKU,
			ProductType: rec.ProductType(),
		})
	}

	if err := execBatch(tx.SendBatch(ctx, batch), records); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return out, nil
}

// execBatch reads one result per queued record and closes br. The first
// failure stops reading.
func execBatch(br pgx.BatchResults, records []core.ProductRecord) error {
	for _, rec := range records {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			c := rec.Common()
			return conflictOr(err, c.SKU, fmt.Sprintf("insert row %d", c.RowNumber))
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close insert batch: %w", err)
	}
	return nil
}

func insertArgs(id uuid.UUID, rec core.ProductRecord) []any {
	c := rec.Common()
	return []any{
		pgtype.UUID{Bytes: id, Valid: true},
		c.VendorID,
		toPgText(c.SKU),
		string(rec.ProductType()),
		c.Name,
		toPgText(c.Category),
		toPgTextPtr(c.ImageURL1),
		toPgTextPtr(c.ImageURL2),
		toPgTextPtr(c.ImageURL3),
		int32(c.StockQuantity),
		toPgNumeric(c.PriceINR),
		toPgNullNumeric(c.PriceUSD),
		toPgNumeric(c.CostPrice),
		toPgNumeric(c.RetailPrice),
		c.PriceDefaulted,
		rec.Attributes(),
	}
}

const updateProductSQL = `
UPDATE products SET
    product_type = $2, name = $3, category = $4,
    image_url1 = $5, image_url2 = $6, image_url3 = $7, stock_quantity = $8,
    price_inr = $9, price_usd = $10, cost_price = $11, retail_price = $12,
    price_defaulted = $13, attributes = $14, updated_at = now()
WHERE id = $1`

// UpdateByID overwrites an existing product. SKU and vendor are not
// changed.
func (p *Products) UpdateByID(ctx context.Context, id string, rec core.ProductRecord) error {
	pgID := toPgUUID(id)
	if !pgID.Valid {
		return fmt.Errorf("%w: invalid id %q", ErrProductNotFound, id)
	}

	c := rec.Common()
	tag, err := p.db.Exec(ctx, updateProductSQL,
		pgID,
		string(rec.ProductType()),
		c.Name,
		toPgText(c.Category),
		toPgTextPtr(c.ImageURL1),
		toPgTextPtr(c.ImageURL2),
		toPgTextPtr(c.ImageURL3),
		int32(c.StockQuantity),
		toPgNumeric(c.PriceINR),
		toPgNullNumeric(c.PriceUSD),
		toPgNumeric(c.CostPrice),
		toPgNumeric(c.RetailPrice),
		c.PriceDefaulted,
		rec.Attributes(),
	)
	if err != nil {
		return conflictOr(err, c.SKU, "update product "+id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return nil
}

// conflictDetail matches the key part of a unique violation detail:
// Key (vendor_id, sku)=(v1, RNG-1) already exists.
var conflictDetail = regexp.MustCompile(`\(vendor_id, sku\)=\((?:[^,]*), (.*)\) already exists`)

// conflictOr turns a unique violation into *core.StoreConflictError and
// wraps anything else with op.
func conflictOr(err error, sku, op string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return fmt.Errorf("%s: %w", op, err)
	}

	if m := conflictDetail.FindStringSubmatch(pgErr.Detail); m != nil {
		sku = m[1]
	}
	var skus []string
	if sku != "" {
		skus = []string{sku}
	}
	return &core.StoreConflictError{SKUs: skus, Err: err}
}
