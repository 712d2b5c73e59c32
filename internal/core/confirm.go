package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// CommitResult reports what a confirm wrote.
type CommitResult struct {
	UpdatedCount  int        `json:"updatedCount"`
	InsertedCount int        `json:"insertedCount"`
	FailedUpdates []RowError `json:"failedUpdates,omitempty"`
}

// Confirm persists previewed records. Records whose SKU already exists for
// the vendor are updated one by one; an update failure is recorded and the
// rest continue. All remaining records are inserted in one InsertMany.
//
// Store unique violations surface as *StoreConflictError. Updates applied
// before a failed insert are not undone, and the partial CommitResult is
// returned alongside the error. Records without a SKU are always inserted,
// so confirming the same records twice duplicates them.
func (s *Service) Confirm(ctx context.Context, productType ProductType, records []ProductRecord, vendorID string) (*CommitResult, error) {
	if vendorID == "" {
		return nil, ErrMissingVendor
	}
	if !productType.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProductType, productType)
	}
	if len(records) == 0 {
		return nil, NewFatalInputError(ErrNoDataRows, "nothing to confirm")
	}

	var skus []string
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.ProductType() != productType {
			return nil, fmt.Errorf("%w: row %d is %s, batch is %s",
				ErrProductTypeMismatch, rec.Common().RowNumber, rec.ProductType(), productType)
		}
		c := rec.Common()
		if c.VendorID != vendorID {
			return nil, fmt.Errorf("%w: row %d", ErrVendorMismatch, c.RowNumber)
		}
		sku := strings.TrimSpace(c.SKU)
		if sku != "" && !seen[sku] {
			seen[sku] = true
			skus = append(skus, sku)
		}
	}

	existing := make(map[string]string) // sku -> product id
	if len(skus) > 0 {
		found, err := s.store.FindBySKU(ctx, vendorID, skus)
		if err != nil {
			return nil, fmt.Errorf("find existing products: %w", err)
		}
		for _, p := range found {
			existing[strings.TrimSpace(p.SKU)] = p.ID
		}
	}

	// Partition into new slices; records themselves are never modified
	toInsert := make([]ProductRecord, 0, len(records))
	type update struct {
		id  string
		rec ProductRecord
	}
	var toUpdate []update
	for _, rec := range records {
		if id, ok := existing[strings.TrimSpace(rec.Common().SKU)]; ok && rec.Common().SKU != "" {
			toUpdate = append(toUpdate, update{id: id, rec: rec})
			continue
		}
		toInsert = append(toInsert, rec)
	}

	res := &CommitResult{}

	for _, u := range toUpdate {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.store.UpdateByID(ctx, u.id, u.rec); err != nil {
			c := u.rec.Common()
			slog.Warn("product update failed",
				"vendor_id", vendorID,
				"product_id", u.id,
				"sku", c.SKU,
				"row", c.RowNumber,
				"error", err,
			)
			res.FailedUpdates = append(res.FailedUpdates, RowError{
				RowNumber:  c.RowNumber,
				Identifier: c.Identifier(),
				Messages:   []string{FormatUserError(err)},
			})
			continue
		}
		res.UpdatedCount++
	}

	if len(toInsert) > 0 {
		inserted, err := s.store.InsertMany(ctx, toInsert)
		if err != nil {
			var conflict *StoreConflictError
			if errors.As(err, &conflict) {
				return res, conflict
			}
			return res, fmt.Errorf("insert products: %w", err)
		}
		res.InsertedCount = len(inserted)
	}

	slog.Info("import confirmed",
		"vendor_id", vendorID,
		"product_type", productType,
		"updated", res.UpdatedCount,
		"inserted", res.InsertedCount,
		"failed_updates", len(res.FailedUpdates),
	)

	return res, nil
}
