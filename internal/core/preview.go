package core

import (
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// PreviewSummary contains the summary counts for an import preview.
type PreviewSummary struct {
	TotalRows        int `json:"totalRows"`
	ValidRows        int `json:"validRows"`
	InvalidRows      int `json:"invalidRows"`
	DuplicateRows    int `json:"duplicateRows"`
	SkippedEmptyRows int `json:"skippedEmptyRows"`
	DefaultedPrices  int `json:"defaultedPrices"`
}

// ImportBatchResult is the preview of one upload: the records that would
// be saved and the rows that would not.
type ImportBatchResult struct {
	ProductType ProductType     `json:"productType"`
	Valid       []ProductRecord `json:"valid"`
	Invalid     []RowError      `json:"invalid"`
	Columns     ColumnReport    `json:"columns"`
	Warnings    []string        `json:"warnings,omitempty"`
	Summary     PreviewSummary  `json:"summary"`
}

// PreviewOptions tunes Preview.
type PreviewOptions struct {
	// Workers bounds concurrent row processing. Zero means GOMAXPROCS.
	Workers       int
	StrictPricing bool
}

// rowOutcome is the per-row result, written by index.
type rowOutcome struct {
	record ProductRecord
	errs   []string
	empty  bool
}

// Preview processes, validates and de-duplicates rows without touching any
// store. The same input always yields the same result.
func Preview(productType ProductType, rows []RawRow, pctx PricingContext) (*ImportBatchResult, error) {
	return PreviewWithOptions(productType, rows, pctx, PreviewOptions{})
}

// PreviewWithOptions is Preview with explicit options.
func PreviewWithOptions(productType ProductType, rows []RawRow, pctx PricingContext, opts PreviewOptions) (*ImportBatchResult, error) {
	def, ok := Get(productType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProductType, productType)
	}

	first := -1
	for i, row := range rows {
		if !row.IsEmpty() {
			first = i
			break
		}
	}
	if first < 0 {
		return nil, NewFatalInputError(ErrNoDataRows, "")
	}

	result := &ImportBatchResult{
		ProductType: productType,
		Valid:       make([]ProductRecord, 0, len(rows)),
		Invalid:     []RowError{},
		Columns:     ResolveColumns(def, rows[first].Headers(), rows[first]),
	}
	if err := ValidateHeaders(result.Columns); err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}

	outcomes := processRows(def, rows, pctx, opts)

	valid := make([]ProductRecord, 0, len(rows))
	for i, out := range outcomes {
		if out.empty {
			result.Summary.SkippedEmptyRows++
			continue
		}
		result.Summary.TotalRows++

		if len(out.errs) > 0 {
			id := fmt.Sprintf("Row %d", rows[i].Line())
			if out.record != nil {
				id = out.record.Common().Identifier()
			}
			result.Invalid = append(result.Invalid, RowError{
				RowNumber:  rows[i].Line(),
				Identifier: id,
				Messages:   out.errs,
			})
			continue
		}
		valid = append(valid, out.record)
	}

	kept, dups := DetectDuplicates(valid)
	result.Valid = append(result.Valid, kept...)
	for _, d := range dups {
		result.Summary.DuplicateRows += len(d.RowNumbers)
	}
	result.Invalid = append(result.Invalid, dups...)

	sort.SliceStable(result.Invalid, func(i, j int) bool {
		return result.Invalid[i].RowNumber < result.Invalid[j].RowNumber
	})

	for _, rec := range result.Valid {
		if rec.Common().PriceDefaulted {
			result.Summary.DefaultedPrices++
		}
	}
	result.Summary.ValidRows = len(result.Valid)
	result.Summary.InvalidRows = result.Summary.TotalRows - result.Summary.ValidRows

	return result, nil
}

// processRows runs the category processor and validator over every row
// with bounded concurrency. Outcomes keep input order.
func processRows(def CategoryDefinition, rows []RawRow, pctx PricingContext, opts PreviewOptions) []rowOutcome {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	vopts := ValidationOptions{StrictPricing: opts.StrictPricing}

	outcomes := make([]rowOutcome, len(rows))

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range rows {
		if rows[i].IsEmpty() {
			outcomes[i] = rowOutcome{empty: true}
			continue
		}
		g.Go(func() error {
			outcomes[i] = processRow(def, rows[i], i, pctx, vopts)
			return nil
		})
	}
	_ = g.Wait() // workers never fail; errors are per-row

	return outcomes
}

func processRow(def CategoryDefinition, row RawRow, index int, pctx PricingContext, vopts ValidationOptions) (out rowOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = rowOutcome{errs: []string{fmt.Sprintf("internal error processing row: %v", r)}}
		}
	}()

	rec := def.Process(row, pctx.VendorID, index, ImagesFromRow(row), pctx)
	if rec == nil {
		return rowOutcome{errs: []string{"row could not be converted to a product"}}
	}
	return rowOutcome{record: rec, errs: ValidateRecord(def, rec, vopts)}
}
