// Package core provides the business logic for catalog imports.
//
// It turns vendor spreadsheets into canonical, priced product records and
// commits confirmed batches through a store interface. Nothing in here
// touches HTTP, files or SQL; web handlers and tests drive it directly.
//
// # Pipeline
//
//  1. [ResolveColumns] maps the header row onto a category's fields once
//  2. A category's [RowProcessor] coerces each row into a [ProductRecord],
//     pricing jewellery with [CalculateJewelleryPrice]
//  3. [ValidateRecord] collects every violation per row
//  4. [DetectDuplicates] drops all rows of a repeated SKU
//  5. [Service.Confirm] updates existing SKUs and inserts the rest
//
// [Preview] is pure and deterministic; [Service.StartBatch] wraps it with
// the vendor's pricing context and keeps the result for confirmation.
//
// # Category Registry
//
// Categories are registered at init time using [Register]:
//
//	core.Register(CategoryDefinition{
//	    Info:     CategoryInfo{Type: ProductTypeGemstone, Label: "Gemstone"},
//	    Fields:   []FieldSpec{{Field: FieldGemstoneName, Required: true}},
//	    Process:  processGemstone,
//	    Validate: validateGemstone,
//	})
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - IMP001-IMP008: Import and batch lifecycle errors
//   - CAT001: Catalog conflicts (duplicate SKUs)
//   - DB001-DB005: Database errors
//   - FILE001-FILE006: File errors (size, format, empty)
//   - FX001: Exchange-rate errors
package core
