package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DetectDuplicates finds SKUs that occur on more than one valid row.
// Every row of a duplicate group is excluded from kept, and each group is
// reported once, listing all its rows. Rows without a SKU never collide.
// Rows whose SKU was generated are named in the message.
// Groups are ordered by their first row number.
func DetectDuplicates(records []ProductRecord) ([]ProductRecord, []RowError) {
	groups := make(map[string][]int) // sku -> indexes into records
	for i, rec := range records {
		sku := strings.TrimSpace(rec.Common().SKU)
		if sku == "" {
			continue
		}
		groups[sku] = append(groups[sku], i)
	}

	excluded := make(map[int]bool)
	var dups []RowError

	for sku, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}

		rows := make([]int, len(idxs))
		var generated []int
		for j, idx := range idxs {
			excluded[idx] = true
			c := records[idx].Common()
			rows[j] = c.RowNumber
			if c.SKUGenerated {
				generated = append(generated, c.RowNumber)
			}
		}
		sort.Ints(rows)

		msg := fmt.Sprintf("duplicate SKU %q appears in rows %s", sku, joinInts(rows))
		if len(generated) > 0 {
			sort.Ints(generated)
			msg += fmt.Sprintf(" (generated for blank SKU in rows %s)", joinInts(generated))
		}

		dups = append(dups, RowError{
			RowNumber:  rows[0],
			Identifier: sku,
			Messages:   []string{msg},
			RowNumbers: rows,
		})
	}

	sort.Slice(dups, func(i, j int) bool {
		return dups[i].RowNumber < dups[j].RowNumber
	})

	kept := make([]ProductRecord, 0, len(records)-len(excluded))
	for i, rec := range records {
		if !excluded[i] {
			kept = append(kept, rec)
		}
	}
	return kept, dups
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
