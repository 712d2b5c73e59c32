package core

import (
	"sort"
	"strings"
)

// minContainmentLen keeps very short headers ("ID", "No") from producing
// noisy suggestions.
const minContainmentLen = 3

// ColumnReport describes how a sheet's headers map onto a category's
// canonical fields.
type ColumnReport struct {
	DetectedColumns []string                  `json:"detectedColumns"`
	Mapped          map[CanonicalField]string `json:"mapped"`
	Missing         []CanonicalField          `json:"missing"`
	Suggestions     map[CanonicalField]string `json:"suggestions"`
	Samples         map[CanonicalField]string `json:"samples"`
}

// HasMissing reports whether any required field went unmatched.
func (r ColumnReport) HasMissing() bool {
	return len(r.Missing) > 0
}

// ResolveColumns matches headers to the category's fields. For each field:
//
//  1. exact case-insensitive match on the canonical name
//  2. any alias from the shared alias table
//  3. normalized substring containment, recorded as a suggestion only
//
// Required fields still unmatched after step 2 are listed in Missing, even
// when a suggestion exists. sample supplies the first data row's values.
func ResolveColumns(def CategoryDefinition, headers []string, sample RawRow) ColumnReport {
	report := ColumnReport{
		DetectedColumns: make([]string, 0, len(headers)),
		Mapped:          make(map[CanonicalField]string),
		Missing:         []CanonicalField{},
		Suggestions:     make(map[CanonicalField]string),
		Samples:         make(map[CanonicalField]string),
	}

	byKey := make(map[string]string, len(headers))
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		report.DetectedColumns = append(report.DetectedColumns, h)
		if key := HeaderKey(h); key != "" {
			if _, exists := byKey[key]; !exists {
				byKey[key] = h
			}
		}
	}

	claimed := make(map[string]bool)
	var unmatched []FieldSpec

	for _, spec := range def.Fields {
		header, ok := exactHeader(report.DetectedColumns, string(spec.Field))
		if !ok {
			header, ok = aliasHeader(byKey, spec.Field)
		}
		if !ok {
			unmatched = append(unmatched, spec)
			continue
		}
		report.Mapped[spec.Field] = header
		claimed[header] = true
		if v, found := sample.Value(header); found && !v.IsEmpty() {
			report.Samples[spec.Field] = v.String()
		}
	}

	for _, spec := range unmatched {
		if header, ok := containmentHeader(report.DetectedColumns, claimed, spec.Field); ok {
			report.Suggestions[spec.Field] = header
			if v, found := sample.Value(header); found && !v.IsEmpty() {
				report.Samples[spec.Field] = v.String()
			}
		}
		if spec.Required {
			report.Missing = append(report.Missing, spec.Field)
		}
	}

	sort.Slice(report.Missing, func(i, j int) bool {
		return report.Missing[i] < report.Missing[j]
	})

	return report
}

func exactHeader(headers []string, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h, name) {
			return h, true
		}
	}
	return "", false
}

func aliasHeader(byKey map[string]string, f CanonicalField) (string, bool) {
	for _, alias := range Aliases(f) {
		if h, ok := byKey[HeaderKey(alias)]; ok {
			return h, true
		}
	}
	return "", false
}

// containmentHeader finds the first unclaimed header whose normalized form
// contains the field name (or is contained in it).
func containmentHeader(headers []string, claimed map[string]bool, f CanonicalField) (string, bool) {
	field := HeaderKey(string(f))
	if len(field) < minContainmentLen {
		return "", false
	}
	for _, h := range headers {
		if claimed[h] {
			continue
		}
		key := HeaderKey(h)
		if len(key) < minContainmentLen {
			continue
		}
		if strings.Contains(key, field) || strings.Contains(field, key) {
			return h, true
		}
	}
	return "", false
}
