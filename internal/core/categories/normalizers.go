package categories

import "strings"

// diamondShapes maps common abbreviations to canonical shape names.
var diamondShapes = map[string]string{
	"round":     "Round",
	"rd":        "Round",
	"rbc":       "Round",
	"brilliant": "Round",
	"princess":  "Princess",
	"pr":        "Princess",
	"cushion":   "Cushion",
	"cu":        "Cushion",
	"oval":      "Oval",
	"ov":        "Oval",
	"emerald":   "Emerald",
	"em":        "Emerald",
	"pear":      "Pear",
	"ps":        "Pear",
	"marquise":  "Marquise",
	"mq":        "Marquise",
	"radiant":   "Radiant",
	"ra":        "Radiant",
	"asscher":   "Asscher",
	"as":        "Asscher",
	"heart":     "Heart",
	"hs":        "Heart",
}

// NormalizeShape converts shape abbreviations ("RD", "rbc") to canonical
// names. Unknown shapes are returned trimmed.
func NormalizeShape(s string) string {
	s = strings.TrimSpace(s)
	if shape, ok := diamondShapes[strings.ToLower(s)]; ok {
		return shape
	}
	return s
}

// NormalizeLab upper-cases grading lab codes ("gia" -> "GIA").
func NormalizeLab(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeGrade trims and upper-cases colour and clarity grades
// ("vs1" -> "VS1"). Multi-word values keep their case.
func NormalizeGrade(s string) string {
	s = strings.TrimSpace(s)
	if strings.ContainsRune(s, ' ') {
		return s
	}
	return strings.ToUpper(s)
}
