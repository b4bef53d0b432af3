// Package types implements per-cell type classification over textual
// samples and the join semi-lattice used to unify a column's type
// across all sampled rows.
package types

import (
	"strconv"
	"strings"
	"time"
)

// Culture tags which locale a Date column's textual format is
// compatible with. CultureNone means "ambiguous, compatible with any
// locale" — both the invariant and en-GB layouts accept it (possibly as
// different dates, e.g. 1/2/2024).
type Culture int

const (
	CultureNone Culture = iota
	CultureInvariant
	CultureEnGB
)

// Kind tags an InferredType's variant.
type Kind int

const (
	Any Kind = iota
	StringK
	Int
	Float
	Bool
	OneZero
	DateK
)

// InferredType is the classification of a column. Only DateK carries a
// meaningful Culture.
type InferredType struct {
	Kind    Kind
	Culture Culture
}

func T(k Kind) InferredType { return InferredType{Kind: k} }

func DateType(c Culture) InferredType { return InferredType{Kind: DateK, Culture: c} }

// maxSampleRows bounds how many leading rows are classified with Infer
// when inferring a column's type from a large input.
const maxSampleRows = 100

// MaxSampleRows exposes the sampling bound to callers that materialize
// rows outside this package (the CSV source).
const MaxSampleRows = maxSampleRows

// invariant-ish date layouts accepted under the "invariant" culture:
// month/day/year, the .NET invariant culture's short date pattern.
var invariantLayouts = []string{
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// en-GB layouts: day/month/year.
var enGBLayouts = []string{
	"2/1/2006",
	"2/1/2006 15:04:05",
	"02/01/2006",
}

func parseUnder(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate parses s under the layouts compatible with culture c (both
// invariant and en-GB when c is CultureNone), for callers materializing
// a cell already known to be Date-typed.
func ParseDate(s string, c Culture) (time.Time, bool) {
	switch c {
	case CultureInvariant:
		return parseUnder(s, invariantLayouts)
	case CultureEnGB:
		return parseUnder(s, enGBLayouts)
	default:
		if t, ok := parseUnder(s, invariantLayouts); ok {
			return t, true
		}
		return parseUnder(s, enGBLayouts)
	}
}

// Infer classifies a single textual cell:
//  1. 32-bit integer -> OneZero if in {0,1}, else Int
//  2. decimal -> Float
//  3. parses under both invariant and en-GB -> Date(none), ambiguous
//  4. invariant only -> Date(invariant); en-GB only -> Date(en-gb)
//  5. "true"/"false" case-insensitive -> Bool
//  6. else -> String
func Infer(s string) InferredType {
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		if n == 0 || n == 1 {
			return T(OneZero)
		}
		return T(Int)
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return T(Float)
	}
	_, underInvariant := parseUnder(s, invariantLayouts)
	_, underEnGB := parseUnder(s, enGBLayouts)
	switch {
	case underInvariant && underEnGB:
		return DateType(CultureNone)
	case underInvariant:
		return DateType(CultureInvariant)
	case underEnGB:
		return DateType(CultureEnGB)
	}
	lower := strings.ToLower(s)
	if lower == "true" || lower == "false" {
		return T(Bool)
	}
	return T(StringK)
}

// Unify computes the pairwise join of the lattice, symmetric and
// associative. Two incompatible types collapse to String.
func Unify(a, b InferredType) InferredType {
	if a.Kind == Any {
		return b
	}
	if b.Kind == Any {
		return a
	}
	if a == b {
		return a
	}
	if a.Kind == DateK && b.Kind == DateK {
		if a.Culture == CultureNone {
			return b
		}
		if b.Culture == CultureNone {
			return a
		}
		if a.Culture == b.Culture {
			return a
		}
		return T(StringK)
	}
	switch unorderedPair(a.Kind, b.Kind) {
	case unorderedPair(Bool, OneZero):
		return T(Bool)
	case unorderedPair(Int, OneZero):
		return T(Int)
	case unorderedPair(Float, OneZero):
		return T(Float)
	case unorderedPair(Int, Float):
		return T(Float)
	}
	return T(StringK)
}

// unorderedPair packs two Kinds into a comparable key regardless of
// argument order, so the unify switch above doesn't need both orderings.
func unorderedPair(a, b Kind) [2]Kind {
	if a <= b {
		return [2]Kind{a, b}
	}
	return [2]Kind{b, a}
}

// UnifyAll folds Unify over a non-empty sample of per-cell types.
func UnifyAll(ts []InferredType) InferredType {
	result := T(Any)
	for _, t := range ts {
		result = Unify(result, t)
	}
	return result
}

// FormatType projects an InferredType to the external name used in
// Metadata responses.
func FormatType(t InferredType) string {
	switch t.Kind {
	case StringK, Any:
		return "string"
	case Bool, OneZero:
		return "bool"
	case Int, Float:
		return "number"
	case DateK:
		return "date"
	}
	return "string"
}
