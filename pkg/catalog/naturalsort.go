package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NaturalSort returns a new slice of products ordered by SKU so that
// "A2" comes before "A10". The input is left untouched.
//
// When both SKUs contain a non-zero number, the first digit run alone
// decides, and equal numbers keep their input order. Otherwise SKUs fall back
// to a case- and accent-insensitive collation that also compares digit runs
// numerically.
func NaturalSort(products []*Product) []*Product {
	sorted := slices.Clone(products)
	if len(sorted) < 2 {
		return sorted
	}

	// collators keep internal buffers and can't be shared across goroutines
	col := collate.New(language.Und, collate.Numeric, collate.Loose)

	slices.SortStableFunc(sorted, func(a, b *Product) int {
		return compareSKU(col, a.SKU, b.SKU)
	})
	return sorted
}

func compareSKU(col *collate.Collator, a, b string) int {
	na, nb := firstNumber(a), firstNumber(b)
	if na != "" && nb != "" {
		return compareDigits(na, nb)
	}
	return col.CompareString(a, b)
}

// firstNumber returns the first ASCII digit run without leading zeros, or ""
// when the string has no digits or the run is all zeros.
func firstNumber(s string) string {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return ""
	}
	end := start
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	return strings.TrimLeft(s[start:end], "0")
}

// compareDigits orders two zero-trimmed digit strings by numeric value.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
