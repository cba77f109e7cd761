package table

import (
	"cmp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// A Collator keeps internal buffers and must not be used concurrently.
var textCollator = struct {
	mu sync.Mutex
	c  *collate.Collator
}{c: collate.New(language.Und, collate.Loose)}

// CompareText orders two strings the way a user expects in a table: case,
// accents and width are ignored, letters follow the root locale.
func CompareText(a, b string) int {
	textCollator.mu.Lock()
	defer textCollator.mu.Unlock()
	return textCollator.c.CompareString(a, b)
}

// HasPrefixFold reports whether s begins with prefix under Unicode case folding.
func HasPrefixFold(s, prefix string) bool {
	if prefix == "" {
		return true
	}
	fold := cases.Fold()
	return strings.HasPrefix(fold.String(s), fold.String(prefix))
}

// TextCompare builds a comparator over a string field using CompareText.
func TextCompare[R any](field func(R) string) func(a, b R) int {
	return func(a, b R) int {
		return CompareText(field(a), field(b))
	}
}

// CompareBy builds a comparator over an ordered key.
func CompareBy[R any, K cmp.Ordered](key func(R) K) func(a, b R) int {
	return func(a, b R) int {
		return cmp.Compare(key(a), key(b))
	}
}

// StartsWith builds a case-insensitive starts-with predicate over a string field.
func StartsWith[R any](field func(R) string) func(R, string) bool {
	return func(row R, value string) bool {
		v := field(row)
		if v == "" {
			return false
		}
		return HasPrefixFold(v, value)
	}
}

// compareValues orders two accessor values. Numbers compare numerically,
// everything else as text; nil sorts as the empty string.
func compareValues(a, b any) int {
	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			return cmp.Compare(x, y)
		}
	}
	var sa, sb string
	if a != nil {
		sa = stringify(a)
	}
	if b != nil {
		sb = stringify(b)
	}
	return CompareText(sa, sb)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
