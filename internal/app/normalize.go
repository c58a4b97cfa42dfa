package app

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Field coercions for raw extract values. Every function here is pure and
// total: malformed input degrades to nil, never to an error.

// Nullify trims s and collapses NaN-like markers ("nan", "none", "", any
// case) to nil.
func Nullify(s string) *string {
	t := strings.TrimSpace(s)
	switch strings.ToLower(t) {
	case "", "nan", "none":
		return nil
	}
	return &t
}

// IntOrNull parses through a float intermediate so "4.0" becomes 4.
func IntOrNull(s string) *int {
	f := FloatOrNull(s)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// FloatOrNull parses s as a float; NaN, Inf and garbage all map to nil.
func FloatOrNull(s string) *float64 {
	t := Nullify(s)
	if t == nil {
		return nil
	}
	f, err := strconv.ParseFloat(*t, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// CanonicalPostal stores postal codes as canonical strings: a numeric-looking
// value with a zero fraction loses its ".0" suffix textually, so "02116.0"
// stays "02116" with the leading zero intact. Non-whole numerics and plain
// strings pass through trimmed.
func CanonicalPostal(s string) *string {
	t := Nullify(s)
	if t == nil {
		return nil
	}
	v := *t
	if i := strings.IndexByte(v, '.'); i > 0 {
		whole, frac := v[:i], v[i+1:]
		if isDigits(whole) && isZeros(frac) {
			return &whole
		}
	}
	return &v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isZeros(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			return false
		}
	}
	return true
}

// Extract dates arrive in a handful of shapes; try the specific ones first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TimestampOrNull parses a raw date representation; unparseable or missing
// values map to nil.
func TimestampOrNull(s string) *time.Time {
	t := Nullify(s)
	if t == nil {
		return nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, *t); err == nil {
			return &ts
		}
	}
	return nil
}

// textLength implements the text_length invariant: length of the text, or 0
// when there is none.
func textLength(text *string) int {
	if text == nil {
		return 0
	}
	return len(*text)
}
