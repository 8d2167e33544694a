package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind selects which numeric parser Validate dispatches to.
type Kind string

const (
	KindInt   Kind = "int"
	KindFloat Kind = "float"
)

// ParseInt strips every non-digit rune and parses the remainder.
// Returns false when nothing is left, e.g. "품절" or "무료배송".
func ParseInt(text string) (int, bool) {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseFloat strips everything except digits and decimal points. A string
// that cleans down to something unparseable ("1.2.3") is a miss, not an error.
func ParseFloat(text string) (float64, bool) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Validate short-circuits empty input to a miss without parsing, then
// dispatches to the parser for kind. An unknown kind is a programming
// defect, not bad page data, and panics.
func Validate(text string, kind Kind) (float64, bool) {
	if text == "" {
		return 0, false
	}

	switch kind {
	case KindInt:
		n, ok := ParseInt(text)
		return float64(n), ok
	case KindFloat:
		return ParseFloat(text)
	default:
		panic(fmt.Sprintf("parser: unsupported validation kind %q", kind))
	}
}

// ValidateInt is Validate with KindInt and an int result.
func ValidateInt(text string) (int, bool) {
	v, ok := Validate(text, KindInt)
	return int(v), ok
}

// ValidateFloat is Validate with KindFloat.
func ValidateFloat(text string) (float64, bool) {
	return Validate(text, KindFloat)
}
