package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		ok       bool
	}{
		{name: "price with comma and won suffix", input: "1,000원", expected: 1000, ok: true},
		{name: "plain digits", input: "9900", expected: 9900, ok: true},
		{name: "thousands separators", input: "1,234,567", expected: 1234567, ok: true},
		{name: "discount percent", input: "15%", expected: 15, ok: true},
		{name: "delivery fee text", input: "배송비 3,000원", expected: 3000, ok: true},
		{name: "review count with parens", input: "(1,234)", expected: 1234, ok: true},
		{name: "sold out, no digits", input: "품절", ok: false},
		{name: "free delivery, no digits", input: "무료배송", ok: false},
		{name: "empty string", input: "", ok: false},
		{name: "whitespace only", input: "   ", ok: false},
		{name: "currency symbol prefix", input: "₩12,900", expected: 12900, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseInt(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{name: "plain rating", input: "4.8", expected: 4.8, ok: true},
		{name: "rating with star glyph", input: "별점 4.5", expected: 4.5, ok: true},
		{name: "integer rating", input: "5", expected: 5.0, ok: true},
		{name: "no digits", input: "리뷰", ok: false},
		{name: "empty string", input: "", ok: false},
		{name: "two decimal points", input: "1.2.3", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFloat(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, got, 1e-9)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("empty input misses without parsing", func(t *testing.T) {
		_, ok := Validate("", KindInt)
		assert.False(t, ok)
		_, ok = Validate("", KindFloat)
		assert.False(t, ok)
	})

	t.Run("dispatches to int parser", func(t *testing.T) {
		v, ok := Validate("1,000원", KindInt)
		assert.True(t, ok)
		assert.Equal(t, 1000.0, v)
	})

	t.Run("dispatches to float parser", func(t *testing.T) {
		v, ok := Validate("4.8", KindFloat)
		assert.True(t, ok)
		assert.InDelta(t, 4.8, v, 1e-9)
	})

	t.Run("unknown kind panics", func(t *testing.T) {
		assert.Panics(t, func() {
			Validate("123", Kind("decimal"))
		})
	})

	t.Run("unknown kind with empty input does not panic", func(t *testing.T) {
		// Empty input short-circuits before the kind is inspected.
		assert.NotPanics(t, func() {
			Validate("", Kind("decimal"))
		})
	})
}
