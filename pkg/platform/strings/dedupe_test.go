package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{
			name:     "keeps first occurrence in order",
			input:    []string{"basic_income_check", "request_pay_stubs", "household_verification", "household_verification"},
			expected: []string{"basic_income_check", "request_pay_stubs", "household_verification"},
		},
		{name: "case sensitive", input: []string{"SNAP", "snap"}, expected: []string{"SNAP", "snap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Dedupe(tt.input))
		})
	}

	t.Run("works for ints", func(t *testing.T) {
		assert.Equal(t, []int{3, 1, 2}, Dedupe([]int{3, 1, 3, 2, 1}))
	})
}

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "trims whitespace", input: []string{"  Suffolk County ", "Hampden County  "}, expected: []string{"Suffolk County", "Hampden County"}},
		{name: "removes blanks and duplicates", input: []string{"a", "", "  ", "a", "b"}, expected: []string{"a", "b"}},
		{name: "preserves case", input: []string{"Foo", "foo"}, expected: []string{"Foo", "foo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "lowercases and dedupes", input: []string{"SNAP", "snap", " Snap "}, expected: []string{"snap"}},
		{name: "keeps order", input: []string{" TANF", "ssi", "tanf"}, expected: []string{"tanf", "ssi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrimLower(tt.input))
		})
	}
}
