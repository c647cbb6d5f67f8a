package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Company Name", "company name"},
		{"trims", "  Industry  ", "industry"},
		{"collapses internal whitespace", "Days  Since   Last Contact", "days since last contact"},
		{"tabs and newlines", "Company\tName\n", "company name"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHeader(tt.input))
		})
	}
}

func TestCanonicalizeCompany(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name", "Green Waste", "green waste"},
		{"strips llc", "K&L Recycling LLC", "k l recycling"},
		{"ampersand with spaces", "K & L Recycling", "k l recycling"},
		{"strips corp", "Green Waste Corp", "green waste"},
		{"strips stacked suffixes", "Acme Holdings Co Inc", "acme holdings"},
		{"strips punctuation", "O'Brien & Sons, Inc.", "o brien sons"},
		{"suffix only name survives", "LLC", "llc"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalizeCompany(tt.input))
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Run("apply known normalizer", func(t *testing.T) {
		assert.Equal(t, "abc", ApplyChain(" ABC ", "trim", "lowercase"))
	})

	t.Run("unknown normalizer passes through", func(t *testing.T) {
		assert.Equal(t, "ABC", Apply("ABC", "does_not_exist"))
	})

	t.Run("chain", func(t *testing.T) {
		assert.Equal(t, "k l recycling", ApplyChain("  K & L Recycling LLC ", "trim", "ncompany"))
	})
}
