// Package normalizers provides the string canonicalization used by header
// resolution and company-name matching.
package normalizers

import (
	"strings"
	"unicode"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	Register("lowercase", Lowercase)
	Register("trim", Trim)
	Register("collapse_whitespace", CollapseWhitespace)
	Register("nheader", NormalizeHeader)
	Register("ncompany", CanonicalizeCompany)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ApplyChain applies multiple normalizers in sequence
func ApplyChain(value string, normalizers ...string) string {
	result := value
	for _, name := range normalizers {
		result = Apply(result, name)
	}
	return result
}

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// CollapseWhitespace squeezes internal whitespace runs to a single space
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeHeader prepares a raw column header for alias lookup: trim,
// lowercase, collapse internal whitespace.
func NormalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// legalSuffixes are trailing company-name tokens that carry no identity
var legalSuffixes = map[string]bool{
	"llc":          true,
	"llp":          true,
	"lp":           true,
	"inc":          true,
	"incorporated": true,
	"corp":         true,
	"corporation":  true,
	"co":           true,
	"company":      true,
	"ltd":          true,
	"limited":      true,
	"plc":          true,
}

// CanonicalizeCompany normalizes a company name for matching:
// - Lowercase
// - Punctuation becomes whitespace, whitespace runs collapse to one space
// - Trailing legal suffixes (LLC, Inc, Corp, ...) are stripped
//
// "K & L Recycling" and "K&L Recycling LLC" both canonicalize to
// "k l recycling".
func CanonicalizeCompany(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var result strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
			prevSpace = false
		} else if !prevSpace {
			result.WriteRune(' ')
			prevSpace = true
		}
	}

	tokens := strings.Fields(result.String())
	for len(tokens) > 1 && legalSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}

	return strings.Join(tokens, " ")
}
