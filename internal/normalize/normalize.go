// Package normalize canonicalizes raw lead field values for comparison.
// Canonical values are comparison-only; display casing is preserved by the
// caller.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/lead-dedup/internal/model"
)

// foldDiacritics decomposes to NFD, drops combining marks, and recomposes.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Field canonicalizes a raw value for the given field kind. An empty result
// means the field is absent and must not participate in scoring.
func Field(kind model.FieldKind, raw string) string {
	switch kind {
	case model.FieldName:
		return Name(raw)
	case model.FieldEmail:
		return Email(raw)
	case model.FieldPhone, model.FieldDocument:
		return Digits(raw)
	default:
		return ""
	}
}

// Name trims, collapses internal whitespace, lower-cases, and strips
// diacritics so that "João  Souza" and "joao souza" compare equal.
func Name(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	s = strings.ToLower(s)
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	return s
}

// Email lower-cases and trims an email address.
func Email(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Digits strips every non-digit rune. Phone numbers and document ids reduce
// to their digit sequence; an empty result means the value is absent.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Lead returns the canonical value of a lead's field, empty when absent.
func Lead(l model.Lead, kind model.FieldKind) string {
	return Field(kind, l.Field(kind))
}

// Tokens splits a canonical name into its words.
func Tokens(canonical string) []string {
	return strings.Fields(canonical)
}
