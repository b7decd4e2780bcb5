// Package ingest converts parsed tabular rows into the three typed
// collections the pipeline works on: trees, neighborhoods, and the rent
// table.
package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold strips combining marks so accented and plain spellings of a
// neighborhood share one rent key.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CanonicalName collapses internal whitespace runs to single spaces and
// trims. Idempotent: canonicalizing a canonical name is a no-op. Case is
// preserved; this is the display form.
func CanonicalName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// RentKey produces the canonical lookup key for the rent table: canonical
// name, lower-cased with diacritics stripped, then passed through the
// alias table. Idempotent, so a key read back out of the table resolves to
// itself.
func RentKey(name string) string {
	key := foldKey(name)
	if canonical, ok := rentKeyAliases[key]; ok {
		return canonical
	}
	return key
}

// foldKey is RentKey without the alias step: canonical name, lower-cased,
// diacritics stripped. Alias table entries are registered under this form
// so a new mapping for an already-aliased spelling replaces the built-in
// instead of landing under its old target.
func foldKey(name string) string {
	key := strings.ToLower(CanonicalName(name))
	if folded, _, err := transform.String(asciiFold, key); err == nil {
		key = folded
	}
	return key
}
