package tmx

import (
	"strings"

	"github.com/oukeidos/tmxline/internal/jsonl"
	"golang.org/x/text/unicode/norm"
)

// Normalize applies Unicode NFC, collapses every whitespace run (spaces,
// tabs, newlines) to a single space and trims the result. It is idempotent.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Emittable reports whether a normalized record carries text on both sides.
// Units missing either side are expected in real corpora and are dropped
// without an error.
func Emittable(rec jsonl.Record) bool {
	return rec.Source != "" && rec.Target != ""
}
