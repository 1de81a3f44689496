package tmx

import (
	"strings"

	"github.com/oukeidos/tmxline/internal/jsonl"
)

// Binding fixes which variant language feeds the record's source and which
// feeds its target. Codes are compared case-insensitively; both sides are
// lowercased once at construction and immutable for the run.
type Binding struct {
	Source string
	Target string
}

func NewBinding(source, target string) Binding {
	return Binding{
		Source: strings.ToLower(strings.TrimSpace(source)),
		Target: strings.ToLower(strings.TrimSpace(target)),
	}
}

// unit is the single in-progress accumulator. Text events observed inside a
// matching segment are concatenated raw; normalization happens once, when
// the unit completes.
type unit struct {
	source strings.Builder
	target strings.Builder
}

func (u *unit) append(lang string, b Binding, text string) {
	switch lang {
	case b.Source:
		u.source.WriteString(text)
	case b.Target:
		u.target.WriteString(text)
	}
}

// record normalizes both sides and reports whether the unit is emittable.
func (u *unit) record() (jsonl.Record, bool) {
	rec := jsonl.Record{
		Source: Normalize(u.source.String()),
		Target: Normalize(u.target.String()),
	}
	return rec, Emittable(rec)
}
