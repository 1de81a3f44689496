package tmx

import (
	"fmt"
	"strings"

	"github.com/oukeidos/tmxline/internal/jsonl"
	"github.com/oukeidos/tmxline/internal/xmlstream"
)

// TMX structure: <tu> wraps one translation unit, <tuv> one language
// variant, <seg> the leaf text. Names arrive lowercased from the scanner.
const (
	unitTag    = "tu"
	variantTag = "tuv"
	segmentTag = "seg"
)

// langAttrKeys are the historically used spellings of the variant language
// attribute, matched case-insensitively. A variant using any other
// convention routes nowhere and its text is dropped.
var langAttrKeys = []string{"xml:lang", "lang", "xmllang", "language"}

type state int

const (
	stateIdle state = iota
	stateInUnit
	stateInVariant
)

// Assembler consumes the event sequence and maintains exactly one
// in-progress unit. Completed units are normalized, validated and handed to
// emit in document order; emit errors are treated as fatal and propagated.
type Assembler struct {
	binding Binding
	emit    func(jsonl.Record) error
	onFault func(error)

	st        state
	unit      *unit
	lang      string
	inSegText bool

	unitsSeen int64
	emitted   int64
}

// NewAssembler builds an assembler for one run. onFault may be nil; it
// observes structural anomalies that the assembler recovers from.
func NewAssembler(binding Binding, emit func(jsonl.Record) error, onFault func(error)) *Assembler {
	return &Assembler{
		binding: binding,
		emit:    emit,
		onFault: onFault,
	}
}

// Feed advances the state machine with one event. The returned error comes
// only from the emit callback and must abort the run.
func (a *Assembler) Feed(ev xmlstream.Event) error {
	switch ev.Kind {
	case xmlstream.StartElement:
		a.open(ev)
	case xmlstream.CharData:
		if a.st == stateInVariant && a.inSegText {
			a.unit.append(a.lang, a.binding, ev.Text)
		}
	case xmlstream.EndElement:
		return a.close(ev)
	}
	return nil
}

func (a *Assembler) open(ev xmlstream.Event) {
	switch ev.Name {
	case unitTag:
		if a.st != stateIdle {
			// A <tu> inside an open unit means broken nesting. The partial
			// unit is discarded rather than merged into the new one.
			a.faultf("unexpected nested <tu>; discarding partial unit")
			a.reset()
		}
		a.unit = &unit{}
		a.st = stateInUnit
	case variantTag:
		switch a.st {
		case stateInUnit, stateInVariant:
			a.lang = variantLang(ev)
			a.st = stateInVariant
			a.inSegText = false
		}
	case segmentTag:
		if a.st == stateInVariant {
			a.inSegText = true
		}
	}
	// Inline markup inside <seg> (bpt, ept, ph, hi) opens elements we do
	// not track; their character data still belongs to the segment.
}

func (a *Assembler) close(ev xmlstream.Event) error {
	switch ev.Name {
	case segmentTag:
		a.inSegText = false
	case variantTag:
		if a.st == stateInVariant {
			a.st = stateInUnit
			a.lang = ""
			a.inSegText = false
		}
	case unitTag:
		if a.st == stateIdle {
			return nil
		}
		a.unitsSeen++
		rec, ok := a.unit.record()
		a.reset()
		if !ok {
			return nil
		}
		if err := a.emit(rec); err != nil {
			return err
		}
		a.emitted++
	}
	return nil
}

func (a *Assembler) reset() {
	a.st = stateIdle
	a.unit = nil
	a.lang = ""
	a.inSegText = false
}

// UnitsSeen counts every closed <tu>, valid or not.
func (a *Assembler) UnitsSeen() int64 { return a.unitsSeen }

// Emitted counts units that passed validation and were handed to emit.
func (a *Assembler) Emitted() int64 { return a.emitted }

func (a *Assembler) faultf(format string, args ...any) {
	if a.onFault != nil {
		a.onFault(fmt.Errorf(format, args...))
	}
}

// variantLang extracts the variant's language code, trying each recognized
// attribute spelling, and lowercases it. Missing attribute yields "".
func variantLang(ev xmlstream.Event) string {
	for _, key := range langAttrKeys {
		if v, ok := ev.AttrValue(key); ok {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	return ""
}
