package xmlstream

// Kind identifies the structural event classes produced by the Scanner.
type Kind int

const (
	StartElement Kind = iota + 1
	CharData
	EndElement
)

func (k Kind) String() string {
	switch k {
	case StartElement:
		return "start"
	case CharData:
		return "chardata"
	case EndElement:
		return "end"
	default:
		return "unknown"
	}
}

// Attr is one attribute of a start element. Keys are case-folded to
// lowercase; values are kept as written (after entity decoding).
type Attr struct {
	Key   string
	Value string
}

// Event is one structural event of the document stream. Name is set for
// StartElement and EndElement (lowercased), Text for CharData.
type Event struct {
	Kind  Kind
	Name  string
	Attrs []Attr
	Text  string
}

// AttrValue returns the value for key (already lowercased by the scanner).
func (e Event) AttrValue(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
