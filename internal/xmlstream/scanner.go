package xmlstream

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scanner turns a byte stream into a lazy sequence of structural events
// without building a document tree. Chunk boundaries in the underlying
// reader are arbitrary; the scanner never needs more than one tag or one
// text run in memory at a time.
//
// Malformed fragments do not stop the scan. Each condition class is
// reported at most once through the fault callback and scanning resumes at
// the next '<'. Only I/O errors from the underlying reader terminate the
// event sequence with an error other than io.EOF.
type Scanner struct {
	r       *bufio.Reader
	onFault func(error)
	seen    map[string]bool
	queue   []Event
	err     error
}

// NewScanner wraps r. onFault may be nil; when set it receives at most one
// error per malformed-content condition class.
func NewScanner(r io.Reader, onFault func(error)) *Scanner {
	return &Scanner{
		r:       bufio.NewReaderSize(r, 64*1024),
		onFault: onFault,
		seen:    make(map[string]bool),
	}
}

// Next returns the next event. It returns io.EOF once the input is
// exhausted and any other error only for failures of the underlying reader.
func (s *Scanner) Next() (Event, error) {
	for {
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			return ev, nil
		}
		if s.err != nil {
			return Event{}, s.err
		}
		ev, ok, err := s.scan()
		if err != nil {
			s.err = err
			return Event{}, err
		}
		if ok {
			return ev, nil
		}
	}
}

// scan consumes one text run and/or one markup construct. It returns
// ok=false when the construct produced no event (comment, declaration,
// skipped malformed fragment).
func (s *Scanner) scan() (Event, bool, error) {
	text, err := s.r.ReadString('<')
	sawTag := err == nil
	if err != nil && err != io.EOF {
		return Event{}, false, err
	}
	if sawTag {
		text = text[:len(text)-1]
	}

	var textEv Event
	hasText := text != ""
	if hasText {
		textEv = Event{Kind: CharData, Text: s.decodeEntities(text)}
	}

	if !sawTag {
		if hasText {
			return textEv, true, nil
		}
		return Event{}, false, io.EOF
	}

	evs, err := s.parseMarkup()
	if err != nil {
		return Event{}, false, err
	}
	if hasText {
		s.queue = append(s.queue, evs...)
		return textEv, true, nil
	}
	if len(evs) == 0 {
		return Event{}, false, nil
	}
	s.queue = append(s.queue, evs[1:]...)
	return evs[0], true, nil
}

// parseMarkup is called with the '<' already consumed.
func (s *Scanner) parseMarkup() ([]Event, error) {
	raw, err := s.r.ReadString('>')
	if err != nil {
		if err == io.EOF {
			s.fault("unterminated-tag", "unterminated tag at end of input")
			return nil, nil
		}
		return nil, err
	}
	raw = raw[:len(raw)-1]

	switch {
	case strings.HasPrefix(raw, "!--"):
		return nil, s.skipComment(raw)
	case strings.HasPrefix(raw, "![CDATA["):
		return s.readCDATA(raw)
	case strings.HasPrefix(raw, "!"), strings.HasPrefix(raw, "?"):
		// DOCTYPE, XML declaration, processing instructions.
		return nil, nil
	}

	if strings.HasPrefix(raw, "/") {
		name := strings.ToLower(strings.TrimSpace(raw[1:]))
		if !validName(name) {
			s.fault("malformed-tag", fmt.Sprintf("malformed closing tag %q", raw))
			return nil, nil
		}
		return []Event{{Kind: EndElement, Name: name}}, nil
	}

	selfClosing := strings.HasSuffix(raw, "/")
	if selfClosing {
		raw = strings.TrimSuffix(raw, "/")
	}
	name, attrs, ok := s.parseStartTag(raw)
	if !ok {
		return nil, nil
	}
	evs := []Event{{Kind: StartElement, Name: name, Attrs: attrs}}
	if selfClosing {
		evs = append(evs, Event{Kind: EndElement, Name: name})
	}
	return evs, nil
}

// skipComment consumes the remainder of a comment. raw holds the bytes
// between "<" and the first ">", which may sit inside the comment body.
func (s *Scanner) skipComment(raw string) error {
	body := raw
	for {
		// A complete comment reads "!--" ... "--" between the brackets.
		if len(body) >= len("!----") && strings.HasSuffix(body, "--") {
			return nil
		}
		chunk, err := s.r.ReadString('>')
		if err == io.EOF {
			s.fault("unterminated-comment", "unterminated comment at end of input")
			return nil
		}
		if err != nil {
			return err
		}
		body += ">" + chunk[:len(chunk)-1]
	}
}

// readCDATA consumes a CDATA section and emits its content verbatim.
func (s *Scanner) readCDATA(raw string) ([]Event, error) {
	body := strings.TrimPrefix(raw, "![CDATA[")
	for !strings.HasSuffix(body, "]]") {
		chunk, err := s.r.ReadString('>')
		if err == io.EOF {
			s.fault("unterminated-cdata", "unterminated CDATA section at end of input")
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		body += ">" + chunk[:len(chunk)-1]
	}
	text := strings.TrimSuffix(body, "]]")
	if text == "" {
		return nil, nil
	}
	return []Event{{Kind: CharData, Text: text}}, nil
}

func (s *Scanner) parseStartTag(raw string) (string, []Attr, bool) {
	rest := strings.TrimSpace(raw)
	if rest == "" {
		s.fault("malformed-tag", "empty tag")
		return "", nil, false
	}
	nameEnd := strings.IndexFunc(rest, unicode.IsSpace)
	name := rest
	if nameEnd >= 0 {
		name = rest[:nameEnd]
		rest = rest[nameEnd:]
	} else {
		rest = ""
	}
	name = strings.ToLower(name)
	if !validName(name) {
		s.fault("malformed-tag", fmt.Sprintf("malformed tag name %q", name))
		return "", nil, false
	}
	return name, s.parseAttrs(rest), true
}

// parseAttrs tolerantly parses key="value" pairs. Unquoted values and bare
// keys are accepted; an unterminated quote takes the rest of the tag.
func (s *Scanner) parseAttrs(raw string) []Attr {
	var attrs []Attr
	i := 0
	for i < len(raw) {
		for i < len(raw) && isSpaceByte(raw[i]) {
			i++
		}
		if i >= len(raw) {
			break
		}
		keyStart := i
		for i < len(raw) && raw[i] != '=' && !isSpaceByte(raw[i]) {
			i++
		}
		key := strings.ToLower(raw[keyStart:i])
		for i < len(raw) && isSpaceByte(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] != '=' {
			if key != "" {
				attrs = append(attrs, Attr{Key: key})
			}
			continue
		}
		i++ // consume '='
		for i < len(raw) && isSpaceByte(raw[i]) {
			i++
		}
		var value string
		if i < len(raw) && (raw[i] == '"' || raw[i] == '\'') {
			quote := raw[i]
			i++
			valStart := i
			for i < len(raw) && raw[i] != quote {
				i++
			}
			if i >= len(raw) {
				s.fault("malformed-attr", fmt.Sprintf("unterminated quote in attribute %q", key))
			}
			value = raw[valStart:i]
			if i < len(raw) {
				i++ // closing quote
			}
		} else {
			valStart := i
			for i < len(raw) && !isSpaceByte(raw[i]) {
				i++
			}
			value = raw[valStart:i]
		}
		if key != "" {
			attrs = append(attrs, Attr{Key: key, Value: s.decodeEntities(value)})
		}
	}
	return attrs
}

// decodeEntities expands the predefined XML entities and numeric character
// references. Unknown or malformed references are kept literally and
// reported once.
func (s *Scanner) decodeEntities(text string) string {
	amp := strings.IndexByte(text, '&')
	if amp < 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for {
		b.WriteString(text[:amp])
		text = text[amp:]
		end := strings.IndexByte(text, ';')
		if end < 0 || end > 32 {
			s.fault("invalid-entity", "invalid entity reference")
			b.WriteByte('&')
			text = text[1:]
		} else {
			entity := text[1:end]
			if r, ok := resolveEntity(entity); ok {
				b.WriteString(r)
			} else {
				s.fault("invalid-entity", fmt.Sprintf("unknown entity &%s;", entity))
				b.WriteString(text[:end+1])
			}
			text = text[end+1:]
		}
		amp = strings.IndexByte(text, '&')
		if amp < 0 {
			b.WriteString(text)
			return b.String()
		}
	}
}

func resolveEntity(name string) (string, bool) {
	switch name {
	case "amp":
		return "&", true
	case "lt":
		return "<", true
	case "gt":
		return ">", true
	case "quot":
		return `"`, true
	case "apos":
		return "'", true
	}
	if strings.HasPrefix(name, "#") {
		digits := name[1:]
		base := 10
		if strings.HasPrefix(digits, "x") || strings.HasPrefix(digits, "X") {
			digits = digits[1:]
			base = 16
		}
		n, err := strconv.ParseInt(digits, base, 32)
		if err != nil || !utf8.ValidRune(rune(n)) {
			return "", false
		}
		return string(rune(n)), true
	}
	return "", false
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsLetter(r) || r == '_'
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (s *Scanner) fault(class, msg string) {
	if s.seen[class] {
		return
	}
	s.seen[class] = true
	if s.onFault != nil {
		s.onFault(fmt.Errorf("%s", msg))
	}
}
