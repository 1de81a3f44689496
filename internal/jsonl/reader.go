package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Reader iterates JSON lines. Blank lines are skipped; decode failures
// carry the 1-based line number.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	// Single records can be long; grow well past the scanner default.
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &Reader{sc: sc}
}

// Next decodes the next non-blank line into v. It returns io.EOF when the
// input is exhausted.
func (r *Reader) Next(v any) error {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimSpace(r.sc.Text())
		if text == "" {
			continue
		}
		if err := json.Unmarshal([]byte(text), v); err != nil {
			return fmt.Errorf("line %d: %w", r.line, err)
		}
		return nil
	}
	if err := r.sc.Err(); err != nil {
		return err
	}
	return io.EOF
}

// Line returns the number of the most recently read line.
func (r *Reader) Line() int { return r.line }
