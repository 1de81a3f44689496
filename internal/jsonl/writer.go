// Package jsonl reads and writes line-delimited JSON, the record format
// shared by the converter core and the dataset tooling around it.
package jsonl

import (
	"bufio"
	"encoding/json"
	"io"
)

// Record is one emitted translation pair. Field order is fixed: source
// before target. Normalization upstream guarantees neither side contains a
// raw newline, which keeps the one-record-per-line contract.
type Record struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Writer appends one compact JSON object per line, in strict arrival order.
// There is no internal reordering or batching; the buffer flushes bytes in
// the order they were encoded.
type Writer struct {
	bw    *bufio.Writer
	enc   *json.Encoder
	lines int64
}

func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriterSize(w, 256*1024)
	enc := json.NewEncoder(bw)
	// Keep multilingual text readable; no HTML escaping of <, > and &.
	enc.SetEscapeHTML(false)
	return &Writer{bw: bw, enc: enc}
}

// Encode writes v as one compact line terminated by a single newline.
func (w *Writer) Encode(v any) error {
	if err := w.enc.Encode(v); err != nil {
		return err
	}
	w.lines++
	return nil
}

// Write appends one record.
func (w *Writer) Write(rec Record) error {
	return w.Encode(rec)
}

// Lines returns the number of lines written so far.
func (w *Writer) Lines() int64 { return w.lines }

// Flush drains the buffer to the underlying writer.
func (w *Writer) Flush() error { return w.bw.Flush() }
