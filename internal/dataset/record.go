// Package dataset holds the bounded, single-pass converters that operate on
// already-materialized QA corpora around the streaming TMX core: JSON-array
// flattening and the chat/Alpaca fine-tuning templates.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oukeidos/tmxline/internal/jsonl"
)

// QARecord is the question/answer shape produced by the upstream
// distillation step. Field order is fixed.
type QARecord struct {
	Question         string `json:"question"`
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content"`
}

// rawRecord keeps the raw keys so validation can flag unexpected fields.
type rawRecord map[string]json.RawMessage

// LoadArray reads a JSON array of objects from path.
func LoadArray(path string) ([]rawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []rawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("input must be a JSON array of objects: %w", err)
	}
	return records, nil
}

// LoadArrayOrLines reads either a JSON array or JSONL, trying the array form
// first, the way the upstream tooling accepts both.
func LoadArrayOrLines(path string) ([]rawRecord, error) {
	records, err := LoadArray(path)
	if err == nil {
		return records, nil
	}

	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, openErr
	}
	defer f.Close()

	reader := jsonl.NewReader(f)
	var lines []rawRecord
	for {
		var rec rawRecord
		if err := reader.Next(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("input is neither a JSON array nor JSONL: %w", err)
		}
		lines = append(lines, rec)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no valid data found in %s", path)
	}
	return lines, nil
}

func (r rawRecord) stringField(key string) (string, bool) {
	raw, ok := r[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

var qaFields = []string{"question", "content", "reasoning_content"}

// Validate checks that the record carries exactly the QA fields.
func (r rawRecord) Validate() error {
	var missing []string
	for _, f := range qaFields {
		if _, ok := r[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	known := make(map[string]bool, len(qaFields))
	for _, f := range qaFields {
		known[f] = true
	}
	var unexpected []string
	for key := range r {
		if !known[key] {
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) > 0 {
		return fmt.Errorf("unexpected fields: %s", strings.Join(unexpected, ", "))
	}
	return nil
}

// QA extracts the ordered QA view of the record.
func (r rawRecord) QA() QARecord {
	question, _ := r.stringField("question")
	content, _ := r.stringField("content")
	reasoning, _ := r.stringField("reasoning_content")
	return QARecord{Question: question, Content: content, ReasoningContent: reasoning}
}
