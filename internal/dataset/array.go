package dataset

import (
	"bytes"
	"fmt"

	"github.com/oukeidos/tmxline/internal/files"
	"github.com/oukeidos/tmxline/internal/jsonl"
)

// ConvertArray flattens a JSON array of QA records into JSONL, one compact
// object per line in fixed field order. With validate set, every record
// must carry exactly the QA fields.
func ConvertArray(inputPath, outputPath string, validate bool) (int, error) {
	records, err := LoadArray(inputPath)
	if err != nil {
		return 0, err
	}
	if validate {
		for i, rec := range records {
			if err := rec.Validate(); err != nil {
				return 0, fmt.Errorf("record %d invalid: %w", i+1, err)
			}
		}
	}
	return writeRecords(outputPath, records, func(_ int, rec rawRecord) (any, bool) {
		return rec.QA(), true
	})
}

// writeRecords renders each record to one JSONL line and writes the whole
// output atomically. These converters handle bounded inputs, so buffering
// the full output before the rename is fine.
func writeRecords(path string, records []rawRecord, render func(i int, rec rawRecord) (any, bool)) (int, error) {
	var buf bytes.Buffer
	w := jsonl.NewWriter(&buf)
	count := 0
	for i, rec := range records {
		v, ok := render(i, rec)
		if !ok {
			continue
		}
		if err := w.Encode(v); err != nil {
			return count, err
		}
		count++
	}
	if err := w.Flush(); err != nil {
		return count, err
	}
	if err := files.AtomicWrite(path, buf.Bytes(), 0o644); err != nil {
		return count, err
	}
	return count, nil
}
