// Package columnar converts the line-record format to Parquet for
// column-oriented consumers.
package columnar

import (
	"fmt"
	"io"
	"os"

	"github.com/oukeidos/tmxline/internal/apperrors"
	"github.com/oukeidos/tmxline/internal/files"
	"github.com/oukeidos/tmxline/internal/jsonl"
	"github.com/oukeidos/tmxline/internal/logger"
	"github.com/parquet-go/parquet-go"
)

// row mirrors jsonl.Record with the column layout of the output file.
type row struct {
	Source string `parquet:"source,snappy"`
	Target string `parquet:"target,snappy"`
}

// DefaultBatchRows bounds memory: rows are flushed to the writer in batches
// of this size instead of materializing the whole corpus.
const DefaultBatchRows = 50_000

// Convert streams a JSONL file of translation records into a Parquet file.
// Like the core converter, it never holds more than one batch in memory and
// treats a zero-row outcome as a failure.
func Convert(inputPath, outputPath string, batchRows int) (total int64, retErr error) {
	if batchRows <= 0 {
		batchRows = DefaultBatchRows
	}
	if err := files.RejectSymlinkPath(outputPath); err != nil {
		return 0, err
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return 0, apperrors.Resource(inputPath, err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, apperrors.Resource(outputPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = apperrors.Resource(outputPath, cerr)
		}
	}()

	pw := parquet.NewGenericWriter[row](out)
	reader := jsonl.NewReader(in)
	batch := make([]row, 0, batchRows)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := pw.Write(batch); err != nil {
			return apperrors.Resource(outputPath, err)
		}
		total += int64(len(batch))
		logger.Debug("Row batch written", "rows", total)
		batch = batch[:0]
		return nil
	}

	for {
		var rec jsonl.Record
		err := reader.Next(&rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("failed to read %s: %w", inputPath, err)
		}
		batch = append(batch, row{Source: rec.Source, Target: rec.Target})
		if len(batch) == batchRows {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	if err := pw.Close(); err != nil {
		return total, apperrors.Resource(outputPath, err)
	}

	if total == 0 {
		return 0, apperrors.Empty(inputPath)
	}
	return total, nil
}
