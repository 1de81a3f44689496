package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/oukeidos/tmxline/internal/apperrors"
	"github.com/oukeidos/tmxline/internal/files"
	"github.com/oukeidos/tmxline/internal/jsonl"
	"github.com/oukeidos/tmxline/internal/logger"
	"github.com/oukeidos/tmxline/internal/progress"
	"github.com/oukeidos/tmxline/internal/tmx"
	"github.com/oukeidos/tmxline/internal/xmlstream"
	"golang.org/x/term"
)

// errLimitReached stops the drive loop from inside the emit path. It is the
// cooperative early-stop signal, not a failure.
var errLimitReached = errors.New("record limit reached")

// RunConvert executes a full streaming conversion. Input and output are
// opened here and released on every exit path; content-level faults are
// logged and survived, resource-level errors abort.
func RunConvert(ctx context.Context, cfg Config) (result ConvertResult, retErr error) {
	var notes []string
	cfg, notes = cfg.Normalize()
	for _, note := range notes {
		logger.Debug("Config normalized", "detail", note)
	}
	if err := cfg.Validate(); err != nil {
		return ConvertResult{}, fmt.Errorf("invalid configuration: %w", err)
	}

	absIn, err := filepath.Abs(cfg.InputPath)
	if err != nil {
		return ConvertResult{}, fmt.Errorf("failed to resolve input path: %w", err)
	}
	absOut, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		return ConvertResult{}, fmt.Errorf("failed to resolve output path: %w", err)
	}
	if absIn == absOut {
		return ConvertResult{}, fmt.Errorf("input and output files are the same (%s)", absIn)
	}
	if err := files.RejectSymlinkPath(cfg.OutputPath); err != nil {
		return ConvertResult{}, err
	}

	if _, err := os.Stat(cfg.OutputPath); err == nil {
		shouldOverwrite := cfg.Overwrite
		if !shouldOverwrite && cfg.OnConfirmOverwrite != nil {
			shouldOverwrite = cfg.OnConfirmOverwrite(cfg.OutputPath)
		}
		if !shouldOverwrite {
			logger.Info("Output file exists. Aborted by user.", "path", cfg.OutputPath)
			return ConvertResult{Status: ConvertStatusSkipped, OutputPath: cfg.OutputPath}, nil
		}
		logger.Info("Overwriting output file", "path", cfg.OutputPath)
	}

	in, err := os.Open(cfg.InputPath)
	if err != nil {
		return ConvertResult{Status: ConvertStatusFailure}, apperrors.Resource(cfg.InputPath, err)
	}
	defer in.Close()

	var totalBytes int64
	if info, err := in.Stat(); err == nil {
		totalBytes = info.Size()
	}

	out, err := os.Create(cfg.OutputPath)
	if err != nil {
		return ConvertResult{Status: ConvertStatusFailure}, apperrors.Resource(cfg.OutputPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = apperrors.Resource(cfg.OutputPath, cerr)
			result.Status = ConvertStatusFailure
		}
	}()

	runID := uuid.NewString()
	logger.Info("Conversion started",
		"run_id", runID,
		"source_lang", cfg.SourceLang, "target_lang", cfg.TargetLang,
		"size_bytes", totalBytes)

	reporter := progress.NewReporter(os.Stderr, progress.Options{
		Enabled:    term.IsTerminal(int(os.Stderr.Fd())),
		Silent:     cfg.Silent,
		TotalBytes: totalBytes,
	})

	result, retErr = convert(ctx, cfg, in, out, reporter)
	result.RunID = runID
	result.OutputPath = cfg.OutputPath

	switch {
	case retErr != nil:
		logger.Error("Conversion aborted", "run_id", runID, "records", result.Records, "error", retErr)
	case result.Status == ConvertStatusFailure:
		logger.Error("Conversion produced no usable records",
			"run_id", runID, "units_seen", result.UnitsSeen, "input", cfg.InputPath)
	default:
		logger.Info("Conversion finished",
			"run_id", runID,
			"records", result.Records,
			"units_seen", result.UnitsSeen,
			"limit_reached", result.LimitReached,
			"destination", cfg.OutputPath)
	}
	return result, retErr
}

// convert drives the event source into the assembler until the input is
// exhausted, the limit is reached, the context is canceled, or an I/O error
// occurs. It is separated from RunConvert so tests can supply in-memory
// readers and writers.
func convert(ctx context.Context, cfg Config, in io.Reader, out io.Writer, reporter *progress.Reporter) (ConvertResult, error) {
	counting := xmlstream.NewCountingReader(in)
	writer := jsonl.NewWriter(out)

	onFault := func(err error) {
		logger.Warn("Malformed content; continuing", "error", err)
	}

	binding := tmx.NewBinding(cfg.SourceLang, cfg.TargetLang)
	limitReached := false

	emit := func(rec jsonl.Record) error {
		if err := writer.Write(rec); err != nil {
			return apperrors.Resource(cfg.OutputPath, err)
		}
		n := writer.Lines()
		logger.Debug("Record emitted", "count", n, "source", rec.Source, "target", rec.Target)
		reporter.Update(n, counting.BytesRead(), rec)
		if cfg.Limit > 0 && n >= cfg.Limit {
			return errLimitReached
		}
		return nil
	}

	scanner := xmlstream.NewScanner(counting, onFault)
	asm := tmx.NewAssembler(binding, emit, onFault)

	makeResult := func(status ConvertStatus) ConvertResult {
		return ConvertResult{
			Status:       status,
			Records:      writer.Lines(),
			UnitsSeen:    asm.UnitsSeen(),
			BytesRead:    counting.BytesRead(),
			LimitReached: limitReached,
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			flushErr := writer.Flush()
			reporter.Final(writer.Lines(), counting.BytesRead())
			if flushErr != nil {
				return makeResult(ConvertStatusFailure), apperrors.Resource(cfg.OutputPath, flushErr)
			}
			return makeResult(ConvertStatusFailure), err
		}
		ev, err := scanner.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return makeResult(ConvertStatusFailure), apperrors.Resource(cfg.InputPath, err)
		}
		if err := asm.Feed(ev); err != nil {
			if errors.Is(err, errLimitReached) {
				limitReached = true
				break
			}
			return makeResult(ConvertStatusFailure), err
		}
	}

	if err := writer.Flush(); err != nil {
		return makeResult(ConvertStatusFailure), apperrors.Resource(cfg.OutputPath, err)
	}
	reporter.Final(writer.Lines(), counting.BytesRead())

	if writer.Lines() == 0 {
		// A fully scanned input with nothing usable is a failure for this
		// tool's contract, distinct from any I/O error.
		return makeResult(ConvertStatusFailure), apperrors.Empty(cfg.InputPath)
	}
	return makeResult(ConvertStatusSuccess), nil
}
