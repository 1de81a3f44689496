package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oukeidos/tmxline/internal/cleanup"
	"github.com/oukeidos/tmxline/internal/files"
	"github.com/oukeidos/tmxline/internal/logger"
	"github.com/oukeidos/tmxline/internal/pipeline"
	"github.com/oukeidos/tmxline/internal/prompt"
	"github.com/spf13/cobra"
)

type convertOptions struct {
	sourceLang  string
	targetLang  string
	limit       int64
	silent      bool
	verbose     bool
	debug       bool
	yes         bool
	logFilePath string
}

func newConvertCmd() *cobra.Command {
	opts := convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert <input.tmx> <output.jsonl>",
		Short: "Convert a TMX corpus to JSONL translation records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				_ = cmd.Usage()
				return fmt.Errorf("input and output files are required")
			}
			return runConvert(cmd, args, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addConvertFlags(cmd, &opts)
	return cmd
}

func addConvertFlags(cmd *cobra.Command, opts *convertOptions) {
	env := loadEnvDefaults()
	cmd.Flags().StringVar(&opts.sourceLang, "source", env.SourceLang, "Source language code")
	cmd.Flags().StringVar(&opts.targetLang, "target", env.TargetLang, "Target language code")
	cmd.Flags().Int64Var(&opts.limit, "limit", 0, "Stop after this many valid records (0 = no limit)")
	cmd.Flags().BoolVar(&opts.silent, "silent", false, "Drop the latest-record preview from the progress line")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Emit per-record diagnostics")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Overwrite output file without asking")
	cmd.Flags().StringVar(&opts.logFilePath, "log-file", env.LogFile, "Path to save machine-readable JSONL logs")
}

func runConvert(cmd *cobra.Command, args []string, opts *convertOptions) error {
	if len(args) < 2 {
		return fmt.Errorf("input and output files are required")
	}
	if len(args) > 2 {
		fmt.Fprintf(os.Stderr, "Warning: expected 2 arguments but got %d. Did you forget quotes around file paths?\n", len(args))
		fmt.Fprintf(os.Stderr, "  Using input: %s\n", args[0])
		fmt.Fprintf(os.Stderr, "  Using output: %s\n", args[1])
	}
	if err := validateConvertPathExtensions(args[0], args[1]); err != nil {
		return err
	}

	logLevel := logger.LevelInfo
	if opts.verbose || opts.debug {
		logLevel = logger.LevelDebug
	}
	var logFileW io.Writer
	if opts.logFilePath != "" {
		if err := files.RejectSymlinkPath(opts.logFilePath); err != nil {
			return err
		}
		f, err := os.OpenFile(opts.logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register(f.Close)
		logFileW = f
	}
	logger.Init(logLevel, logFileW)

	startTime := time.Now()

	cfg := pipeline.Config{
		InputPath:  args[0],
		OutputPath: args[1],
		SourceLang: opts.sourceLang,
		TargetLang: opts.targetLang,
		Limit:      opts.limit,
		Silent:     opts.silent,
		Overwrite:  opts.yes,
		OnConfirmOverwrite: func(path string) bool {
			confirmed, err := prompt.DefaultConfirmer().ConfirmOverwrite(path, opts.yes)
			if err != nil {
				logger.Error("Overwrite confirmation failed", "error", err)
				return false
			}
			return confirmed
		},
	}

	ctx, stop := signalContext()
	defer stop()
	result, err := pipeline.RunConvert(ctx, cfg)

	// Always print stats (even on failed runs)
	printRunStats(result, time.Since(startTime))

	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("Conversion canceled", "error", err)
			return nil
		}
		return err
	}
	return nil
}

func printRunStats(result pipeline.ConvertResult, duration time.Duration) {
	fmt.Println("\n--- Execution Stats ---")
	fmt.Printf("Time: %s\n", duration)
	fmt.Printf("Status: %s\n", result.Status)
	fmt.Printf("Records: %d (units seen: %d)\n", result.Records, result.UnitsSeen)
	if result.LimitReached {
		fmt.Println("Stopped early: record limit reached")
	}
	if result.OutputPath != "" {
		fmt.Printf("Destination: %s\n", result.OutputPath)
	}
}

var supportedInputExtensions = map[string]struct{}{
	".tmx": {},
	".xml": {},
}

var supportedOutputExtensions = map[string]struct{}{
	".jsonl":  {},
	".ndjson": {},
}

func validateConvertPathExtensions(inputPath, outputPath string) error {
	if err := validateExtension("input", inputPath, supportedInputExtensions); err != nil {
		return err
	}
	return validateExtension("output", outputPath, supportedOutputExtensions)
}
