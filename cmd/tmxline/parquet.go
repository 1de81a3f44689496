package main

import (
	"github.com/oukeidos/tmxline/internal/columnar"
	"github.com/oukeidos/tmxline/internal/logger"
	"github.com/spf13/cobra"
)

type parquetOptions struct {
	batchRows int
	verbose   bool
}

func newParquetCmd() *cobra.Command {
	opts := parquetOptions{}
	cmd := &cobra.Command{
		Use:   "parquet <input.jsonl> <output.parquet>",
		Short: "Convert JSONL translation records to Parquet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				logger.Init(logger.LevelDebug, nil)
			}
			if err := ensureOutputDir(args[1]); err != nil {
				return err
			}
			rows, err := columnar.Convert(args[0], args[1], opts.batchRows)
			if err != nil {
				return err
			}
			logger.Info("Conversion complete", "rows", rows, "destination", args[1])
			return nil
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().IntVar(&opts.batchRows, "batch-rows", columnar.DefaultBatchRows, "Rows per write batch")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	return cmd
}
