package main

import (
	"fmt"

	"github.com/oukeidos/tmxline/internal/dataset"
	"github.com/oukeidos/tmxline/internal/logger"
	"github.com/spf13/cobra"
)

type jsonlOptions struct {
	noValidate bool
	verbose    bool
}

func newJSONLCmd() *cobra.Command {
	opts := jsonlOptions{}
	cmd := &cobra.Command{
		Use:   "jsonl <input.json> <output.jsonl>",
		Short: "Flatten a JSON array of QA records to JSONL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				logger.Init(logger.LevelDebug, nil)
			}
			if err := ensureOutputDir(args[1]); err != nil {
				return err
			}
			count, err := dataset.ConvertArray(args[0], args[1], !opts.noValidate)
			if err != nil {
				return err
			}
			logger.Info("Conversion complete", "records", count, "destination", args[1])
			if count == 0 {
				return fmt.Errorf("no records written to %s", args[1])
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVar(&opts.noValidate, "no-validate", false, "Skip validation of JSON objects")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	return cmd
}
