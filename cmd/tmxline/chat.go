package main

import (
	"fmt"

	"github.com/oukeidos/tmxline/internal/dataset"
	"github.com/oukeidos/tmxline/internal/logger"
	"github.com/spf13/cobra"
)

type templateOptions struct {
	noReasoning     bool
	validationSplit float64
	validationOut   string
	randomSeed      int64
	systemPrompt    string
	verbose         bool
}

func (o *templateOptions) datasetOptions(cmd *cobra.Command) dataset.TemplateOptions {
	opts := dataset.TemplateOptions{
		IncludeReasoning: !o.noReasoning,
		SystemPrompt:     o.systemPrompt,
		Split:            dataset.SplitOptions{Fraction: o.validationSplit},
	}
	if cmd.Flags().Changed("random-seed") {
		seed := o.randomSeed
		opts.Split.Seed = &seed
	}
	return opts
}

func addTemplateFlags(cmd *cobra.Command, opts *templateOptions, withSystemPrompt bool) {
	cmd.Flags().BoolVar(&opts.noReasoning, "no-reasoning", false, "Exclude reasoning content from the assistant output")
	cmd.Flags().Float64Var(&opts.validationSplit, "validation-split", 0, "Fraction of data to hold out for validation (0.0 to 1.0)")
	cmd.Flags().StringVar(&opts.validationOut, "validation-output", "", "Output JSONL file path for validation data")
	cmd.Flags().Int64Var(&opts.randomSeed, "random-seed", 0, "Random seed for reproducible validation splits")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	if withSystemPrompt {
		cmd.Flags().StringVar(&opts.systemPrompt, "system-prompt", "", "Custom system prompt")
	}
}

func newChatCmd() *cobra.Command {
	opts := templateOptions{}
	cmd := &cobra.Command{
		Use:   "chat <input.json> <output.jsonl>",
		Short: "Convert QA records to chat-message template JSONL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(cmd, args, &opts, dataset.ConvertChat)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addTemplateFlags(cmd, &opts, false)
	return cmd
}

type templateConvertFunc func(inputPath, outputPath, valOutputPath string, o dataset.TemplateOptions) (int, int, error)

func runTemplate(cmd *cobra.Command, args []string, opts *templateOptions, convert templateConvertFunc) error {
	if opts.verbose {
		logger.Init(logger.LevelDebug, nil)
	}
	if err := ensureOutputDir(args[1]); err != nil {
		return err
	}
	if opts.validationOut != "" {
		if err := ensureOutputDir(opts.validationOut); err != nil {
			return err
		}
	}

	trainCount, valCount, err := convert(args[0], args[1], opts.validationOut, opts.datasetOptions(cmd))
	if err != nil {
		return err
	}
	logger.Info("Conversion complete", "train_records", trainCount, "destination", args[1])
	if opts.validationSplit > 0 {
		logger.Info("Validation set written", "validation_records", valCount, "destination", opts.validationOut)
	}
	if trainCount == 0 {
		return fmt.Errorf("no records written to %s", args[1])
	}
	return nil
}
