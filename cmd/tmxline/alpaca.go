package main

import (
	"github.com/oukeidos/tmxline/internal/dataset"
	"github.com/spf13/cobra"
)

func newAlpacaCmd() *cobra.Command {
	opts := templateOptions{}
	cmd := &cobra.Command{
		Use:   "alpaca <input.json|input.jsonl> <output.jsonl>",
		Short: "Convert QA or Alpaca records to instruction template JSONL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(cmd, args, &opts, dataset.ConvertAlpaca)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addTemplateFlags(cmd, &opts, true)
	return cmd
}
