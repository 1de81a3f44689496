package main

import (
	"fmt"
	"os"

	"github.com/oukeidos/tmxline/internal/cleanup"
	"github.com/oukeidos/tmxline/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	convertOpts := convertOptions{}

	cmd := &cobra.Command{
		Use:   "tmxline",
		Short: "Streaming TMX to JSONL corpus converter",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if hasAnyFlagSet(cmd) {
					_ = cmd.Usage()
					return fmt.Errorf("input and output files are required")
				}
				return cmd.Help()
			}
			if isSubcommand(cmd, args[0]) {
				_ = cmd.Usage()
				return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return runConvert(cmd, args, &convertOpts)
		},
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	addConvertFlags(cmd, &convertOpts)

	cmd.AddCommand(
		newAboutCmd(),
		newConvertCmd(),
		newJSONLCmd(),
		newChatCmd(),
		newAlpacaCmd(),
		newParquetCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.Short = "Generate shell completion scripts"
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}

	return cmd
}

func hasAnyFlagSet(cmd *cobra.Command) bool {
	changed := false
	cmd.Flags().Visit(func(_ *pflag.Flag) {
		changed = true
	})
	return changed
}

func isSubcommand(cmd *cobra.Command, name string) bool {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}
