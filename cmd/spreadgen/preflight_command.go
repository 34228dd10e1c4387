package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"spreadgen/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check binaries, directories, and services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			for _, result := range results {
				kind := statusOK
				switch {
				case !result.Passed && result.Optional:
					kind = statusWarn
				case !result.Passed:
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if cfg.Ownership.APIKey == "" {
				fmt.Fprintln(out, renderStatusLine("Ownership indexer", statusInfo, "no api key; use generate --tokens", colorize))
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return errors.New("preflight failed")
			}
			return nil
		},
	}
}
