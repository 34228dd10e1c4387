package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spreadgen/internal/history"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect past generation runs",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsClearCommand(ctx))
	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var (
		limit    int
		statuses []string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := make([]history.Status, 0, len(statuses))
			for _, value := range statuses {
				status, ok := history.ParseStatus(value)
				if !ok {
					return fmt.Errorf("unknown status %q", value)
				}
				filters = append(filters, status)
			}
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit, filters...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprint(out, renderTable(
					[]string{"ID", "Started", "Cards", "Favorite", "Status", "Elapsed", "Size"},
					buildRunRows(runs),
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by status (running, completed, failed)")
	return cmd
}

func buildRunRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		elapsed := "-"
		if run.FinishedAt != nil {
			elapsed = formatDuration(run.Elapsed())
		}
		size := "-"
		if run.OutputBytes > 0 {
			size = humanize.Bytes(uint64(run.OutputBytes))
		}
		favorite := run.Favorite
		if favorite == "" {
			favorite = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			humanize.Time(run.CreatedAt),
			strconv.Itoa(run.CardCount),
			favorite,
			string(run.Status),
			elapsed,
			size,
		})
	}
	return rows
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run and its commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id < 1 {
				return fmt.Errorf("invalid run id %q", args[0])
			}
			return ctx.withHistory(func(store *history.Store) error {
				run, err := store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %d not found", id)
				}
				commands, err := store.Commands(cmd.Context(), id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader(fmt.Sprintf("Run %d", run.ID), colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Session", statusInfo, run.SessionID, colorize))
				if run.Owner != "" {
					fmt.Fprintln(out, renderStatusLine("Owner", statusInfo, run.Owner, colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Cards", statusInfo, strconv.Itoa(run.CardCount), colorize))
				fmt.Fprintln(out, renderStatusLine("Status", runStatusKind(run.Status), string(run.Status), colorize))
				if run.ErrorMessage != "" {
					fmt.Fprintln(out, renderStatusLine("Error", statusError, run.ErrorMessage, colorize))
				}
				if run.OutputPath != "" {
					fmt.Fprintln(out, renderStatusLine("Output", statusOK,
						fmt.Sprintf("%s (%s)", run.OutputPath, humanize.Bytes(uint64(run.OutputBytes))), colorize))
				}

				rows := make([][]string, 0, len(commands))
				for _, record := range commands {
					elapsed := "-"
					if record.Elapsed > 0 {
						elapsed = formatDuration(record.Elapsed)
					}
					rows = append(rows, []string{strconv.Itoa(record.Position + 1), record.Title, record.State, elapsed})
				}
				fmt.Fprint(out, renderTable([]string{"#", "Command", "State", "Elapsed"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func runStatusKind(status history.Status) statusKind {
	switch status {
	case history.StatusCompleted:
		return statusOK
	case history.StatusFailed:
		return statusError
	default:
		return statusWarn
	}
}

func newRunsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete finished runs from history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
				return nil
			})
		},
	}
}
