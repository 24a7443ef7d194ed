// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/formatflip/internal/journal"
	"github.com/pdiddy/formatflip/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List conversion runs recorded in the journal",
	Long: `History reads the SQLite journal written by runs that passed --journal
(or set journal in the config file) and lists the most recent runs.
Use --run with a run ID to list that run's files.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", journal.DefaultLimit, "maximum number of runs to list")
	historyCmd.Flags().String("run", "", "show the files of one run")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := viper.GetString("journal")
	if path == "" {
		return fmt.Errorf("no journal configured: pass --journal or set journal in the config file")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("journal %s: %w", path, err)
	}

	store, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runID, _ := cmd.Flags().GetString("run")
	if runID != "" {
		files, err := store.Files(ctx, runID)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no files recorded for run %s", runID)
		}
		return printFiles(os.Stdout, files)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.History(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs recorded.")
		return nil
	}
	return printRuns(os.Stdout, runs)
}

func printRuns(w io.Writer, runs []types.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tINPUT\tFORMAT\tWORKERS\tCONVERTED\tSKIPPED\tFAILED\tELAPSED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.InputPath, r.OutputExt,
			r.Workers, r.Converted, r.Skipped, r.Failed,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	return tw.Flush()
}

func printFiles(w io.Writer, files []types.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tOUTPUT\tOUTCOME\tDURATION\tCAMERA\tMESSAGE")
	for _, f := range files {
		camera := ""
		if f.Metadata != nil {
			camera = f.Metadata.Model
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Task.InputPath, f.Task.OutputPath(), f.Outcome, f.Duration, camera, f.Message)
	}
	return tw.Flush()
}
