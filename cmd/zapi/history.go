package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adoptai/zapi/internal/storage/sqlite"
)

var (
	historyDB    string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded analysis runs",
}

func openHistory() (*sqlite.Store, error) {
	path := historyDB
	if path == "" {
		path = cfg.History.DBPath
	}
	if path == "" {
		return nil, fmt.Errorf("no history database configured (--db or history.db_path)")
	}
	return sqlite.New(path)
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}
		for _, run := range runs {
			fmt.Printf("%s  %s  total=%d valid=%d skipped=%d  %s\n",
				run.CreatedAt.Format("2006-01-02 15:04:05"), run.ID,
				run.Stats.TotalEntries, run.Stats.ValidEntries,
				run.Stats.SkippedEntries, run.HARPath)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a recorded run's report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Print(run.Report)
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDB, "db", "", "sqlite history file (overrides config)")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to list")

	historyCmd.AddCommand(historyListCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
