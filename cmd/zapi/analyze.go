package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/adoptai/zapi/internal/analysis"
	"github.com/adoptai/zapi/internal/storage/sqlite"
	"github.com/adoptai/zapi/internal/telemetry"
)

var (
	analyzeFiltered bool
	analyzeOutput   string
	analyzeHistory  string
	analyzeTrace    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <capture.har>",
	Short: "Classify a capture and estimate documentation cost",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]
		if analyzeOutput != "" {
			analyzeFiltered = true
		}

		if analyzeTrace {
			shutdown, err := telemetry.Init("zapi", logger)
			if err != nil {
				return err
			}
			defer shutdown(ctx)
		}

		analyzer := analysis.NewAnalyzer(cfg, logger)
		result, err := analyzer.AnalyzeFile(ctx, path, analyzeFiltered, analyzeOutput)
		if err != nil {
			return err
		}

		fmt.Print(result.Report)
		if result.FilteredPath != "" {
			fmt.Printf("\nFiltered capture:   %s\n", result.FilteredPath)
		}

		dbPath := analyzeHistory
		if dbPath == "" {
			dbPath = cfg.History.DBPath
		}
		if dbPath == "" {
			return nil
		}

		store, err := sqlite.New(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		run := &sqlite.Run{
			ID:           uuid.NewString(),
			HARPath:      path,
			FilteredPath: result.FilteredPath,
			Stats:        result.Stats,
			Report:       result.Report,
		}
		if err := store.SaveRun(ctx, run); err != nil {
			return err
		}
		logger.Info("run recorded", slog.String("id", run.ID), slog.String("db", dbPath))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeFiltered, "filtered", false, "write the API-relevant subset next to the input")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "filtered output path (implies --filtered)")
	analyzeCmd.Flags().StringVar(&analyzeHistory, "history-db", "", "sqlite file to record this run in")
	analyzeCmd.Flags().BoolVar(&analyzeTrace, "trace", false, "emit OpenTelemetry spans to stdout")

	rootCmd.AddCommand(analyzeCmd)
}
