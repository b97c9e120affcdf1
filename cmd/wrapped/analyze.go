package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valentinclaes/claude-wrapped/internal/pipeline"
	"github.com/valentinclaes/claude-wrapped/internal/report"
)

var analyzeFlags pathFlags

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeFlags.register(analyzeCmd, true, true, false)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute statistics and write the JSON artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzeFlags.apply(cmd)

		a, err := pipeline.Analyze(cfg.Paths.RawDir, cfg.Year, logger)
		if err != nil {
			return err
		}
		if err := a.Write(cfg.Paths.AnalysisDir); err != nil {
			return err
		}
		logger.Info("analysis written", zap.String("dir", cfg.Paths.AnalysisDir))
		return report.WriteSummary(os.Stdout, a.Summary, cfg.AssistantName)
	},
}
