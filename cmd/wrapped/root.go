package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valentinclaes/claude-wrapped/internal/config"
	"github.com/valentinclaes/claude-wrapped/internal/logging"
	"github.com/valentinclaes/claude-wrapped/internal/report"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wrapped",
	Short: "Year-in-review statistics for your Claude conversations",
	Long: `wrapped reads a Claude data export (conversations.json, projects.json and
memories.json), computes usage statistics for one calendar year and renders
them as JSON artifacts, a console recap and a self-contained HTML page.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		level := cfg.Log.Level
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		logger, err = logging.New(level, cfg.Log.Format)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "wrapped.yaml", "config file (YAML); missing file means defaults")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// pathFlags are shared by the commands that touch the export or artifacts.
type pathFlags struct {
	year        int
	rawDir      string
	analysisDir string
	outputDir   string
}

func (p *pathFlags) register(cmd *cobra.Command, raw, analysis, output bool) {
	if raw {
		cmd.Flags().IntVar(&p.year, "year", 0, "calendar year to analyze (default from config)")
		cmd.Flags().StringVar(&p.rawDir, "raw", "", "directory holding the export files")
	}
	if analysis {
		cmd.Flags().StringVar(&p.analysisDir, "analysis", "", "directory for the JSON artifacts")
	}
	if output {
		cmd.Flags().StringVar(&p.outputDir, "output", "", "directory for wrapped.html")
	}
}

// apply overlays explicitly set flags on the loaded config.
func (p *pathFlags) apply(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("year") {
		cfg.Year = p.year
	}
	if flags.Changed("raw") {
		cfg.Paths.RawDir = p.rawDir
	}
	if flags.Changed("analysis") {
		cfg.Paths.AnalysisDir = p.analysisDir
	}
	if flags.Changed("output") {
		cfg.Paths.OutputDir = p.outputDir
	}
}

func pageOptions() report.Options {
	return report.Options{
		Owner:         cfg.Owner,
		AssistantName: cfg.AssistantName,
		Year:          cfg.Year,
	}
}
