package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/valentinclaes/claude-wrapped/internal/history"
	"github.com/valentinclaes/claude-wrapped/internal/narrate"
	"github.com/valentinclaes/claude-wrapped/internal/notify"
	"github.com/valentinclaes/claude-wrapped/internal/pipeline"
	"github.com/valentinclaes/claude-wrapped/internal/publish"
	"github.com/valentinclaes/claude-wrapped/internal/report"
)

var (
	runFlags   pathFlags
	runCopy    bool
	runNarrate bool
	runPublish bool
	runNotify  bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	runFlags.register(runCmd, true, true, true)
	runCmd.Flags().BoolVar(&runCopy, "copy", false, "copy the text recap to the clipboard")
	runCmd.Flags().BoolVar(&runNarrate, "narrate", false, "ask the configured chat model for a closing narrative")
	runCmd.Flags().BoolVar(&runPublish, "publish", false, "commit and push the report if the output dir is in a git repo")
	runCmd.Flags().BoolVar(&runNotify, "notify", false, "show a desktop notification when done")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze the export and render the report in one go",
	RunE: func(cmd *cobra.Command, args []string) error {
		runFlags.apply(cmd)
		flags := cmd.Flags()
		if flags.Changed("narrate") {
			cfg.Narrate.Enabled = runNarrate
		}
		if flags.Changed("publish") {
			cfg.Publish.GitAutoPush = runPublish
		}
		if flags.Changed("notify") {
			cfg.Notify.Enabled = runNotify
		}

		r := &pipeline.Runner{
			RawDir:      cfg.Paths.RawDir,
			AnalysisDir: cfg.Paths.AnalysisDir,
			OutputDir:   cfg.Paths.OutputDir,
			Year:        cfg.Year,
			Page:        pageOptions(),
			VaultDir:    cfg.Obsidian.VaultPath,
			Logger:      logger,
		}

		if cfg.History.Enabled {
			driver, dsn := cfg.History.Driver, cfg.History.DSN
			r.OpenHistory = func() (pipeline.HistoryStore, error) {
				store, err := history.Open(driver, dsn)
				if err != nil {
					return nil, err
				}
				return store, nil
			}
		}
		if cfg.Narrate.Enabled {
			if cfg.OpenAI.APIKey == "" && cfg.OpenAI.BaseURL == "" {
				logger.Warn("narration needs openai.api_key or OPENAI_API_KEY")
			} else {
				r.Narrator = narrate.New(narrate.Options{
					APIKey:    cfg.OpenAI.APIKey,
					BaseURL:   cfg.OpenAI.BaseURL,
					Model:     cfg.OpenAI.Model,
					MaxTokens: cfg.OpenAI.MaxTokens,
				}, logger)
			}
		}
		if cfg.Publish.GitAutoPush {
			r.Publish = publish.Publish
		}
		if cfg.Notify.Enabled {
			r.Notifier = notify.New(cfg.Notify.SkipWhenFocused, logger)
		}

		res, err := r.Run(cmd.Context())
		if err != nil {
			return err
		}

		var recap strings.Builder
		if err := report.WriteSummary(&recap, res.Analysis.Summary, cfg.AssistantName); err != nil {
			return err
		}
		if prev := res.Previous; prev != nil {
			delta := res.Analysis.Summary.HeadlineStats.TotalConversations - prev.Conversations
			fmt.Fprintf(&recap, "Since your last run (%s): %+d conversations\n", humanize.Time(prev.CreatedAt), delta)
		}
		fmt.Print(recap.String())
		fmt.Printf("\nReport written to %s\n", res.HTMLPath)
		if res.NotePath != "" {
			fmt.Printf("Vault note written to %s\n", res.NotePath)
		}

		if runCopy {
			if err := clipboard.WriteAll(recap.String()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not copy to clipboard: %v\n", err)
			} else {
				fmt.Println("Recap copied to clipboard!")
			}
		}
		return nil
	},
}
