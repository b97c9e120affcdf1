package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valentinclaes/claude-wrapped/internal/pipeline"
)

var renderFlags pathFlags

func init() {
	rootCmd.AddCommand(renderCmd)
	renderFlags.register(renderCmd, false, true, true)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render wrapped.html from previously written artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		renderFlags.apply(cmd)

		opts := pageOptions()
		opts.Year = 0 // the summary knows its own year
		path, err := pipeline.Render(cfg.Paths.AnalysisDir, cfg.Paths.OutputDir, opts, logger)
		if err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", path)
		return nil
	},
}
