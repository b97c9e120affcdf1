// Package pipeline wires loading, analysis, rendering and the optional side
// effects of a run together.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/valentinclaes/claude-wrapped/internal/export"
	"github.com/valentinclaes/claude-wrapped/internal/history"
	"github.com/valentinclaes/claude-wrapped/internal/publish"
	"github.com/valentinclaes/claude-wrapped/internal/report"
	"github.com/valentinclaes/claude-wrapped/internal/stats"
	"github.com/valentinclaes/claude-wrapped/internal/topics"
	"github.com/valentinclaes/claude-wrapped/internal/wrapped"
)

// Analysis is everything computed from one export.
type Analysis struct {
	Stats    *stats.ConversationStats
	Topics   *topics.Breakdown
	Projects []stats.ProjectSummary
	Summary  *wrapped.Summary
}

// Analyze loads the export in rawDir and computes all statistics. Nothing is
// written.
func Analyze(rawDir string, year int, logger *zap.Logger) (*Analysis, error) {
	logger = orNop(logger)
	ex, err := export.Load(rawDir, year)
	if err != nil {
		return nil, err
	}
	logger.Info("export loaded",
		zap.String("dir", rawDir),
		zap.Int("year", year),
		zap.Int("conversations", len(ex.Conversations)),
		zap.Int("projects", len(ex.Projects)),
		zap.Int("memories", len(ex.Memories)))

	a := &Analysis{
		Stats:    stats.AnalyzeConversations(ex.Conversations),
		Topics:   topics.Classify(ex.Conversations),
		Projects: stats.AnalyzeProjects(ex.Projects),
	}
	a.Summary = wrapped.Build(wrapped.Input{
		Year:       year,
		Stats:      a.Stats,
		Topics:     a.Topics,
		Projects:   a.Projects,
		Memories:   len(ex.Memories),
		Highlights: topics.FindHighlights(ex.Conversations),
	})
	return a, nil
}

// Write stores the four JSON artifacts in dir.
func (a *Analysis) Write(dir string) error {
	artifacts := []struct {
		name string
		v    any
	}{
		{report.StatsFile, a.Stats},
		{report.TopicsFile, a.Topics},
		{report.ProjectsFile, a.Projects},
		{report.WrappedFile, a.Summary},
	}
	for _, art := range artifacts {
		if err := report.WriteJSON(filepath.Join(dir, art.name), art.v); err != nil {
			return fmt.Errorf("write %s: %w", art.name, err)
		}
	}
	return nil
}

// Render reads wrapped.json and conversation_stats.json from analysisDir and
// writes wrapped.html to outputDir. A missing stats file only leaves the
// charts empty. Returns the path of the written page.
func Render(analysisDir, outputDir string, opts report.Options, logger *zap.Logger) (string, error) {
	logger = orNop(logger)
	sum, err := report.ReadSummary(filepath.Join(analysisDir, report.WrappedFile))
	if err != nil {
		return "", fmt.Errorf("read summary: %w", err)
	}
	st, err := report.ReadStats(filepath.Join(analysisDir, report.StatsFile))
	if err != nil {
		logger.Warn("conversation stats unavailable, charts will be empty", zap.Error(err))
		st = nil
	}

	var page bytes.Buffer
	if err := report.RenderHTML(&page, sum, st, opts); err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, report.HTMLFile)
	if err := report.WriteFile(path, page.Bytes()); err != nil {
		return "", fmt.Errorf("write %s: %w", report.HTMLFile, err)
	}
	return path, nil
}

// Narrator writes narrative sections for a summary.
type Narrator interface {
	Narrate(ctx context.Context, sum *wrapped.Summary) ([]wrapped.Section, error)
}

// HistoryStore records runs.
type HistoryStore interface {
	Record(ctx context.Context, r history.Run) error
	Previous(ctx context.Context, year int) (history.Run, error)
	Close() error
}

// Notifier announces a finished report.
type Notifier interface {
	ReportReady(sum *wrapped.Summary, path string) (bool, error)
}

// PublishFunc commits and pushes the output directory.
type PublishFunc func(ctx context.Context, dir string, year int) (publish.Result, error)

// Runner performs a full run. Only the paths are required; every optional
// collaborator left nil is skipped.
type Runner struct {
	RawDir      string
	AnalysisDir string
	OutputDir   string
	Year        int
	Page        report.Options
	VaultDir    string // Obsidian vault for the Markdown note; empty skips it

	Narrator Narrator
	Notifier Notifier
	Publish  PublishFunc
	// OpenHistory is called only after the artifacts are written, so a
	// failed analysis never creates the history database.
	OpenHistory func() (HistoryStore, error)

	Logger *zap.Logger
	Now    func() time.Time
}

// Result is what a run produced.
type Result struct {
	Analysis *Analysis
	HTMLPath string
	NotePath string       // empty when no note was written
	Previous *history.Run // latest earlier run for the same year, if any
}

// Run analyzes the export, renders the page and writes all artifacts.
// Loading, analysis and rendering complete before anything is written, so a
// bad export leaves the output directories untouched. Failures in the
// optional steps are logged and do not fail the run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	logger := orNop(r.Logger)
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	a, err := Analyze(r.RawDir, r.Year, logger)
	if err != nil {
		return nil, err
	}

	if r.Narrator != nil {
		sections, err := r.Narrator.Narrate(ctx, a.Summary)
		if err != nil {
			logger.Warn("narration skipped", zap.Error(err))
		} else {
			a.Summary.Narrative = sections
		}
	}

	opts := r.Page
	if opts.Year == 0 {
		opts.Year = r.Year
	}
	var page bytes.Buffer
	if err := report.RenderHTML(&page, a.Summary, a.Stats, opts); err != nil {
		return nil, err
	}
	var note string
	if r.VaultDir != "" {
		if note, err = report.BuildMarkdown(a.Summary, a.Stats, opts.AssistantName); err != nil {
			return nil, err
		}
	}

	if err := a.Write(r.AnalysisDir); err != nil {
		return nil, err
	}
	htmlPath := filepath.Join(r.OutputDir, report.HTMLFile)
	if err := report.WriteFile(htmlPath, page.Bytes()); err != nil {
		return nil, fmt.Errorf("write %s: %w", report.HTMLFile, err)
	}
	logger.Info("report written",
		zap.String("analysis_dir", r.AnalysisDir),
		zap.String("html", htmlPath))

	res := &Result{Analysis: a, HTMLPath: htmlPath}
	if note != "" {
		notePath := filepath.Join(r.VaultDir, filepath.FromSlash(report.VaultFolder), report.NoteName(r.Year))
		if err := report.WriteFile(notePath, []byte(note)); err != nil {
			logger.Warn("vault note not written", zap.Error(err))
		} else {
			res.NotePath = notePath
			logger.Info("vault note written", zap.String("path", notePath))
		}
	}
	if r.OpenHistory != nil {
		store, err := r.OpenHistory()
		if err != nil {
			logger.Warn("run history disabled", zap.Error(err))
		} else {
			res.Previous = r.recordHistory(ctx, store, a.Summary, now(), logger)
			if err := store.Close(); err != nil {
				logger.Warn("close history", zap.Error(err))
			}
		}
	}
	if r.Publish != nil {
		pub, err := r.Publish(ctx, r.OutputDir, r.Year)
		switch {
		case err != nil:
			logger.Warn("publish skipped", zap.Error(err))
		case !pub.Committed:
			logger.Info("publish: report unchanged")
		default:
			logger.Info("report published",
				zap.String("commit", pub.Hash),
				zap.String("branch", pub.Branch),
				zap.Bool("pushed", pub.Pushed))
		}
	}
	if r.Notifier != nil {
		if _, err := r.Notifier.ReportReady(a.Summary, htmlPath); err != nil {
			logger.Warn("notification failed", zap.Error(err))
		}
	}
	return res, nil
}

// recordHistory stores the run and returns the run it replaced, if any.
func (r *Runner) recordHistory(ctx context.Context, store HistoryStore, sum *wrapped.Summary, at time.Time, logger *zap.Logger) *history.Run {
	var previous *history.Run
	prev, err := store.Previous(ctx, r.Year)
	switch {
	case err == nil:
		previous = &prev
		logger.Info("compared with previous run",
			zap.String("previous_run", prev.ID),
			zap.Int("conversations_delta", sum.HeadlineStats.TotalConversations-prev.Conversations),
			zap.Int("messages_delta", sum.HeadlineStats.TotalMessages-prev.Messages))
	case !errors.Is(err, history.ErrNotFound):
		logger.Warn("history lookup failed", zap.Error(err))
	}

	run := history.NewRun(sum, at)
	if err := store.Record(ctx, run); err != nil {
		logger.Warn("history not recorded", zap.Error(err))
	} else {
		logger.Debug("run recorded", zap.String("run_id", run.ID))
	}
	return previous
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
