// Package report writes the analysis artifacts and renders them as HTML and
// as a plain-text recap.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/valentinclaes/claude-wrapped/internal/stats"
	"github.com/valentinclaes/claude-wrapped/internal/wrapped"
)

// Artifact file names.
const (
	StatsFile    = "conversation_stats.json"
	TopicsFile   = "topics.json"
	ProjectsFile = "projects.json"
	WrappedFile  = "wrapped.json"
	HTMLFile     = "wrapped.html"
)

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	return writeAtomic(path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
		}
		return nil
	})
}

// WriteFile writes data to path.
func WriteFile(path string, data []byte) error {
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// writeAtomic writes to a temporary name first and renames it into place,
// so readers never see a partial file.
func writeAtomic(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// ReadStats reads a conversation_stats.json artifact.
func ReadStats(path string) (*stats.ConversationStats, error) {
	var s stats.ConversationStats
	if err := readJSON(path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadSummary reads a wrapped.json artifact. Sections missing from the file
// are left at their zero value.
func ReadSummary(path string) (*wrapped.Summary, error) {
	var s wrapped.Summary
	if err := readJSON(path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
