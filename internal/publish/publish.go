// Package publish commits a rendered report into the git repository that
// contains it and pushes it upstream.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	lockName    = "wrapped-publish.lock"
	lockTimeout = 5 * time.Minute
	syncTimeout = 30 * time.Second
)

var (
	// ErrNotRepo is returned when the directory is not inside a git work tree.
	ErrNotRepo = errors.New("publish: not inside a git repository")
	// ErrLocked is returned while another publish holds the lock.
	ErrLocked = errors.New("publish: another publish is in progress")
)

// Result describes what a publish did.
type Result struct {
	Root      string // repository root
	Committed bool
	Pushed    bool
	Branch    string
	Hash      string // short HEAD after the commit
}

// CommitMessage is the message used for report commits.
func CommitMessage(year int) string {
	if year <= 0 {
		return "wrapped: publish report"
	}
	return fmt.Sprintf("wrapped: publish report %d", year)
}

// Publish stages dir, commits it when anything changed and pushes. A
// rejected push is retried once after rebasing onto the remote; a rebase
// conflict is aborted so the work tree is left clean. Push failures are
// reported in Result.Pushed, not as an error.
func Publish(ctx context.Context, dir string, year int) (Result, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Result{}, err
	}
	root := findGitRoot(abs)
	if root == "" {
		return Result{}, ErrNotRepo
	}
	res := Result{Root: root}

	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	// .git is a file in linked worktrees and submodules
	gitDir, err := git(ctx, root, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrNotRepo, err)
	}
	lockPath := filepath.Join(gitDir, lockName)
	if !acquireLock(lockPath) {
		return res, ErrLocked
	}
	defer releaseLock(lockPath)

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return res, err
	}
	if _, err := git(ctx, root, "add", "-A", "--", rel); err != nil {
		return res, fmt.Errorf("stage %s: %w", rel, err)
	}
	// exit 0 means nothing staged
	if _, err := git(ctx, root, "diff", "--cached", "--quiet", "--", rel); err == nil {
		return res, nil
	}
	if _, err := git(ctx, root, "commit", "-m", CommitMessage(year), "--", rel); err != nil {
		return res, fmt.Errorf("commit: %w", err)
	}
	res.Committed = true
	res.Branch, _ = git(ctx, root, "rev-parse", "--abbrev-ref", "HEAD")
	res.Hash, _ = git(ctx, root, "rev-parse", "--short", "HEAD")

	res.Pushed = push(ctx, root)
	return res, nil
}

func push(ctx context.Context, root string) bool {
	if _, err := git(ctx, root, "push"); err == nil {
		return true
	}
	if _, err := git(ctx, root, "pull", "--rebase"); err != nil {
		git(ctx, root, "rebase", "--abort")
		return false
	}
	_, err := git(ctx, root, "push")
	return err == nil
}

// findGitRoot walks up from dir to the first directory holding .git.
func findGitRoot(dir string) string {
	dir = filepath.Clean(dir)
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func acquireLock(path string) bool {
	if info, err := os.Stat(path); err == nil && time.Since(info.ModTime()) > lockTimeout {
		os.Remove(path)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

func releaseLock(path string) {
	os.Remove(path)
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
