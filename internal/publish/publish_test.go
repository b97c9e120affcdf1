package publish

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func run(t *testing.T, dir, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("%s %v failed: %v\n%s", name, args, err, out)
	}
	return string(out)
}

// cloneRepo clones bare into path and configures git user identity.
func cloneRepo(t *testing.T, bare, path string) {
	t.Helper()
	run(t, "", "git", "clone", bare, path)
	run(t, path, "git", "config", "user.email", "test@test.com")
	run(t, path, "git", "config", "user.name", "Test")
}

func initBareAndClone(t *testing.T) (bare, clone string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	bare = filepath.Join(t.TempDir(), "bare.git")
	clone = filepath.Join(t.TempDir(), "work")

	run(t, "", "git", "init", "--bare", bare)
	cloneRepo(t, bare, clone)

	os.WriteFile(filepath.Join(clone, "README.md"), []byte("reports"), 0644)
	run(t, clone, "git", "add", "-A")
	run(t, clone, "git", "commit", "-m", "initial")
	run(t, clone, "git", "push", "-u", "origin", "HEAD")
	return bare, clone
}

func writeReport(t *testing.T, dir, body string) {
	t.Helper()
	os.MkdirAll(dir, 0755)
	if err := os.WriteFile(filepath.Join(dir, "wrapped.html"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCommitMessage(t *testing.T) {
	if got := CommitMessage(2025); got != "wrapped: publish report 2025" {
		t.Errorf("got %q", got)
	}
	if got := CommitMessage(0); got != "wrapped: publish report" {
		t.Errorf("got %q", got)
	}
}

func TestFindGitRoot(t *testing.T) {
	dir := t.TempDir()
	os.Mkdir(filepath.Join(dir, ".git"), 0755)
	if got := findGitRoot(dir); got != filepath.Clean(dir) {
		t.Errorf("expected %q, got %q", dir, got)
	}

	sub := filepath.Join(dir, "output", "2025")
	os.MkdirAll(sub, 0755)
	if got := findGitRoot(sub); got != filepath.Clean(dir) {
		t.Errorf("expected %q, got %q", dir, got)
	}

	if got := findGitRoot(t.TempDir()); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestPublish_NotRepo(t *testing.T) {
	if _, err := Publish(context.Background(), t.TempDir(), 2025); !errors.Is(err, ErrNotRepo) {
		t.Errorf("got %v, want ErrNotRepo", err)
	}
}

func TestPublish_CommitsAndPushes(t *testing.T) {
	bare, clone := initBareAndClone(t)
	out := filepath.Join(clone, "output")
	writeReport(t, out, "<html>2025</html>")
	os.WriteFile(filepath.Join(clone, "scratch.txt"), []byte("not a report"), 0644)

	res, err := Publish(context.Background(), out, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Committed || !res.Pushed {
		t.Errorf("got %+v", res)
	}
	if res.Hash == "" || res.Branch == "" {
		t.Errorf("expected branch and hash, got %+v", res)
	}

	if got := run(t, "", "git", "-C", bare, "log", "--oneline", "-1"); !strings.Contains(got, "wrapped: publish report 2025") {
		t.Errorf("expected pushed commit in bare, got: %s", got)
	}
	files := run(t, "", "git", "-C", clone, "show", "--name-only", "--format=", "HEAD")
	if !strings.Contains(files, "output/wrapped.html") || strings.Contains(files, "scratch.txt") {
		t.Errorf("commit should contain only the report, got:\n%s", files)
	}
	if _, err := os.Stat(filepath.Join(clone, ".git", lockName)); !os.IsNotExist(err) {
		t.Error("lock file left behind")
	}
}

func TestPublish_NothingToCommit(t *testing.T) {
	_, clone := initBareAndClone(t)
	out := filepath.Join(clone, "output")
	writeReport(t, out, "<html></html>")

	if _, err := Publish(context.Background(), out, 2025); err != nil {
		t.Fatal(err)
	}
	res, err := Publish(context.Background(), out, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if res.Committed {
		t.Error("second publish with no changes should not commit")
	}
	if got := strings.TrimSpace(run(t, "", "git", "-C", clone, "rev-list", "--count", "HEAD")); got != "2" {
		t.Errorf("expected 2 commits, got %s", got)
	}
}

func TestPublish_Locked(t *testing.T) {
	_, clone := initBareAndClone(t)
	lockPath := filepath.Join(clone, ".git", lockName)
	if !acquireLock(lockPath) {
		t.Fatal("acquire failed")
	}
	defer releaseLock(lockPath)

	writeReport(t, filepath.Join(clone, "output"), "x")
	if _, err := Publish(context.Background(), filepath.Join(clone, "output"), 2025); !errors.Is(err, ErrLocked) {
		t.Errorf("got %v, want ErrLocked", err)
	}
}

func TestPublish_PushRejectedThenRecovered(t *testing.T) {
	bare, clone1 := initBareAndClone(t)

	clone2 := filepath.Join(t.TempDir(), "device_b")
	cloneRepo(t, bare, clone2)

	// clone1 moves ahead after clone2 was cloned
	os.WriteFile(filepath.Join(clone1, "notes.md"), []byte("device A"), 0644)
	run(t, clone1, "git", "add", "-A")
	run(t, clone1, "git", "commit", "-m", "device A commit")
	run(t, clone1, "git", "push")

	writeReport(t, filepath.Join(clone2, "output"), "<html>b</html>")
	res, err := Publish(context.Background(), filepath.Join(clone2, "output"), 2025)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Pushed {
		t.Errorf("expected push after rebase, got %+v", res)
	}

	log := run(t, "", "git", "-C", bare, "log", "--oneline")
	if !strings.Contains(log, "wrapped: publish report 2025") || !strings.Contains(log, "device A commit") {
		t.Errorf("expected both commits in bare, got:\n%s", log)
	}
}

func TestPublish_RebaseConflictAbortsCleanly(t *testing.T) {
	bare, clone1 := initBareAndClone(t)
	writeReport(t, filepath.Join(clone1, "output"), "original\n")
	run(t, clone1, "git", "add", "-A")
	run(t, clone1, "git", "commit", "-m", "first report")
	run(t, clone1, "git", "push")

	clone2 := filepath.Join(t.TempDir(), "device_b")
	cloneRepo(t, bare, clone2)

	writeReport(t, filepath.Join(clone1, "output"), "device A\n")
	run(t, clone1, "git", "add", "-A")
	run(t, clone1, "git", "commit", "-m", "device A report")
	run(t, clone1, "git", "push")

	writeReport(t, filepath.Join(clone2, "output"), "device B\n")
	res, err := Publish(context.Background(), filepath.Join(clone2, "output"), 2025)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Committed || res.Pushed {
		t.Errorf("expected local commit without push, got %+v", res)
	}
	for _, marker := range []string{"REBASE_HEAD", "MERGE_HEAD", "rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(clone2, ".git", marker)); err == nil {
			t.Errorf("%s left behind after aborted rebase", marker)
		}
	}
}

func TestAcquireLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	if !acquireLock(lockPath) {
		t.Fatal("first acquire should succeed")
	}
	if acquireLock(lockPath) {
		t.Fatal("second acquire should fail while lock held")
	}
	releaseLock(lockPath)
	if !acquireLock(lockPath) {
		t.Fatal("acquire after release should succeed")
	}
	releaseLock(lockPath)
}

func TestAcquireLock_StaleRemoval(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")
	os.WriteFile(lockPath, []byte{}, 0644)
	old := time.Now().Add(-(lockTimeout + time.Minute))
	os.Chtimes(lockPath, old, old)

	if !acquireLock(lockPath) {
		t.Fatal("should acquire after removing stale lock")
	}
	releaseLock(lockPath)
}

func TestPublish_LinkedWorktree(t *testing.T) {
	bare, clone := initBareAndClone(t)
	wt := filepath.Join(t.TempDir(), "wt")
	run(t, clone, "git", "worktree", "add", "-b", "reports", wt)
	if info, err := os.Stat(filepath.Join(wt, ".git")); err != nil || info.IsDir() {
		t.Fatalf("expected .git file in linked worktree, got %v %v", info, err)
	}
	run(t, wt, "git", "config", "push.autoSetupRemote", "true")

	out := filepath.Join(wt, "output")
	writeReport(t, out, "<html>worktree</html>")
	res, err := Publish(context.Background(), out, 2025)
	if err != nil {
		t.Fatalf("publish from linked worktree: %v", err)
	}
	if !res.Committed || res.Branch != "reports" {
		t.Errorf("got %+v", res)
	}
	// push.autoSetupRemote needs git 2.37
	if res.Pushed {
		if got := run(t, "", "git", "-C", bare, "log", "--oneline", "-1", "reports"); !strings.Contains(got, "wrapped: publish report 2025") {
			t.Errorf("expected pushed commit on reports branch, got: %s", got)
		}
	}
	gitDir := strings.TrimSpace(run(t, wt, "git", "rev-parse", "--absolute-git-dir"))
	if _, err := os.Stat(filepath.Join(gitDir, lockName)); !os.IsNotExist(err) {
		t.Error("lock file left behind")
	}
}
