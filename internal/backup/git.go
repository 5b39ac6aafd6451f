package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const gitCommitMessage = "sitekeep: refresh site export"

// GitDestination keeps the sitekeep export as a tracked file in an existing
// local clone and pushes a commit whenever the export changes.
type GitDestination struct {
	repo   string
	file   string
	branch string
}

func NewGitDestination(repo, file, branch string) *GitDestination {
	return &GitDestination{repo: repo, file: file, branch: branch}
}

func (d *GitDestination) String() string {
	return fmt.Sprintf("git:%s@%s", filepath.Join(d.repo, d.file), d.branch)
}

// Write stores data at the configured path and pushes it. An unchanged
// export produces no commit.
func (d *GitDestination) Write(ctx context.Context, data []byte) error {
	if err := d.run(ctx, "checkout", d.branch); err != nil {
		return d.fail("switch branch", err)
	}
	// A branch that only exists locally has nothing to pull.
	_ = d.run(ctx, "pull", "--ff-only", "origin", d.branch)

	target := filepath.Join(d.repo, d.file)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return d.fail("create directory", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return d.fail("write file", err)
	}
	if err := d.run(ctx, "add", "--", d.file); err != nil {
		return d.fail("stage", err)
	}
	if d.run(ctx, "diff", "--cached", "--quiet", "--", d.file) == nil {
		return nil
	}
	if err := d.run(ctx, "commit", "-m", gitCommitMessage, "--", d.file); err != nil {
		return d.fail("commit", err)
	}
	if err := d.run(ctx, "push", "origin", d.branch); err != nil {
		return d.fail("push", err)
	}
	return nil
}

func (d *GitDestination) fail(step string, err error) error {
	return fmt.Errorf("sitekeep export to %s: %s: %w", d, step, err)
}

// run executes git inside the clone. Combined output is folded into the
// error so failures carry git's own explanation.
func (d *GitDestination) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.repo
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(out.String()); msg != "" {
			return fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return fmt.Errorf("git %s: %w", args[0], err)
	}
	return nil
}
