package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// FileStatus describes how git sees a secret output file
type FileStatus struct {
	Path    string
	IsRepo  bool
	Tracked bool
	Ignored bool
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()

	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	err := cmd.Run()

	// git check-ignore returns exit code 0 if file is ignored
	return err == nil
}

// CheckSecretFile inspects path, which need not exist yet.
func CheckSecretFile(path string) (*FileStatus, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	status := &FileStatus{Path: path}
	dir, name := filepath.Split(abs)
	if !IsGitRepo(dir) {
		return status, nil
	}
	status.IsRepo = true
	status.Tracked = IsTracked(dir, name)
	status.Ignored = IsIgnored(dir, name)
	return status, nil
}

// Warning returns a one-line warning for status, or "" when the file is safe
func Warning(status *FileStatus) string {
	switch {
	case status == nil || !status.IsRepo:
		return ""
	case status.Tracked:
		return fmt.Sprintf("warning: %s is tracked by git (run: git rm --cached %s)", status.Path, status.Path)
	case !status.Ignored:
		return fmt.Sprintf("warning: %s is inside a git repository but not in .gitignore", status.Path)
	}
	return ""
}
