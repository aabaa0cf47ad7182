package repo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/denormal/go-gitignore"
)

// IgnoreFileName is the per-repository ignore file, gitignore syntax.
const IgnoreFileName = ".strataignore"

// alwaysIgnored covers paths that must never be staged regardless of the
// repository's ignore file.
var alwaysIgnored = []string{
	".strata/**",
	".git/**",
}

// IgnoreChecker answers whether a repo-relative path should be ignored.
// Patterns come from .strataignore at the repository root, stacked on the
// built-in .strata/ and .git/ rules; negation is supported.
type IgnoreChecker struct {
	root    string
	matcher gitignore.GitIgnore
}

// NewIgnoreChecker compiles the ignore rules for the given repository root.
func NewIgnoreChecker(repoRoot string) *IgnoreChecker {
	patterns := make([]string, len(alwaysIgnored))
	copy(patterns, alwaysIgnored)

	if content, err := os.ReadFile(filepath.Join(repoRoot, IgnoreFileName)); err == nil {
		for _, line := range strings.Split(string(content), "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			// Directory patterns match everything beneath them.
			if strings.HasSuffix(trimmed, "/") {
				trimmed += "**"
			}
			patterns = append(patterns, trimmed)
		}
	}

	matcher := gitignore.New(
		strings.NewReader(strings.Join(patterns, "\n")),
		repoRoot,
		func(gitignore.Error) bool { return false },
	)
	return &IgnoreChecker{root: repoRoot, matcher: matcher}
}

// IsIgnored reports whether the repo-relative (forward-slash) path is
// ignored. Last matching pattern wins, so negated patterns re-include.
// The decision depends only on the path and the compiled rules, never on
// the process working directory.
func (ic *IgnoreChecker) IsIgnored(path string) bool {
	if ic.matcher == nil {
		return false
	}
	rel := filepath.ToSlash(path)

	// The library's Match resolves paths against the working directory;
	// Relative matches the already repo-relative path directly. It needs
	// to know whether the path is a directory, so stat under the root.
	isDir := false
	if info, err := os.Stat(filepath.Join(ic.root, filepath.FromSlash(rel))); err == nil {
		isDir = info.IsDir()
	}

	match := ic.matcher.Relative(rel, isDir)
	if match == nil {
		return false
	}
	return match.Ignore()
}
