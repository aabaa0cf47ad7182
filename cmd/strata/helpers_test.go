package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/object"
	"github.com/strata-vcs/strata/pkg/repo"
)

// seedRepo initializes a repository in a temp dir and chdirs into it
// so commands opening "." find it.
func seedRepo(t *testing.T) *repo.Repo {
	t.Helper()
	dir := t.TempDir()
	r, err := repo.Init(dir)
	if err != nil {
		t.Fatalf("repo.Init: %v", err)
	}
	chdir(t, dir)
	return r
}

// chdir mirrors t.Chdir (Go 1.24+) for older toolchains: change into dir
// and restore the previous working directory on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func stageFile(t *testing.T, r *repo.Repo, name, content string) {
	t.Helper()
	path := filepath.Join(r.RootDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := r.Add([]string{name}); err != nil {
		t.Fatalf("Add(%s): %v", name, err)
	}
}

func commitStaged(t *testing.T, r *repo.Repo, message string) object.Hash {
	t.Helper()
	h, err := r.Commit(message, repo.CommitOptions{
		AuthorName:  "Test User",
		AuthorEmail: "test@example.com",
	})
	if err != nil {
		t.Fatalf("Commit(%q): %v", message, err)
	}
	return h
}

// runCmd executes a command with captured output.
func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		// nil would make cobra fall back to os.Args.
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
