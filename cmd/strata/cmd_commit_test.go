package main

import (
	"strings"
	"testing"
)

func TestCommitCmd(t *testing.T) {
	r := seedRepo(t)
	stageFile(t, r, "main.go", "package main\n")

	out, err := runCmd(t, newCommitCmd(), "-m", "initial commit")
	if err != nil {
		t.Fatalf("commit: %v\noutput:\n%s", err, out)
	}
	if !strings.HasPrefix(out, "[main ") || !strings.Contains(out, "] initial commit") {
		t.Errorf("commit output = %q", out)
	}

	head, err := r.CurrentCommit()
	if err != nil || head == "" {
		t.Fatalf("CurrentCommit after commit: %q, %v", head, err)
	}
}

func TestCommitCmdRequiresMessage(t *testing.T) {
	r := seedRepo(t)
	stageFile(t, r, "a.txt", "a\n")

	out, err := runCmd(t, newCommitCmd())
	if err == nil {
		t.Fatalf("commit without message succeeded:\n%s", out)
	}
	if !strings.Contains(err.Error(), "commit message is required") {
		t.Errorf("error = %v", err)
	}
}

func TestCommitCmdEmptyIndex(t *testing.T) {
	seedRepo(t)

	_, err := runCmd(t, newCommitCmd(), "-m", "empty")
	if err == nil {
		t.Fatal("commit with empty index succeeded")
	}
}
