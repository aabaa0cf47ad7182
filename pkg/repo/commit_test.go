package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// helper: initTestRepo creates a repository in a temp dir.
func initTestRepo(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

// helper: writeAndAdd writes a working-tree file and stages it.
func writeAndAdd(t *testing.T, r *Repo, name string, content []byte) {
	t.Helper()
	abs := filepath.Join(r.RootDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(abs, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := r.Add([]string{name}); err != nil {
		t.Fatalf("Add(%s): %v", name, err)
	}
}

// helper: initRepoWithFile creates a temp repo, writes a file, and stages it.
func initRepoWithFile(t *testing.T, name string, content []byte) *Repo {
	t.Helper()
	r := initTestRepo(t)
	writeAndAdd(t, r, name, content)
	return r
}

func testAuthor() CommitOptions {
	return CommitOptions{AuthorName: "Test User", AuthorEmail: "test@example.com"}
}

// helper: mustCommit stages nothing extra and commits.
func mustCommit(t *testing.T, r *Repo, message string) string {
	t.Helper()
	h, err := r.Commit(message, testAuthor())
	if err != nil {
		t.Fatalf("Commit(%q): %v", message, err)
	}
	return string(h)
}

func TestCommit_CreatesObject(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))

	h, err := r.Commit("initial commit", testAuthor())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if h == "" {
		t.Fatal("Commit returned empty hash")
	}

	c, err := r.Store.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit(%s): %v", h, err)
	}
	if c.Message != "initial commit" {
		t.Errorf("Message = %q, want %q", c.Message, "initial commit")
	}
	if c.Author.Name != "Test User" || c.Author.Email != "test@example.com" {
		t.Errorf("Author = %+v", c.Author)
	}
	if c.TreeHash == "" {
		t.Error("TreeHash is empty")
	}
	if c.Author.Timestamp == 0 {
		t.Error("Timestamp is zero")
	}
	if len(c.Parents) != 0 {
		t.Errorf("first commit should have no parents, got %d", len(c.Parents))
	}
}

func TestCommit_UpdatesHEAD(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))

	h, err := r.Commit("initial commit", testAuthor())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	headHash, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef(HEAD): %v", err)
	}
	if headHash != h {
		t.Errorf("HEAD = %q, want %q", headHash, h)
	}
}

func TestCommit_SecondHasParent(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("v1\n"))

	h1, err := r.Commit("first commit", testAuthor())
	if err != nil {
		t.Fatalf("first Commit: %v", err)
	}

	writeAndAdd(t, r, "main.go", []byte("v2\n"))

	h2, err := r.Commit("second commit", testAuthor())
	if err != nil {
		t.Fatalf("second Commit: %v", err)
	}

	c2, err := r.Store.ReadCommit(h2)
	if err != nil {
		t.Fatalf("ReadCommit(%s): %v", h2, err)
	}
	if len(c2.Parents) != 1 {
		t.Fatalf("second commit parents = %d, want 1", len(c2.Parents))
	}
	if c2.Parents[0] != h1 {
		t.Errorf("second commit parent = %q, want %q", c2.Parents[0], h1)
	}
}

func TestCommit_ClearsIndex(t *testing.T) {
	r := initRepoWithFile(t, "a.txt", []byte("content\n"))

	if _, err := r.Commit("commit", testAuthor()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	idx, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if len(idx.Entries) != 0 {
		t.Errorf("index not cleared after commit: %d entries", len(idx.Entries))
	}

	// Nothing staged now, so a second commit must be refused.
	_, err = r.Commit("empty", testAuthor())
	if !errors.Is(err, ErrState) {
		t.Errorf("commit with empty index: got %v, want ErrState", err)
	}
}

func TestCommit_ValidationBeforeMutation(t *testing.T) {
	r := initRepoWithFile(t, "a.txt", []byte("content\n"))

	cases := []struct {
		name    string
		message string
		opts    CommitOptions
	}{
		{"empty message", "", testAuthor()},
		{"whitespace message", "   \n", testAuthor()},
		{"missing email at", "msg", CommitOptions{AuthorName: "A", AuthorEmail: "not-an-email"}},
	}
	for _, tc := range cases {
		_, err := r.Commit(tc.message, tc.opts)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: got %v, want ErrValidation", tc.name, err)
		}
	}

	// No ref must have moved.
	if _, err := r.ResolveRef("HEAD"); !errors.Is(err, ErrNotFound) {
		t.Errorf("HEAD should still be unborn, got %v", err)
	}
	idx, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if len(idx.Entries) != 1 {
		t.Errorf("index entries = %d, want 1 (unchanged)", len(idx.Entries))
	}
}

func TestCommit_RefusesStagedConflicts(t *testing.T) {
	r := initRepoWithFile(t, "a.txt", []byte("content\n"))

	idx, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	idx.Metadata["a.txt"].Stage = 2
	if err := r.SaveIndex(idx); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}

	_, err = r.Commit("msg", testAuthor())
	if !errors.Is(err, ErrConflict) {
		t.Errorf("commit with conflicted index: got %v, want ErrConflict", err)
	}
}

func TestCommit_TreeDeterministicAcrossRepos(t *testing.T) {
	// Same file set staged in different order in two fresh repos must
	// produce identical tree hashes.
	files := map[string]string{
		"src/main.go":    "package main\n",
		"src/util.go":    "package main // util\n",
		"docs/README.md": "# readme\n",
		"Makefile":       "all:\n",
	}

	buildTree := func(order []string) string {
		r := initTestRepo(t)
		for _, name := range order {
			writeAndAdd(t, r, name, []byte(files[name]))
		}
		idx, err := r.LoadIndex()
		if err != nil {
			t.Fatalf("LoadIndex: %v", err)
		}
		h, err := r.BuildTree(idx)
		if err != nil {
			t.Fatalf("BuildTree: %v", err)
		}
		return string(h)
	}

	t1 := buildTree([]string{"src/main.go", "src/util.go", "docs/README.md", "Makefile"})
	t2 := buildTree([]string{"Makefile", "docs/README.md", "src/util.go", "src/main.go"})
	if t1 != t2 {
		t.Errorf("tree hash depends on staging order: %s != %s", t1, t2)
	}
}

func TestLog_FirstParentWalk(t *testing.T) {
	r := initRepoWithFile(t, "a.txt", []byte("v1\n"))
	h1 := mustCommit(t, r, "first")

	writeAndAdd(t, r, "a.txt", []byte("v2\n"))
	h2 := mustCommit(t, r, "second")

	writeAndAdd(t, r, "a.txt", []byte("v3\n"))
	h3 := mustCommit(t, r, "third")

	head, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}

	entries, err := r.Log(head, 0)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("log length = %d, want 3", len(entries))
	}
	want := []string{h3, h2, h1}
	for i, e := range entries {
		if string(e.Hash) != want[i] {
			t.Errorf("log[%d] = %s, want %s", i, e.Hash, want[i])
		}
	}

	limited, err := r.Log(head, 2)
	if err != nil {
		t.Fatalf("Log limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited log length = %d, want 2", len(limited))
	}
}
