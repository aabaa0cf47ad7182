package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/strata-vcs/strata/pkg/object"
)

const maxBranchNameLen = 100

// Ref names that may never be used as branch names.
var reservedBranchNames = map[string]bool{
	"HEAD":       true,
	"ORIG_HEAD":  true,
	"FETCH_HEAD": true,
	"MERGE_HEAD": true,
}

// ValidateBranchName rejects names that would be ambiguous, unsafe as ref
// file names, or collide with reserved ref names.
func ValidateBranchName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: branch name is required", ErrValidation)
	}
	if len(name) > maxBranchNameLen {
		return fmt.Errorf("%w: branch name exceeds %d characters", ErrValidation, maxBranchNameLen)
	}
	if reservedBranchNames[name] {
		return fmt.Errorf("%w: branch name %q is reserved", ErrValidation, name)
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: branch name %q may not start with '-'", ErrValidation, name)
	}
	if strings.HasSuffix(name, ".") {
		return fmt.Errorf("%w: branch name %q may not end with '.'", ErrValidation, name)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: branch name %q may not contain '..'", ErrValidation, name)
	}
	for _, c := range name {
		if c < 0x20 || c == 0x7f {
			return fmt.Errorf("%w: branch name %q contains a control character", ErrValidation, name)
		}
		switch c {
		case '~', '^', ':', '?', '*', '[', '\\', ' ', '\t', '\n':
			return fmt.Errorf("%w: branch name %q contains %q", ErrValidation, name, c)
		}
	}
	return nil
}

// CreateBranch creates a new branch pointing at the given target hash.
// It writes the hash to .strata/refs/heads/<name>. Returns an error if the
// branch already exists.
func (r *Repo) CreateBranch(name string, target object.Hash) error {
	if err := ValidateBranchName(name); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	if target == "" {
		return fmt.Errorf("create branch: %w: no target commit", ErrValidation)
	}

	refName := "refs/heads/" + name
	if err := r.UpdateRefCAS(refName, target, ""); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return fmt.Errorf("create branch: branch %q already exists: %w", name, ErrState)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	r.Audit("branch-create", fmt.Sprintf("branch %s at %s", name, shortHash(target)), "vcs")
	return nil
}

// CreateBranchAtHead creates a branch pointing at the current commit.
func (r *Repo) CreateBranchAtHead(name string) error {
	head, err := r.ResolveRef("HEAD")
	if err != nil || head == "" {
		return fmt.Errorf("create branch: %w: no commits yet", ErrState)
	}
	return r.CreateBranch(name, head)
}

// DeleteBranch removes the branch ref file .strata/refs/heads/<name>.
// Returns an error if the branch is the current branch or does not exist.
func (r *Repo) DeleteBranch(name string) error {
	if err := ValidateBranchName(name); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}

	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("delete branch: cannot delete current branch %q: %w", name, ErrState)
	}

	refPath := filepath.Join(r.StrataDir, "refs", "heads", filepath.FromSlash(name))
	if err := os.Remove(refPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete branch: branch %q: %w", name, ErrNotFound)
		}
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	r.Audit("branch-delete", "branch "+name, "vcs")
	return nil
}

// ListBranches returns the branch names sorted alphabetically. Nested names
// like "feature/login-fix" are included.
func (r *Repo) ListBranches() ([]string, error) {
	refs, err := r.ListRefs("heads")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	names := make([]string, 0, len(refs))
	for full := range refs {
		names = append(names, strings.TrimPrefix(full, "heads/"))
	}
	sort.Strings(names)
	return names, nil
}

// CurrentBranch reads HEAD and returns the branch name if HEAD is a symbolic
// ref (e.g. "ref: refs/heads/main" -> "main"). If HEAD is detached, it
// returns "".
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}

	const prefix = "refs/heads/"
	if strings.HasPrefix(head, prefix) {
		return strings.TrimPrefix(head, prefix), nil
	}
	return "", nil
}

// CurrentCommit resolves HEAD to a commit hash. A fresh repository with no
// commits returns "".
func (r *Repo) CurrentCommit() (object.Hash, error) {
	h, err := r.ResolveRef("HEAD")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return h, nil
}

// Checkout moves HEAD to the target. An existing branch becomes a symbolic
// HEAD; a hex prefix of at least 4 characters resolves to a commit and
// detaches HEAD. Anything else is not found. Only HEAD changes: the working
// tree and index are left alone.
func (r *Repo) Checkout(target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("checkout: %w: target is required", ErrValidation)
	}

	headPath := filepath.Join(r.StrataDir, "HEAD")

	// Branch first.
	if _, err := r.ResolveRef("refs/heads/" + target); err == nil {
		content := "ref: refs/heads/" + target + "\n"
		if err := os.WriteFile(headPath, []byte(content), 0o644); err != nil {
			return fmt.Errorf("checkout: update HEAD: %w", err)
		}
		r.Audit("checkout", "branch "+target, "vcs")
		return nil
	}

	if !isHexPrefix(target) || len(target) < 4 {
		return fmt.Errorf("checkout: %q: %w", target, ErrNotFound)
	}

	hash, err := r.expandHashPrefix(target)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if _, err := r.Store.ReadCommit(hash); err != nil {
		return fmt.Errorf("checkout: %s is not a commit: %w", hash, err)
	}

	if err := os.WriteFile(headPath, []byte(string(hash)+"\n"), 0o644); err != nil {
		return fmt.Errorf("checkout: update HEAD: %w", err)
	}
	r.Audit("checkout", "detached at "+shortHash(hash), "vcs")
	return nil
}
