package repo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/strata-vcs/strata/pkg/object"
)

const maxCommitMessageLen = 100_000

// CommitOptions carries optional commit metadata. Zero value is valid:
// identity falls back to config, timestamps to the current time.
type CommitOptions struct {
	AuthorName  string
	AuthorEmail string
	Signature   string // optional hex signature persisted in the commit
}

// validateCommitInput checks the message and author identity before any
// object is written.
func validateCommitInput(message, name, email string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: commit message is required", ErrValidation)
	}
	if len(message) > maxCommitMessageLen {
		return fmt.Errorf("%w: commit message exceeds %d characters", ErrValidation, maxCommitMessageLen)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: author name is required", ErrValidation)
	}
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: author email %q is not valid", ErrValidation, email)
	}
	return nil
}

// Commit creates a new commit from the current staging area.
//
//  1. Validate message and author identity.
//  2. Load the index; refuse when empty or conflicted.
//  3. BuildTree from the index.
//  4. Resolve HEAD to get the parent commit hash (if any).
//  5. Write the commit object.
//  6. Update the current branch ref (CAS against the old hash).
//  7. Clear the index and return the commit hash.
func (r *Repo) Commit(message string, opts CommitOptions) (object.Hash, error) {
	name, email := opts.AuthorName, opts.AuthorEmail
	if name == "" || email == "" {
		cfgName, cfgEmail, err := r.AuthorIdentity()
		if err != nil {
			return "", fmt.Errorf("commit: %w", err)
		}
		if name == "" {
			name = cfgName
		}
		if email == "" {
			email = cfgEmail
		}
	}
	if err := validateCommitInput(message, name, email); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	idx, err := r.LoadIndex()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if len(idx.Entries) == 0 {
		return "", fmt.Errorf("commit: nothing staged: %w", ErrState)
	}
	if idx.HasConflicts() {
		return "", fmt.Errorf("commit: %w in %v", ErrConflict, idx.ConflictedPaths())
	}

	treeHash, err := r.BuildTree(idx)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	// Resolve HEAD to get parent (may not exist for first commit).
	var parents []object.Hash
	parentHash, err := r.ResolveRef("HEAD")
	if err == nil && parentHash != "" {
		parents = append(parents, parentHash)
	}

	now := time.Now().Unix()
	ident := object.Signature{Name: name, Email: email, Timestamp: now}
	commitObj := &object.CommitObj{
		TreeHash:  treeHash,
		Parents:   parents,
		Author:    ident,
		Committer: ident,
		Signature: opts.Signature,
		Message:   message,
	}

	commitHash, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("commit: read HEAD: %w", err)
	}

	// head is either a ref path ("refs/heads/main") or a detached hash.
	if strings.HasPrefix(head, "refs/") {
		var updateErr error
		if parentHash == "" {
			updateErr = r.UpdateRefCAS(head, commitHash)
		} else {
			updateErr = r.UpdateRefCAS(head, commitHash, parentHash)
		}
		if updateErr != nil {
			return "", fmt.Errorf("commit: update ref %q: %w", head, updateErr)
		}
	} else {
		// Detached HEAD: update HEAD directly with a CAS against the old hash.
		if err := r.UpdateRefCAS("HEAD", commitHash, object.Hash(strings.TrimSpace(head))); err != nil {
			return "", fmt.Errorf("commit: update detached HEAD: %w", err)
		}
	}

	// The staged set is now the committed tree; start the next round clean.
	idx.Clear()
	if err := r.SaveIndex(idx); err != nil {
		return "", fmt.Errorf("commit: clear index: %w", err)
	}

	r.Audit("commit", fmt.Sprintf("commit %s on %s", shortHash(commitHash), head), "vcs")

	return commitHash, nil
}

// LogEntry pairs a commit hash with its parsed object for history listings.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Log walks the commit history starting from the given hash, following
// first-parent links, returning up to limit commits newest first.
func (r *Repo) Log(start object.Hash, limit int) ([]LogEntry, error) {
	var entries []LogEntry
	current := start

	for current != "" && (limit <= 0 || len(entries) < limit) {
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				break
			}
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		entries = append(entries, LogEntry{Hash: current, Commit: c})

		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}

	return entries, nil
}

func shortHash(h object.Hash) string {
	if len(h) < 8 {
		return string(h)
	}
	return string(h[:8])
}
