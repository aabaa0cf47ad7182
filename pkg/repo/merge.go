package repo

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/strata-vcs/strata/pkg/object"
)

// MergeKind classifies the relationship between the current commit and the
// merge target.
type MergeKind int

const (
	// MergeFastForward: the current commit is an ancestor of the target; the
	// branch ref simply moves forward, no commit is created.
	MergeFastForward MergeKind = iota
	// MergeAlreadyUpToDate: the target is already reachable from the current
	// commit; nothing to do.
	MergeAlreadyUpToDate
	// MergeThreeWay: histories diverged from a common base; a merge commit
	// with both parents is created.
	MergeThreeWay
	// MergeUnrelated: the histories share no common ancestor; merging
	// requires explicit confirmation.
	MergeUnrelated
)

func (k MergeKind) String() string {
	switch k {
	case MergeFastForward:
		return "fast-forward"
	case MergeAlreadyUpToDate:
		return "already-up-to-date"
	case MergeThreeWay:
		return "three-way"
	case MergeUnrelated:
		return "unrelated"
	default:
		return fmt.Sprintf("MergeKind(%d)", int(k))
	}
}

// MergeOptions controls Merge behavior.
type MergeOptions struct {
	// AllowUnrelated confirms merging histories with no common ancestor.
	AllowUnrelated bool

	AuthorName  string
	AuthorEmail string
}

// MergeResult reports the outcome of a merge.
type MergeResult struct {
	Kind   MergeKind
	Base   object.Hash // empty for unrelated histories
	Head   object.Hash // head commit after the merge
	Commit object.Hash // merge commit hash, set for three-way/unrelated
}

// Classify determines the merge relationship between two commits without
// mutating anything.
func (r *Repo) Classify(current, target object.Hash) (MergeKind, object.Hash, error) {
	base, err := r.MergeBase(current, target)
	if err != nil {
		return 0, "", err
	}
	switch {
	case base == "":
		return MergeUnrelated, "", nil
	case base == current:
		return MergeFastForward, base, nil
	case base == target:
		return MergeAlreadyUpToDate, base, nil
	default:
		return MergeThreeWay, base, nil
	}
}

// Merge merges the named branch into the current branch.
//
// Preconditions, all checked before any mutation: a branch must be checked
// out, the named branch must exist and differ from the current one, both
// tips must be readable commits, and the index must hold no unresolved
// conflicts. The merge is one-shot: no merge-in-progress state is persisted,
// so a failed merge leaves the repository exactly as it was.
//
// A three-way merge writes a commit with parents [current, target] whose
// tree is the current commit's tree. Divergent tree content is not
// reconciled; the commit records the history join only.
func (r *Repo) Merge(branch string, opts MergeOptions) (*MergeResult, error) {
	currentBranch, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if currentBranch == "" {
		return nil, fmt.Errorf("merge: %w: HEAD is detached", ErrState)
	}
	if currentBranch == branch {
		return nil, fmt.Errorf("merge: %w: cannot merge branch %q into itself", ErrState, branch)
	}

	target, err := r.ResolveRef("refs/heads/" + branch)
	if err != nil {
		return nil, fmt.Errorf("merge: branch %q: %w", branch, err)
	}

	current, err := r.ResolveRef("HEAD")
	if err != nil || current == "" {
		return nil, fmt.Errorf("merge: %w: current branch has no commits", ErrState)
	}

	idx, err := r.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if idx.HasConflicts() {
		return nil, fmt.Errorf("merge: %w in %v", ErrConflict, idx.ConflictedPaths())
	}

	// Both tips must be intact commits before anything moves.
	currentCommit, err := r.Store.ReadCommit(current)
	if err != nil {
		return nil, fmt.Errorf("merge: read current commit %s: %w", current, err)
	}
	if _, err := r.Store.ReadCommit(target); err != nil {
		return nil, fmt.Errorf("merge: read target commit %s: %w", target, err)
	}

	kind, base, err := r.Classify(current, target)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	result := &MergeResult{Kind: kind, Base: base, Head: current}

	switch kind {
	case MergeAlreadyUpToDate:
		return result, nil

	case MergeFastForward:
		refName := "refs/heads/" + currentBranch
		if err := r.UpdateRefCAS(refName, target, current); err != nil {
			return nil, fmt.Errorf("merge: fast-forward %q: %w", refName, err)
		}
		result.Head = target
		r.Audit("merge", fmt.Sprintf("fast-forward %s to %s", currentBranch, shortHash(target)), "vcs")
		return result, nil

	case MergeUnrelated:
		if !opts.AllowUnrelated {
			return nil, fmt.Errorf("merge: %w: branch %q shares no history; pass AllowUnrelated to confirm", ErrState, branch)
		}
	}

	// Three-way (or confirmed unrelated): record the history join.
	name, email := opts.AuthorName, opts.AuthorEmail
	if name == "" || email == "" {
		cfgName, cfgEmail, err := r.AuthorIdentity()
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if name == "" {
			name = cfgName
		}
		if email == "" {
			email = cfgEmail
		}
	}

	now := time.Now().Unix()
	ident := object.Signature{Name: name, Email: email, Timestamp: now}
	mergeCommit := &object.CommitObj{
		TreeHash:  currentCommit.TreeHash,
		Parents:   []object.Hash{current, target},
		Author:    ident,
		Committer: ident,
		Signature: mergeSignature(current, target),
		Message:   fmt.Sprintf("Merge branch '%s' into %s", branch, currentBranch),
	}

	commitHash, err := r.Store.WriteCommit(mergeCommit)
	if err != nil {
		return nil, fmt.Errorf("merge: write merge commit: %w", err)
	}

	refName := "refs/heads/" + currentBranch
	if err := r.UpdateRefCAS(refName, commitHash, current); err != nil {
		return nil, fmt.Errorf("merge: update %q: %w", refName, err)
	}

	result.Head = commitHash
	result.Commit = commitHash
	r.Audit("merge", fmt.Sprintf("merged %s into %s as %s", branch, currentBranch, shortHash(commitHash)), "vcs")
	return result, nil
}

// mergeSignature derives a deterministic provenance marker for a merge
// commit from the two parent hashes.
func mergeSignature(current, target object.Hash) string {
	sum := sha256.Sum256([]byte("merge:" + string(current) + ":" + string(target)))
	return hex.EncodeToString(sum[:])
}
