package repo

import (
	"fmt"

	"github.com/strata-vcs/strata/pkg/object"
)

// PushReport summarizes a simulated push.
type PushReport struct {
	Branch      string
	Head        object.Hash
	CommitCount int
}

// SimulatePush validates and records a push of the named branch without any
// network transport. The branch must exist and be the currently checked-out
// branch. The report counts the commits reachable from its tip; the sync is
// recorded in the audit log.
func (r *Repo) SimulatePush(branch string) (*PushReport, error) {
	if err := ValidateBranchName(branch); err != nil {
		return nil, fmt.Errorf("push: %w", err)
	}

	head, err := r.ResolveRef("refs/heads/" + branch)
	if err != nil {
		return nil, fmt.Errorf("push: branch %q: %w", branch, err)
	}

	current, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("push: %w", err)
	}
	if current != branch {
		return nil, fmt.Errorf("push: branch %q is not checked out: %w", branch, ErrState)
	}

	ordered, _, err := r.Ancestors(head)
	if err != nil {
		return nil, fmt.Errorf("push: %w", err)
	}

	report := &PushReport{
		Branch:      branch,
		Head:        head,
		CommitCount: len(ordered),
	}
	r.Audit("push", fmt.Sprintf("pushed %s (%d commits, head %s)", branch, report.CommitCount, shortHash(head)), "sync")
	return report, nil
}
