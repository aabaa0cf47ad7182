package repo

import (
	"errors"

	"github.com/strata-vcs/strata/pkg/object"
)

// Sentinel errors for the repository layer. Callers classify failures with
// errors.Is; wrapped messages carry the operation context.
var (
	// ErrIntegrity and ErrNotFound are the object layer's sentinels,
	// re-exported so callers only need this package.
	ErrIntegrity = object.ErrIntegrity
	ErrNotFound  = object.ErrNotFound

	// ErrValidation indicates rejected input (names, messages, identities).
	// Validation always fails before any repository state is mutated.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates unresolved conflicts block the operation.
	ErrConflict = errors.New("unresolved conflicts")

	// ErrState indicates the operation is invalid in the current repository
	// state (merge into self, push of a branch that is not checked out).
	ErrState = errors.New("invalid repository state")

	// ErrRefCASMismatch indicates a ref compare-and-swap found a different
	// previous hash than expected.
	ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")
)
