package object

import "errors"

var (
	// ErrIntegrity indicates stored bytes failed hash or envelope verification.
	ErrIntegrity = errors.New("object integrity check failed")

	// ErrNotFound indicates the requested object does not exist in the store.
	ErrNotFound = errors.New("object not found")

	// ErrBadHash indicates a syntactically invalid hash string.
	ErrBadHash = errors.New("invalid object hash")
)
