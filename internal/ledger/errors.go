// Package ledger holds the record-level rules of the inventory ledger:
// component identifiers, key matching and pending grouping.
package ledger

import "errors"

var (
	// ErrValidation indicates an empty or malformed batch; nothing was mutated.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates the identifier matched no record; nothing was mutated.
	ErrNotFound = errors.New("no matching record")
	// ErrInvalidTransition indicates every matched record is already terminal.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrPersistence indicates the store could not be read or written.
	ErrPersistence = errors.New("persistence failure")
	// ErrDependency indicates an external collaborator failed and the batch was aborted.
	ErrDependency = errors.New("dependency failure")
)
