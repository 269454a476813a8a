package grid

import "errors"

// Error taxonomy shared by store, engine, and server. Handlers map
// these to HTTP statuses with errors.Is.
var (
	// ErrNotFound reports a table, view, field, or record that does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden reports an authorization precondition failure.
	// The engine refuses to proceed; ownership checks themselves live
	// in the authorization collaborator.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidReference reports a filter or sort naming a field
	// that does not belong to the queried table.
	ErrInvalidReference = errors.New("invalid field reference")

	// ErrInvalidOperator reports an operator/value mismatch, such as
	// a missing value for an operator that requires one.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrLastViewDeletion reports an attempt to delete a table's only
	// view.
	ErrLastViewDeletion = errors.New("cannot delete the only view of a table")

	// ErrInvalidCursor reports a continuation token that cannot be
	// decoded or does not match the active pagination strategy.
	ErrInvalidCursor = errors.New("invalid cursor")
)
