package chatfield

import "errors"

var (
	// ErrBadCast reports a malformed cast declaration: an unknown
	// primitive kind, a choice cast without a sub-name or choices,
	// choices on a cast kind that takes none, or a translation cast
	// without a language code.
	ErrBadCast = errors.New("invalid cast declaration")

	// ErrMergeConflict reports two snapshots of one conversation that
	// disagree about history in a way the merge rules cannot resolve.
	ErrMergeConflict = errors.New("conflicting interview snapshots")

	// ErrUnknownField reports a field name that the interview does not
	// declare.
	ErrUnknownField = errors.New("unknown field")
)
