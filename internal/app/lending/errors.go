// internal/app/lending/errors.go
package lending

import "errors"

// Failure taxonomy for the lending workflow. Handlers map these onto HTTP
// status codes; everything else surfaces as a server error.
var (
	// ErrBookUnavailable: the book is missing, inactive, or has no
	// available copy at the moment it matters (request or approval).
	ErrBookUnavailable = errors.New("book not available")

	// ErrDuplicateIssue: the member already holds an approved, unreturned
	// issue of this book.
	ErrDuplicateIssue = errors.New("you already have this book issued")

	// ErrNoActiveIssue: a return was requested for a book the member does
	// not currently hold.
	ErrNoActiveIssue = errors.New("no active issue found for this book")

	// ErrTransactionNotFound: the transaction id does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrTransactionNotPending: a decision was attempted on a transaction
	// that already left the pending state.
	ErrTransactionNotPending = errors.New("can only update pending transactions")

	// ErrInvalidTransactionState: the transaction is in the wrong state
	// for the requested transition (e.g. completing an unapproved return).
	ErrInvalidTransactionState = errors.New("invalid transaction state for this operation")

	// ErrNoIssuedCopies: the book's issued counter is already zero, so
	// there is nothing to return.
	ErrNoIssuedCopies = errors.New("no issued copies to return")

	// ErrNotAuthorized: the caller lacks the admin role required for the
	// transition.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrActiveIssue: the transaction is a currently-active, unreturned
	// issue and cannot be deleted.
	ErrActiveIssue = errors.New("cannot delete active issue transaction")
)
