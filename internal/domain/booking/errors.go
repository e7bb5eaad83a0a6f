package booking

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrBadRequest         = errors.New("bad request")
	ErrFailedPrecondition = errors.New("precondition failed")
	// ErrConflict means a concurrent transition won the race; the caller's
	// read is stale.
	ErrConflict = errors.New("conflicting update")
	// ErrPayment hides processor detail from callers; the cause is logged
	// server-side.
	ErrPayment = errors.New("payment processing failed")
)

func IsErrNotFound(err error) bool           { return errors.Is(err, ErrNotFound) }
func IsErrUnauthorized(err error) bool       { return errors.Is(err, ErrUnauthorized) }
func IsErrBadRequest(err error) bool         { return errors.Is(err, ErrBadRequest) }
func IsErrFailedPrecondition(err error) bool { return errors.Is(err, ErrFailedPrecondition) }
func IsErrConflict(err error) bool           { return errors.Is(err, ErrConflict) }
func IsErrPayment(err error) bool            { return errors.Is(err, ErrPayment) }
