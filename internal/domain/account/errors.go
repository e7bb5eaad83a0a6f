package account

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	// ErrPayment hides processor detail from callers; the cause is logged
	// server-side.
	ErrPayment = errors.New("payment processing failed")
)

func IsErrNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsErrBadRequest(err error) bool { return errors.Is(err, ErrBadRequest) }
func IsErrPayment(err error) bool    { return errors.Is(err, ErrPayment) }
