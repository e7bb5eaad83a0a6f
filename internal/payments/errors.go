package payments

import "errors"

var (
	// ErrRejected means the processor refused the request; retrying the
	// same call will fail again.
	ErrRejected = errors.New("payment request rejected")
	// ErrUnavailable means the processor could not be reached or errored
	// transiently.
	ErrUnavailable = errors.New("payment processor unavailable")
)

func IsErrRejected(err error) bool    { return errors.Is(err, ErrRejected) }
func IsErrUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
