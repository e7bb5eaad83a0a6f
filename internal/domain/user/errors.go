package user

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrAmbiguous = errors.New("ambiguous match")
)

func IsErrNotFound(err error) bool  { return errors.Is(err, ErrNotFound) }
func IsErrAmbiguous(err error) bool { return errors.Is(err, ErrAmbiguous) }
