package workflow

import (
	"errors"

	"tableflip.dev/fedash/pkg/datafed"
	"tableflip.dev/fedash/pkg/session"
)

// RemoteError is a failure reported by the remote client. Its text is the
// remote error text, unchanged.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string { return e.Err.Error() }

func (e *RemoteError) Unwrap() error { return e.Err }

// PartialFailure is a transfer that created the destination record but could
// not move the source onto it. The created record is left in place.
type PartialFailure struct {
	CreatedID string
	Err       error
}

func (e *PartialFailure) Error() string { return e.Err.Error() }

func (e *PartialFailure) Unwrap() error { return e.Err }

// IsValidation reports whether err is a missing-input error.
func IsValidation(err error) bool {
	var ve *session.ValidationError
	return errors.As(err, &ve)
}

// IsAuth reports whether err is a credential rejection.
func IsAuth(err error) bool {
	return datafed.IsAuth(err)
}

// IsRemote reports whether err came from the remote client.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// IsPartial reports whether err is a transfer that stopped half way.
func IsPartial(err error) bool {
	var pf *PartialFailure
	return errors.As(err, &pf)
}
