package reconcile

import "errors"

var (
	// ErrNotConnected means the backing store stayed unreachable after the retry ceiling.
	ErrNotConnected = errors.New("not connected")

	// ErrRegistrationConflict means a name/units mismatch could not be resolved
	// under the current read-only and capability constraints.
	ErrRegistrationConflict = errors.New("registration conflict")

	// ErrInvalidRequest means the request was malformed (e.g. empty series name).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnknownFilterMode means the filter mode name is not recognised.
	ErrUnknownFilterMode = errors.New("unknown filter mode")
)
