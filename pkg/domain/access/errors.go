package access

import "errors"

var (
	// ErrInvalidDuration rejects a grant of zero, negative or non-finite hours.
	ErrInvalidDuration = errors.New("access duration must be a positive number of hours")

	// ErrAlreadyVip rejects a timed grant for a user on the permanent allowlist.
	ErrAlreadyVip = errors.New("user is on the VIP allowlist and already has permanent access")
)
