package access

// GrantRepository is the durable grant mapping. Implementations persist
// write-through: every mutation lands on disk before the call returns.
type GrantRepository interface {
	// Get returns a copy of the record, or nil if absent.
	Get(userID int64) *Grant
	// Ensure creates a bare record if absent and refreshes the username.
	Ensure(userID int64, username string) *Grant
	// Extend applies the extend-or-renew rule and persists the result.
	Extend(userID int64, username string, hours float64) (*Grant, error)
	// MarkWarned flips the warning flag for the current grant period.
	MarkWarned(userID int64)
	// Remove deletes the record if present.
	Remove(userID int64)
	// All returns a snapshot of every record.
	All() []Grant
	// HasValidAccess reports whether the user holds a strictly-future expiry.
	HasValidAccess(userID int64) bool
}

// AllowlistRepository is the durable VIP set.
type AllowlistRepository interface {
	Add(userID int64)
	Remove(userID int64)
	Contains(userID int64) bool
	All() []int64
}
