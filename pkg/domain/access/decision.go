package access

import "time"

// Verdict classifies a user's standing at a single point in time.
type Verdict string

const (
	// VerdictVip means the user is on the permanent allowlist.
	VerdictVip Verdict = "vip"
	// VerdictActive means the user holds an unexpired timed grant.
	VerdictActive Verdict = "active"
	// VerdictDenied means the user has neither.
	VerdictDenied Verdict = "denied"
)

// Decision is the three-way access answer consulted by the join gate and by
// status reporting. ExpiresAt is set only for VerdictActive.
type Decision struct {
	Verdict   Verdict
	ExpiresAt time.Time
}

// Allowed reports whether the decision admits the user.
func (d Decision) Allowed() bool {
	return d.Verdict == VerdictVip || d.Verdict == VerdictActive
}
