// Package access defines the grant record model and the decision logic for
// time-limited channel membership.
package access

import (
	"math"
	"time"
)

// Grant is a time-bounded membership record for one user. At most one Grant
// exists per user id.
type Grant struct {
	UserID      int64      `json:"user_id"`
	Username    string     `json:"username,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at"`
	WarningSent bool       `json:"warning_sent"`
}

// NewGrant creates an empty record with no expiry set.
func NewGrant(userID int64, username string) *Grant {
	return &Grant{UserID: userID, Username: username}
}

// Active reports whether the grant expires strictly in the future.
func (g *Grant) Active(now time.Time) bool {
	return g.ExpiresAt != nil && g.ExpiresAt.After(now)
}

// Lapsed reports whether the grant has an expiry that is now or in the past.
// A record with no expiry is neither active nor lapsed.
func (g *Grant) Lapsed(now time.Time) bool {
	return g.ExpiresAt != nil && !g.ExpiresAt.After(now)
}

// Extend applies the extend-or-renew rule: an active grant gains hours on top
// of its current expiry, a lapsed or absent one restarts from now. Either way
// the warning flag is cleared so the next period gets its own warning.
func (g *Grant) Extend(hours float64, now time.Time) error {
	if err := ValidateHours(hours); err != nil {
		return err
	}
	d := Duration(hours)
	if g.Active(now) {
		t := g.ExpiresAt.Add(d)
		g.ExpiresAt = &t
	} else {
		t := now.Add(d)
		g.ExpiresAt = &t
	}
	g.WarningSent = false
	return nil
}

// ValidateHours rejects non-positive and non-finite hour counts.
func ValidateHours(hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// Duration converts fractional hours into a time.Duration.
func Duration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
