package application

import (
	"sort"
	"time"

	"github.com/doorman-bot/doorman/pkg/domain/access"
)

// Roster is the active/expired partition of all timed grants. Records with
// no expiry set (admin started a grant but never picked a duration) appear
// in neither list.
type Roster struct {
	Active  []access.Grant
	Expired []access.Grant
}

// RosterService produces listing views for the admin surface and the CLI.
type RosterService struct {
	grants    access.GrantRepository
	allowlist access.AllowlistRepository
	now       func() time.Time
}

func NewRosterService(grants access.GrantRepository, allowlist access.AllowlistRepository) *RosterService {
	return &RosterService{grants: grants, allowlist: allowlist, now: time.Now}
}

// Snapshot partitions the grants; active entries are sorted soonest-expiry
// first, matching the admin listing order.
func (s *RosterService) Snapshot() Roster {
	now := s.now()
	var roster Roster
	for _, grant := range s.grants.All() {
		switch {
		case grant.Active(now):
			roster.Active = append(roster.Active, grant)
		case grant.Lapsed(now):
			roster.Expired = append(roster.Expired, grant)
		}
	}
	sort.Slice(roster.Active, func(i, j int) bool {
		return roster.Active[i].ExpiresAt.Before(*roster.Active[j].ExpiresAt)
	})
	return roster
}

// Vips returns the allowlist ids with the best known display name for each,
// borrowing usernames from any grant record that still remembers one.
func (s *RosterService) Vips() []string {
	var out []string
	for _, id := range s.allowlist.All() {
		username := ""
		if grant := s.grants.Get(id); grant != nil {
			username = grant.Username
		}
		out = append(out, access.DisplayName(id, username))
	}
	return out
}
