package application

import (
	"testing"
	"time"
)

func TestSnapshot_PartitionsAndSorts(t *testing.T) {
	grants := newMockGrants(testNow)
	allowlist := &mockAllowlist{}
	svc := NewRosterService(grants, allowlist)
	svc.now = func() time.Time { return testNow }

	if _, err := grants.Extend(1, "late", 48); err != nil {
		t.Fatal(err)
	}
	if _, err := grants.Extend(2, "soon", 1); err != nil {
		t.Fatal(err)
	}
	grants.now = testNow.Add(-2 * time.Hour)
	if _, err := grants.Extend(3, "gone", 1); err != nil {
		t.Fatal(err)
	}
	grants.now = testNow
	grants.Ensure(4, "bare") // no expiry: in neither list

	roster := svc.Snapshot()
	if len(roster.Active) != 2 || len(roster.Expired) != 1 {
		t.Fatalf("expected 2 active / 1 expired, got %d/%d", len(roster.Active), len(roster.Expired))
	}
	if roster.Active[0].UserID != 2 {
		t.Error("active list must be sorted soonest-expiry first")
	}
	if roster.Expired[0].UserID != 3 {
		t.Errorf("expected user 3 expired, got %d", roster.Expired[0].UserID)
	}
}

func TestVips_BorrowsUsernamesFromGrants(t *testing.T) {
	grants := newMockGrants(testNow)
	allowlist := &mockAllowlist{}
	svc := NewRosterService(grants, allowlist)

	allowlist.Add(10)
	allowlist.Add(20)
	grants.Ensure(20, "known")

	vips := svc.Vips()
	if len(vips) != 2 {
		t.Fatalf("expected 2 vips, got %d", len(vips))
	}
	if vips[0] != "ID: 10" || vips[1] != "@known" {
		t.Errorf("unexpected vip listing: %v", vips)
	}
}

func TestRender(t *testing.T) {
	got := Render("hi {name}, {missing}", map[string]string{"name": "bob"})
	if got != "hi bob, {missing}" {
		t.Errorf("unexpected render: %q", got)
	}
}
