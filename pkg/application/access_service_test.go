package application

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/doorman-bot/doorman/pkg/domain/access"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newAccessFixture() (*AccessService, *mockGrants, *mockAllowlist, *mockGate) {
	grants := newMockGrants(testNow)
	allowlist := &mockAllowlist{}
	gate := &mockGate{}
	svc := NewAccessService(grants, allowlist, gate, slog.Default())
	svc.now = func() time.Time { return testNow }
	return svc, grants, allowlist, gate
}

func TestDecide_Precedence(t *testing.T) {
	svc, grants, allowlist, _ := newAccessFixture()

	if d := svc.Decide(42); d.Verdict != access.VerdictDenied {
		t.Errorf("unknown user: expected denied, got %q", d.Verdict)
	}

	if _, err := grants.Extend(42, "", 2); err != nil {
		t.Fatal(err)
	}
	d := svc.Decide(42)
	if d.Verdict != access.VerdictActive {
		t.Fatalf("expected active, got %q", d.Verdict)
	}
	if !d.ExpiresAt.Equal(testNow.Add(2 * time.Hour)) {
		t.Errorf("decision must carry the expiry, got %v", d.ExpiresAt)
	}

	// Allowlist wins over any grant record, active or not.
	allowlist.Add(42)
	if d := svc.Decide(42); d.Verdict != access.VerdictVip {
		t.Errorf("allowlisted user: expected vip, got %q", d.Verdict)
	}
}

func TestDecide_LapsedGrantIsDenied(t *testing.T) {
	svc, grants, _, _ := newAccessFixture()

	grants.now = testNow.Add(-3 * time.Hour) // grant issued three hours ago
	if _, err := grants.Extend(42, "", 1); err != nil {
		t.Fatal(err)
	}
	if d := svc.Decide(42); d.Verdict != access.VerdictDenied {
		t.Errorf("lapsed grant: expected denied, got %q", d.Verdict)
	}
}

func TestGrant_RejectsInvalidDuration(t *testing.T) {
	svc, grants, _, _ := newAccessFixture()

	for _, hours := range []float64{0, -2.5} {
		_, err := svc.Grant(42, hours, "alice")
		if !errors.Is(err, access.ErrInvalidDuration) {
			t.Errorf("hours=%v: expected ErrInvalidDuration, got %v", hours, err)
		}
	}
	if len(grants.All()) != 0 {
		t.Error("rejected grant must leave the store unchanged")
	}
}

func TestGrant_RejectsVip(t *testing.T) {
	svc, grants, allowlist, _ := newAccessFixture()
	allowlist.Add(42)

	_, err := svc.Grant(42, 5, "alice")
	if !errors.Is(err, access.ErrAlreadyVip) {
		t.Fatalf("expected ErrAlreadyVip, got %v", err)
	}
	if len(grants.All()) != 0 {
		t.Error("rejected grant must leave the store unchanged")
	}

	if _, err := svc.Register(42, "alice"); !errors.Is(err, access.ErrAlreadyVip) {
		t.Errorf("Register must also reject VIPs, got %v", err)
	}
}

func TestGrant_ExtendsActiveGrant(t *testing.T) {
	svc, _, _, _ := newAccessFixture()

	first, err := svc.Grant(42, 2, "alice")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Grant(42, 3, "")
	if err != nil {
		t.Fatal(err)
	}
	if !second.ExpiresAt.Equal(first.ExpiresAt.Add(3 * time.Hour)) {
		t.Errorf("expected stacked expiry, got %v", second.ExpiresAt)
	}
	if second.WarningSent {
		t.Error("extend must clear the warning flag")
	}
}

func TestRevoke_RequiresEviction(t *testing.T) {
	svc, grants, _, gate := newAccessFixture()
	if _, err := grants.Extend(42, "", 1); err != nil {
		t.Fatal(err)
	}

	gate.removeErr = errors.New("telegram down")
	if err := svc.Revoke(context.Background(), 42); err == nil {
		t.Fatal("expected error when eviction fails")
	}
	if grants.Get(42) == nil {
		t.Error("record must survive a failed eviction")
	}

	gate.removeErr = nil
	if err := svc.Revoke(context.Background(), 42); err != nil {
		t.Fatal(err)
	}
	if grants.Get(42) != nil {
		t.Error("record must be deleted after successful eviction")
	}
	if len(gate.removed) != 1 || gate.removed[0] != 42 {
		t.Errorf("expected one eviction of 42, got %v", gate.removed)
	}
}
