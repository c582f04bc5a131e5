package storage

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func newTestGrantStore(t *testing.T) (*GrantStore, *FilesystemRepository) {
	t.Helper()
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}
	return NewGrantStore(repo, slog.Default()), repo
}

func TestGrantStore_ExtendAndGet(t *testing.T) {
	store, _ := newTestGrantStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	grant, err := store.Extend(42, "alice", 2)
	if err != nil {
		t.Fatal(err)
	}
	want := now.Add(2 * time.Hour)
	if !grant.ExpiresAt.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, grant.ExpiresAt)
	}

	got := store.Get(42)
	if got == nil || got.Username != "alice" {
		t.Fatalf("expected stored record for 42, got %+v", got)
	}

	// Extending again stacks on the active expiry.
	grant, err = store.Extend(42, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !grant.ExpiresAt.Equal(want.Add(time.Hour)) {
		t.Errorf("expected stacked expiry, got %v", grant.ExpiresAt)
	}
	if grant.Username != "alice" {
		t.Error("empty username must not erase the stored one")
	}
}

func TestGrantStore_ExtendRejectsBadHoursWithoutMutating(t *testing.T) {
	store, _ := newTestGrantStore(t)

	if _, err := store.Extend(42, "alice", 0); err == nil {
		t.Fatal("expected error for zero hours")
	}
	if store.Get(42) != nil {
		t.Error("rejected extend must leave the store unchanged")
	}

	// The username of an existing record is equally untouchable.
	if _, err := store.Extend(42, "alice", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Extend(42, "mallory", -1); err == nil {
		t.Fatal("expected error for negative hours")
	}
	if got := store.Get(42); got.Username != "alice" {
		t.Errorf("rejected extend must not rename the record, got %q", got.Username)
	}
}

func TestGrantStore_HasValidAccess(t *testing.T) {
	store, _ := newTestGrantStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if store.HasValidAccess(42) {
		t.Error("unknown user must not have access")
	}

	if _, err := store.Extend(42, "", 1); err != nil {
		t.Fatal(err)
	}
	if !store.HasValidAccess(42) {
		t.Error("active grant must have access")
	}

	store.now = func() time.Time { return now.Add(2 * time.Hour) }
	if store.HasValidAccess(42) {
		t.Error("lapsed grant must not have access")
	}
}

func TestGrantStore_RoundTrip(t *testing.T) {
	store, repo := newTestGrantStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	store.now = func() time.Time { return now }

	if _, err := store.Extend(42, "alice", 1.5); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Extend(7, "", 24); err != nil {
		t.Fatal(err)
	}
	store.MarkWarned(7)
	store.Ensure(99, "carol")

	reloaded := NewGrantStore(repo, slog.Default())
	all := reloaded.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 records after reload, got %d", len(all))
	}

	a := reloaded.Get(42)
	if a == nil || a.Username != "alice" || a.WarningSent {
		t.Fatalf("record 42 did not round-trip: %+v", a)
	}
	if !a.ExpiresAt.Equal(now.Add(90 * time.Minute)) {
		t.Errorf("expiry lost precision: %v", a.ExpiresAt)
	}

	b := reloaded.Get(7)
	if b == nil || !b.WarningSent {
		t.Error("warning flag did not round-trip")
	}

	c := reloaded.Get(99)
	if c == nil || c.ExpiresAt != nil {
		t.Error("bare record must round-trip with nil expiry")
	}
}

func TestGrantStore_LoadFailsOpenOnCorruptFile(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}
	path, err := repo.ResolvePath(GrantsFile)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewGrantStore(repo, slog.Default())
	if len(store.All()) != 0 {
		t.Error("corrupt file must load as empty state")
	}
}

func TestGrantStore_LoadRejectsSchemaViolations(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}
	path, err := repo.ResolvePath(GrantsFile)
	if err != nil {
		t.Fatal(err)
	}
	// Valid JSON, wrong shape: user_id as string.
	bad := `{"42": {"user_id": "42", "warning_sent": "yes"}}`
	if err := os.WriteFile(path, []byte(bad), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewGrantStore(repo, slog.Default())
	if len(store.All()) != 0 {
		t.Error("schema violation must load as empty state")
	}
}

func TestGrantStore_RemoveIsIdempotent(t *testing.T) {
	store, _ := newTestGrantStore(t)

	if _, err := store.Extend(42, "", 1); err != nil {
		t.Fatal(err)
	}
	store.Remove(42)
	if store.Get(42) != nil {
		t.Fatal("record must be gone after remove")
	}
	store.Remove(42) // absent: no-op
}
