package access

import (
	"testing"
	"time"
)

func TestRemainingLabel(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		expiresAt time.Time
		want      string
	}{
		{"days and hours", now.Add(2*24*time.Hour + 3*time.Hour), "2д 3ч"},
		{"minutes only", now.Add(45 * time.Minute), "45м"},
		{"hours and minutes", now.Add(3*time.Hour + 20*time.Minute), "3ч 20м"},
		{"days suppress minutes", now.Add(24*time.Hour + 50*time.Minute), "1д"},
		{"already expired", now.Add(-time.Second), ExpiredLabel},
		{"exactly now", now, ExpiredLabel},
		{"under a minute", now.Add(10 * time.Second), UnderMinuteLabel},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RemainingLabel(tc.expiresAt, now); got != tc.want {
				t.Errorf("RemainingLabel() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName(7, "bob"); got != "@bob" {
		t.Errorf("expected @bob, got %q", got)
	}
	if got := DisplayName(7, ""); got != "ID: 7" {
		t.Errorf("expected ID: 7, got %q", got)
	}
}
