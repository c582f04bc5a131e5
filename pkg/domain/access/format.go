package access

import (
	"fmt"
	"strings"
	"time"
)

// ExpiredLabel is rendered when an expiry is now or in the past.
const ExpiredLabel = "⏰ Истекло"

// UnderMinuteLabel is rendered for a positive remainder below one minute.
const UnderMinuteLabel = "< 1м"

// ExpiryDateLayout renders absolute expiry instants in user-facing text.
const ExpiryDateLayout = "02.01.2006 15:04"

// RemainingLabel renders the time left until expiresAt in the largest
// applicable units. Minutes are shown only when the day component is zero,
// so long remainders read "2д 3ч" and short ones "45м".
func RemainingLabel(expiresAt, now time.Time) string {
	if !expiresAt.After(now) {
		return ExpiredLabel
	}

	remaining := expiresAt.Sub(now)
	days := int(remaining / (24 * time.Hour))
	hours := int(remaining % (24 * time.Hour) / time.Hour)
	minutes := int(remaining % time.Hour / time.Minute)

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dд", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dч", hours))
	}
	if minutes > 0 && days == 0 {
		parts = append(parts, fmt.Sprintf("%dм", minutes))
	}

	if len(parts) == 0 {
		return UnderMinuteLabel
	}
	return strings.Join(parts, " ")
}

// ExpiryDate renders an absolute expiry instant for user-facing text.
func ExpiryDate(expiresAt time.Time) string {
	return expiresAt.Format(ExpiryDateLayout)
}

// DisplayName renders the best available handle for a user: "@username" when
// one is known, otherwise "ID: <id>".
func DisplayName(userID int64, username string) string {
	if username != "" {
		return "@" + username
	}
	return fmt.Sprintf("ID: %d", userID)
}
