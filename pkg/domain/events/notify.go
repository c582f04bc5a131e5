// Package events defines outbound notification ports and their delivery
// results. Delivery failures are observable but never alter control flow.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Delivery is the outcome of one notification attempt. Every attempt gets a
// correlation id so a failed send can be traced through the logs.
type Delivery struct {
	ID        string
	Recipient int64
	At        time.Time
	Err       error
}

// Delivered reports whether the notification reached the transport.
func (d Delivery) Delivered() bool {
	return d.Err == nil
}

// NewDelivery records the outcome of a send to one recipient.
func NewDelivery(recipient int64, err error) Delivery {
	return Delivery{
		ID:        uuid.NewString(),
		Recipient: recipient,
		At:        time.Now(),
		Err:       err,
	}
}

// Messenger sends templated text to users and to the admin set. Failures are
// reported in the Delivery results, never as errors: a bystander that cannot
// be reached must not block the mutation the message accompanies.
type Messenger interface {
	// NotifyUser sends a direct message to one user.
	NotifyUser(ctx context.Context, userID int64, text string) Delivery
	// NotifyAdmins sends the same message to every configured admin,
	// one Delivery per admin.
	NotifyAdmins(ctx context.Context, text string) []Delivery
}

// ChannelGate mutates channel membership through the chat platform.
type ChannelGate interface {
	// ApproveJoinRequest accepts a pending join request.
	ApproveJoinRequest(ctx context.Context, userID int64) error
	// RemoveMember evicts a member with a ban/unban cycle so they can
	// re-apply later. Removing an absent member is harmless.
	RemoveMember(ctx context.Context, userID int64) error
}
