package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/doorman-bot/doorman/pkg/domain/access"
	"github.com/doorman-bot/doorman/pkg/domain/events"
)

// mockGrants is an in-memory access.GrantRepository with a fixed clock.
type mockGrants struct {
	grants map[int64]*access.Grant
	now    time.Time
}

func newMockGrants(now time.Time) *mockGrants {
	return &mockGrants{grants: make(map[int64]*access.Grant), now: now}
}

func (m *mockGrants) Get(userID int64) *access.Grant {
	g, ok := m.grants[userID]
	if !ok {
		return nil
	}
	out := *g
	return &out
}

func (m *mockGrants) Ensure(userID int64, username string) *access.Grant {
	g, ok := m.grants[userID]
	if !ok {
		g = access.NewGrant(userID, username)
		m.grants[userID] = g
	}
	if username != "" {
		g.Username = username
	}
	out := *g
	return &out
}

func (m *mockGrants) Extend(userID int64, username string, hours float64) (*access.Grant, error) {
	g, ok := m.grants[userID]
	if !ok {
		g = access.NewGrant(userID, username)
	}
	if username != "" {
		g.Username = username
	}
	if err := g.Extend(hours, m.now); err != nil {
		return nil, err
	}
	m.grants[userID] = g
	out := *g
	return &out, nil
}

func (m *mockGrants) MarkWarned(userID int64) {
	if g, ok := m.grants[userID]; ok {
		g.WarningSent = true
	}
}

func (m *mockGrants) Remove(userID int64) {
	delete(m.grants, userID)
}

func (m *mockGrants) All() []access.Grant {
	out := make([]access.Grant, 0, len(m.grants))
	for _, g := range m.grants {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (m *mockGrants) HasValidAccess(userID int64) bool {
	g, ok := m.grants[userID]
	return ok && g.Active(m.now)
}

// mockAllowlist is an in-memory access.AllowlistRepository.
type mockAllowlist struct {
	ids []int64
}

func (m *mockAllowlist) Add(userID int64) {
	if !m.Contains(userID) {
		m.ids = append(m.ids, userID)
	}
}

func (m *mockAllowlist) Remove(userID int64) {
	for i, id := range m.ids {
		if id == userID {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			return
		}
	}
}

func (m *mockAllowlist) Contains(userID int64) bool {
	for _, id := range m.ids {
		if id == userID {
			return true
		}
	}
	return false
}

func (m *mockAllowlist) All() []int64 {
	return append([]int64(nil), m.ids...)
}

// mockGate records membership calls and can be told to fail them.
type mockGate struct {
	approved   []int64
	removed    []int64
	approveErr error
	removeErr  error
}

func (m *mockGate) ApproveJoinRequest(_ context.Context, userID int64) error {
	if m.approveErr != nil {
		return m.approveErr
	}
	m.approved = append(m.approved, userID)
	return nil
}

func (m *mockGate) RemoveMember(_ context.Context, userID int64) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, userID)
	return nil
}

// mockMessenger records every outbound text.
type mockMessenger struct {
	userMsgs  map[int64][]string
	adminMsgs []string
	failUser  bool
}

func newMockMessenger() *mockMessenger {
	return &mockMessenger{userMsgs: make(map[int64][]string)}
}

func (m *mockMessenger) NotifyUser(_ context.Context, userID int64, text string) events.Delivery {
	if m.failUser {
		return events.NewDelivery(userID, errors.New("blocked by user"))
	}
	m.userMsgs[userID] = append(m.userMsgs[userID], text)
	return events.NewDelivery(userID, nil)
}

func (m *mockMessenger) NotifyAdmins(_ context.Context, text string) []events.Delivery {
	m.adminMsgs = append(m.adminMsgs, text)
	return []events.Delivery{events.NewDelivery(1, nil)}
}
