package flow

import "testing"

func TestPromptMachine_UserIDFlow(t *testing.T) {
	m, err := NewPromptMachine(100)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Idle() {
		t.Fatalf("expected idle start, got %q", m.Current())
	}

	if err := m.Transition(EventPromptUser); err != nil {
		t.Fatal(err)
	}
	if m.Current() != StateAwaitingUserID {
		t.Errorf("expected %q, got %q", StateAwaitingUserID, m.Current())
	}

	if err := m.Transition(EventSubmit); err != nil {
		t.Fatal(err)
	}
	if !m.Idle() {
		t.Errorf("submit must return to idle, got %q", m.Current())
	}
}

func TestPromptMachine_CancelFromAnyPrompt(t *testing.T) {
	for _, start := range []string{EventPromptUser, EventPromptHours, EventPromptVip} {
		m, err := NewPromptMachine(100)
		if err != nil {
			t.Fatal(err)
		}
		if err := m.Transition(start); err != nil {
			t.Fatal(err)
		}
		if err := m.Transition(EventCancel); err != nil {
			t.Fatalf("%s: cancel failed: %v", start, err)
		}
		if !m.Idle() {
			t.Errorf("%s: cancel must return to idle", start)
		}
	}
}

func TestPromptMachine_InvalidEventKeepsState(t *testing.T) {
	m, err := NewPromptMachine(100)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Transition(EventPromptHours); err != nil {
		t.Fatal(err)
	}
	if err := m.Transition(EventPromptVip); err == nil {
		t.Error("expected error for prompt event while already prompting")
	}
	if m.Current() != StateAwaitingCustomHour {
		t.Errorf("invalid event must not move the machine, got %q", m.Current())
	}
}

func TestSessions_GetAndReset(t *testing.T) {
	sessions := NewSessions()

	s1, err := sessions.Get(5)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.Machine.Transition(EventPromptVip); err != nil {
		t.Fatal(err)
	}
	s1.Context.VipAction = VipAdd

	again, err := sessions.Get(5)
	if err != nil {
		t.Fatal(err)
	}
	if again.Machine.Current() != StateAwaitingVipID || again.Context.VipAction != VipAdd {
		t.Error("Get must return the same in-progress session")
	}

	sessions.Reset(5)
	fresh, err := sessions.Get(5)
	if err != nil {
		t.Fatal(err)
	}
	if !fresh.Machine.Idle() {
		t.Error("Reset must discard dialog state")
	}
}
