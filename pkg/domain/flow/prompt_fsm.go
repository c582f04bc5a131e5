// Package flow models the admin's multi-step prompt dialogs as an explicit
// finite state machine with per-admin session context.
package flow

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration. These must remain untyped string
// constants for statekit.StateID compatibility.
const (
	StateIdle               = "idle"
	StateAwaitingUserID     = "awaiting_user_id"
	StateAwaitingCustomHour = "awaiting_custom_hours"
	StateAwaitingVipID      = "awaiting_vip_id"
)

// Events accepted by the prompt machine.
const (
	EventPromptUser  = "prompt_user"
	EventPromptHours = "prompt_hours"
	EventPromptVip   = "prompt_vip"
	EventSubmit      = "submit"
	EventCancel      = "cancel"
)

// VipAction distinguishes the two VIP prompt variants.
type VipAction string

const (
	VipAdd    VipAction = "add"
	VipRemove VipAction = "remove"
)

// PromptContext carries the partially built request across prompt steps.
type PromptContext struct {
	AdminID   int64
	TargetID  int64
	VipAction VipAction
}

// PromptMachine wraps a statekit interpreter for one admin's dialog.
type PromptMachine struct {
	interpreter *statekit.Interpreter[PromptContext]
}

// NewPromptMachine builds a machine in the idle state for the given admin.
func NewPromptMachine(adminID int64) (*PromptMachine, error) {
	builder := statekit.NewMachine[PromptContext]("admin-prompt").
		WithInitial(statekit.StateID(StateIdle)).
		WithContext(PromptContext{AdminID: adminID})

	builder.State(StateIdle).
		On(EventPromptUser).Target(StateAwaitingUserID).
		On(EventPromptHours).Target(StateAwaitingCustomHour).
		On(EventPromptVip).Target(StateAwaitingVipID).
		Done()

	builder.State(StateAwaitingUserID).
		On(EventSubmit).Target(StateIdle).
		On(EventCancel).Target(StateIdle).
		Done()

	builder.State(StateAwaitingCustomHour).
		On(EventSubmit).Target(StateIdle).
		On(EventCancel).Target(StateIdle).
		Done()

	builder.State(StateAwaitingVipID).
		On(EventSubmit).Target(StateIdle).
		On(EventCancel).Target(StateIdle).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &PromptMachine{interpreter: interpreter}, nil
}

// Current returns the machine's current state name.
func (m *PromptMachine) Current() string {
	return string(m.interpreter.State().Value)
}

// Transition sends an event and errors if the machine did not move. A failed
// transition leaves the dialog where it was, so invalid input simply
// re-prompts.
func (m *PromptMachine) Transition(event string) error {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := m.Current()

	if before == after && !(event == EventCancel && before == StateIdle) {
		return fmt.Errorf("event %q is not valid in prompt state %q", event, before)
	}
	return nil
}

// Idle reports whether no prompt is in progress.
func (m *PromptMachine) Idle() bool {
	return m.Current() == StateIdle
}
