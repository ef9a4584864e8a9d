package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventCommand      EventType = "command"
	EventCommandError EventType = "command_error"
	EventActivation   EventType = "activation"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// CommandEvent reports a command handed to the host queue.
type CommandEvent struct {
	EventBase
	Command Command `json:"command"`
	Err     error   `json:"-"`
}

// ActivationEvent reports the outcome of an activation attempt by name.
type ActivationEvent struct {
	EventBase
	ExperimentName string `json:"experiment_name"`
	ExperimentID   string `json:"experiment_id,omitempty"`
	Active         bool   `json:"active"`
	// Reason is set when activation was refused: "unavailable", "ambiguous" or "disabled".
	Reason string `json:"reason,omitempty"`
}

// Activation refusal reasons.
const (
	ReasonUnavailable = "unavailable"
	ReasonAmbiguous   = "ambiguous"
	ReasonDisabled    = "disabled"
)

// LifecycleHooks defines callbacks for facade observability.
type LifecycleHooks struct {
	OnCommand      func(context.Context, *CommandEvent)
	OnCommandError func(context.Context, *CommandEvent)
	OnActivation   func(context.Context, *ActivationEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCommand:      chain(h.OnCommand, other.OnCommand),
		OnCommandError: chain(h.OnCommandError, other.OnCommandError),
		OnActivation:   chain(h.OnActivation, other.OnActivation),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
