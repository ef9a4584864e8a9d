package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_Tuple(t *testing.T) {
	cmd := NewCommand(MethodTrackEvent, "evt", Metadata{KeyRevenue: int64(100)})
	assert.Equal(t, []any{"trackEvent", "evt", Metadata{"revenue": int64(100)}}, cmd.Tuple())
	assert.Equal(t, []any{"activate"}, NewCommand(MethodActivate).Tuple())
	assert.Equal(t, "activate[A]", NewCommand(MethodActivate, "A").String())
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var order []string
	first := LifecycleHooks{
		OnCommand: func(context.Context, *CommandEvent) { order = append(order, "first") },
	}
	second := LifecycleHooks{
		OnCommand:    func(context.Context, *CommandEvent) { order = append(order, "second") },
		OnActivation: func(context.Context, *ActivationEvent) { order = append(order, "activation") },
	}

	merged := first.Merge(second)
	require.NotNil(t, merged.OnCommand)
	assert.Nil(t, merged.OnCommandError)

	merged.OnCommand(context.Background(), &CommandEvent{})
	merged.OnActivation(context.Background(), &ActivationEvent{})
	assert.Equal(t, []string{"first", "second", "activation"}, order)
}

func TestNewExperiments_KeepsOrder(t *testing.T) {
	m := NewExperiments(
		Experiment{ID: "B", Name: "b"},
		Experiment{ID: "A", Name: "a"},
		Experiment{ID: "B", Name: "b2"},
	)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "B", m.Oldest().Key)
	assert.Equal(t, "b2", m.Oldest().Value.Name)
}
