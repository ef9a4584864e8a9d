package optigate_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/optigate"
	"github.com/aretw0/optigate/pkg/adapters/memory"
	"github.com/aretw0/optigate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableHost is a host whose probe always fails.
type unreachableHost struct {
	*memory.Host
}

func (unreachableHost) Probe(context.Context) error {
	return errors.New("connection refused")
}

func seededHost(t *testing.T, fields map[string]any, opts ...memory.Option) *memory.Host {
	t.Helper()
	host := memory.NewHost(opts...)
	for k, v := range fields {
		require.NoError(t, host.Seed(context.Background(), k, v))
	}
	return host
}

func TestQueries_NoHost(t *testing.T) {
	ctx := context.Background()
	c := optigate.New(nil)

	assert.False(t, c.Available(ctx))
	assert.Zero(t, c.AllExperiments(ctx).Len())
	assert.Equal(t, []string{}, c.ActiveExperiments(ctx))
	assert.Equal(t, map[string]domain.Variation{}, c.AllVariations(ctx))
	assert.Equal(t, map[string]any{}, c.VariationMap(ctx))
	assert.Equal(t, map[string]string{}, c.VariationNamesMap(ctx))
	assert.Equal(t, map[string][]string{}, c.VariationIDsMap(ctx))
}

func TestQueries_MissingFields(t *testing.T) {
	ctx := context.Background()
	c := optigate.New(memory.NewHost())

	assert.True(t, c.Available(ctx))
	assert.Zero(t, c.AllExperiments(ctx).Len())
	assert.Equal(t, []string{}, c.ActiveExperiments(ctx))
	assert.Equal(t, map[string][]string{}, c.VariationIDsMap(ctx))
}

func TestQueries_UnreachableHost(t *testing.T) {
	ctx := context.Background()
	host := unreachableHost{seededHost(t, map[string]any{
		domain.FieldActiveExperiments: []string{"A"},
	})}
	c := optigate.New(host)

	assert.False(t, c.Available(ctx))
	assert.Equal(t, []string{}, c.ActiveExperiments(ctx))
}

func TestQueries_LooselyTypedFields(t *testing.T) {
	ctx := context.Background()
	host := seededHost(t, map[string]any{
		domain.FieldAllExperiments: map[string]any{
			"B": map[string]any{"name": "Experiment B", "enabled": true, "percentage": 50},
			"A": map[string]any{"name": "Experiment A", "enabled": "false"},
		},
		domain.FieldActiveExperiments: []any{"A", "B"},
		domain.FieldAllVariations: map[string]any{
			"V1": map[string]any{"name": "Variant A", "code": "JSCODE"},
		},
		domain.FieldVariationIDsMap: map[string]any{
			"A": []any{"V1"},
			"B": "V2",
		},
		domain.FieldVariationNamesMap: "not a map",
	})
	c := optigate.New(host)

	experiments := c.AllExperiments(ctx)
	require.Equal(t, 2, experiments.Len())
	// Plain maps have no order, keys are sorted
	assert.Equal(t, "A", experiments.Oldest().Key)

	b, ok := experiments.Get("B")
	require.True(t, ok)
	assert.Equal(t, "B", b.ID)
	assert.True(t, b.Enabled)
	assert.Equal(t, 50, b.Extra["percentage"])

	a, _ := experiments.Get("A")
	assert.False(t, a.Enabled)

	assert.Equal(t, []string{"A", "B"}, c.ActiveExperiments(ctx))
	assert.Equal(t, domain.Variation{ID: "V1", Name: "Variant A", Code: "JSCODE"}, c.AllVariations(ctx)["V1"])
	assert.Equal(t, map[string][]string{"A": {"V1"}, "B": {"V2"}}, c.VariationIDsMap(ctx))
	assert.Equal(t, map[string]string{}, c.VariationNamesMap(ctx), "malformed fields fall back to the default")
}

func TestResolution_UnknownName(t *testing.T) {
	ctx := context.Background()
	c := optigate.New(seededHost(t, map[string]any{
		domain.FieldAllExperiments: domain.NewExperiments(
			domain.Experiment{ID: "A", Name: "Experiment A", Enabled: true},
		),
		domain.FieldActiveExperiments: []string{"A"},
	}))

	for _, name := range []string{"Experiment Z", "", "experiment a"} {
		t.Run(name, func(t *testing.T) {
			_, ok := c.ExperimentID(ctx, name)
			assert.False(t, ok)
			assert.Nil(t, c.ExperimentByName(ctx, name))
			assert.False(t, c.IsEnabled(ctx, name))
			assert.False(t, c.IsActive(ctx, name))
			assert.True(t, c.IsNameUnique(ctx, name))
			assert.Nil(t, c.Variant(ctx, name))
			assert.Empty(t, c.PossibleIDs(ctx, name))
		})
	}
}

func TestResolution_DuplicateNames(t *testing.T) {
	ctx := context.Background()
	host := seededHost(t, map[string]any{
		domain.FieldAllExperiments: domain.NewExperiments(
			domain.Experiment{ID: "A", Name: "Experiment A", Enabled: true},
			domain.Experiment{ID: "B", Name: "Experiment A", Enabled: true},
		),
	})
	c := optigate.New(host)

	assert.Equal(t, []string{"A", "B"}, c.PossibleIDs(ctx, "Experiment A"))
	id, ok := c.ExperimentID(ctx, "Experiment A")
	require.True(t, ok)
	assert.Equal(t, "B", id, "last registered experiment wins")
	assert.Equal(t, "B", c.ExperimentByName(ctx, "Experiment A").ID)
	assert.False(t, c.IsNameUnique(ctx, "Experiment A"))
	assert.False(t, c.Activate(ctx, "Experiment A"))
	assert.Nil(t, c.Variant(ctx, "Experiment A"))
	assert.Empty(t, host.Commands())
}

func TestExperimentByID(t *testing.T) {
	ctx := context.Background()
	c := optigate.New(seededHost(t, map[string]any{
		domain.FieldAllExperiments: map[string]domain.Experiment{
			"A": {Name: "Experiment A", Enabled: true},
		},
	}))

	exp := c.ExperimentByID(ctx, "A")
	require.NotNil(t, exp)
	assert.Equal(t, domain.Experiment{ID: "A", Name: "Experiment A", Enabled: true}, *exp)
	assert.Nil(t, c.ExperimentByID(ctx, "missing"))
}

func TestActivate(t *testing.T) {
	experiments := domain.NewExperiments(
		domain.Experiment{ID: "A", Name: "Experiment A", Enabled: true},
		domain.Experiment{ID: "B", Name: "Experiment B", Enabled: true},
		domain.Experiment{ID: "C", Name: "Experiment C", Enabled: false},
	)

	t.Run("Without Host", func(t *testing.T) {
		assert.False(t, optigate.New(nil).Activate(context.Background(), "Experiment A"))
	})

	t.Run("Unreachable Host", func(t *testing.T) {
		host := unreachableHost{seededHost(t, map[string]any{domain.FieldAllExperiments: experiments})}
		assert.False(t, optigate.New(host).Activate(context.Background(), "Experiment A"))
		assert.Empty(t, host.Commands())
	})

	t.Run("Disabled Experiment", func(t *testing.T) {
		host := seededHost(t, map[string]any{domain.FieldAllExperiments: experiments}, memory.WithAutoActivate())
		c := optigate.New(host)
		assert.False(t, c.Activate(context.Background(), "Experiment C"))
		assert.Empty(t, host.Commands())
	})

	t.Run("Non-Activated Experiment", func(t *testing.T) {
		ctx := context.Background()
		host := seededHost(t, map[string]any{domain.FieldAllExperiments: experiments}, memory.WithAutoActivate())
		c := optigate.New(host)

		assert.False(t, c.IsActive(ctx, "Experiment A"))
		assert.True(t, c.Activate(ctx, "Experiment A"))
		assert.True(t, c.IsActive(ctx, "Experiment A"))
		assert.True(t, c.Activate(ctx, "Experiment B"))
		assert.Equal(t, []domain.Command{
			domain.NewCommand(domain.MethodActivate, "A"),
			domain.NewCommand(domain.MethodActivate, "B"),
		}, host.Commands())
	})

	t.Run("Already Activated Experiment", func(t *testing.T) {
		ctx := context.Background()
		host := seededHost(t, map[string]any{
			domain.FieldAllExperiments:    experiments,
			domain.FieldActiveExperiments: []string{"A", "B"},
		}, memory.WithAutoActivate())
		c := optigate.New(host)

		assert.True(t, c.Activate(ctx, "Experiment A"))
		assert.True(t, c.Activate(ctx, "Experiment A"))
		assert.Empty(t, host.Commands(), "active experiments are not activated again")
	})

	t.Run("Host Does Not Activate", func(t *testing.T) {
		ctx := context.Background()
		host := seededHost(t, map[string]any{domain.FieldAllExperiments: experiments})
		c := optigate.New(host)

		// The command is queued, but the host has not processed it yet
		assert.False(t, c.Activate(ctx, "Experiment A"))
		assert.Len(t, host.Commands(), 1)
	})
}

func TestVariant(t *testing.T) {
	ctx := context.Background()
	experiments := domain.NewExperiments(
		domain.Experiment{ID: "A", Name: "Experiment A", Enabled: true},
		domain.Experiment{ID: "B", Name: "Experiment B", Enabled: true},
		domain.Experiment{ID: "C", Name: "Experiment C", Enabled: false},
	)
	c := optigate.New(seededHost(t, map[string]any{
		domain.FieldAllExperiments:    experiments,
		domain.FieldActiveExperiments: []string{"A", "C"},
		domain.FieldVariationIDsMap:   map[string][]string{"A": {"V1"}, "B": {"V2"}, "C": {"V3"}},
	}))

	assert.Equal(t, []string{"V1"}, c.Variant(ctx, "Experiment A"))
	assert.Nil(t, c.Variant(ctx, "Experiment B"), "not active")
	assert.Nil(t, c.Variant(ctx, "Experiment C"), "not enabled")
	assert.Nil(t, optigate.New(nil).Variant(ctx, "Experiment A"))
}

func TestTag(t *testing.T) {
	ctx := context.Background()

	t.Run("Merges Objects", func(t *testing.T) {
		host := memory.NewHost()
		c := optigate.New(host)

		require.NoError(t, c.Tag(ctx, map[string]any{"a": 1}, domain.Tags{"b": 2}))
		assert.Equal(t, []domain.Command{
			domain.NewCommand(domain.MethodCustomTag, domain.Tags{"a": 1, "b": 2}),
		}, host.Commands())
	})

	t.Run("Later Keys Win", func(t *testing.T) {
		host := memory.NewHost()
		c := optigate.New(host)

		require.NoError(t, c.Tag(ctx, map[string]string{"foo": "bar", "bar": "baz"}, map[string]any{"foo": "qux"}))
		cmds := host.Commands()
		require.Len(t, cmds, 1)
		assert.Equal(t, domain.Tags{"foo": "qux", "bar": "baz"}, cmds[0].Args[0])
	})

	t.Run("Struct Tags", func(t *testing.T) {
		host := memory.NewHost()
		c := optigate.New(host)

		type plan struct {
			Tier  string `mapstructure:"tier"`
			Seats int    `mapstructure:"seats"`
		}
		require.NoError(t, c.Tag(ctx, &plan{Tier: "pro", Seats: 3}))
		cmds := host.Commands()
		require.Len(t, cmds, 1)
		assert.Equal(t, domain.Tags{"tier": "pro", "seats": 3}, cmds[0].Args[0])
	})

	t.Run("Invalid Type", func(t *testing.T) {
		host := memory.NewHost()
		c := optigate.New(host)

		for _, bad := range []any{5, "user", nil, []string{"a"}} {
			err := c.Tag(ctx, map[string]any{"a": 1}, bad)
			assert.ErrorIs(t, err, domain.ErrInvalidTagType)
		}
		assert.Empty(t, host.Commands(), "nothing is enqueued when a tag is rejected")
	})
}

func TestTrack(t *testing.T) {
	ctx := context.Background()
	host := memory.NewHost()
	c := optigate.New(host)

	c.Track(ctx, "my-event")
	c.Track(ctx, "my-event", optigate.WithRevenue(100))

	assert.Equal(t, []domain.Command{
		domain.NewCommand(domain.MethodTrackEvent, "my-event", domain.Metadata{}),
		domain.NewCommand(domain.MethodTrackEvent, "my-event", domain.Metadata{"revenue": int64(100)}),
	}, host.Commands())
}

func TestCall_FailuresAreSuppressed(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	var failed []domain.Command
	host := memory.NewHost(memory.WithPushHandler(func(cmd domain.Command) error {
		if cmd.Method == domain.MethodTrackEvent {
			return errors.New("queue closed")
		}
		if cmd.Method == "explode" {
			panic("host bug")
		}
		return nil
	}))
	c := optigate.New(host,
		optigate.WithLogger(logger),
		optigate.WithLifecycleHooks(domain.LifecycleHooks{
			OnCommandError: func(_ context.Context, e *domain.CommandEvent) {
				failed = append(failed, e.Command)
			},
		}),
	)

	assert.NotPanics(t, func() {
		c.Track(ctx, "evt")
		c.Call(ctx, "explode")
	})
	assert.Len(t, failed, 2)
	assert.Contains(t, logs.String(), "failed to enqueue host command")
	assert.Contains(t, logs.String(), "queue closed")
	assert.Empty(t, host.Commands())
}

func TestCall_BuffersUntilAttached(t *testing.T) {
	ctx := context.Background()
	c := optigate.New(nil)

	c.Track(ctx, "early")
	c.ActivateExperiment(ctx, "A")

	queue, ok := c.Host().(*memory.Queue)
	require.True(t, ok, "a pre-initialization queue is created on first call")
	assert.Equal(t, 2, queue.Len())
	assert.False(t, c.Available(ctx))

	host := memory.NewHost()
	require.NoError(t, c.Attach(ctx, host))

	assert.True(t, c.Available(ctx))
	assert.Equal(t, []domain.Command{
		domain.NewCommand(domain.MethodTrackEvent, "early", domain.Metadata{}),
		domain.NewCommand(domain.MethodActivate, "A"),
	}, host.Commands())
	assert.Zero(t, queue.Len())
}

func TestAttach_Nil(t *testing.T) {
	assert.Error(t, optigate.New(nil).Attach(context.Background(), nil))
}

func TestLifecycleHooks_Activation(t *testing.T) {
	ctx := context.Background()
	var events []domain.ActivationEvent
	var commands int
	record := domain.LifecycleHooks{
		OnActivation: func(_ context.Context, e *domain.ActivationEvent) {
			events = append(events, *e)
		},
	}
	count := domain.LifecycleHooks{
		OnCommand: func(context.Context, *domain.CommandEvent) { commands++ },
	}

	host := seededHost(t, map[string]any{
		domain.FieldAllExperiments: domain.NewExperiments(
			domain.Experiment{ID: "A", Name: "Experiment A", Enabled: true},
			domain.Experiment{ID: "B", Name: "Experiment B"},
		),
	}, memory.WithAutoActivate())
	c := optigate.New(host, optigate.WithLifecycleHooks(record), optigate.WithLifecycleHooks(count))

	c.Activate(ctx, "Experiment A")
	c.Activate(ctx, "Experiment B")

	require.Len(t, events, 2)
	assert.Equal(t, "A", events[0].ExperimentID)
	assert.True(t, events[0].Active)
	assert.Equal(t, domain.EventActivation, events[0].Type)
	assert.Equal(t, domain.ReasonDisabled, events[1].Reason)
	assert.False(t, events[1].Active)
	assert.Equal(t, 1, commands)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	c := optigate.New(seededHost(t, map[string]any{
		domain.FieldAllExperiments: domain.NewExperiments(
			domain.Experiment{ID: "B", Name: "Experiment B"},
			domain.Experiment{ID: "A", Name: "Experiment A", Enabled: true},
		),
		domain.FieldActiveExperiments: []string{"A"},
	}))

	snap := c.Snapshot(ctx)
	assert.True(t, snap.Available)
	require.Len(t, snap.AllExperiments, 2)
	assert.Equal(t, "B", snap.AllExperiments[0].ID)
	assert.Equal(t, []string{"A"}, snap.ActiveExperiments)
	assert.Empty(t, snap.VariationIDsMap)
}
