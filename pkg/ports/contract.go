package ports

import (
	"context"
	"testing"

	"github.com/aretw0/optigate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractHost is a host that can be exercised by RunHostContract.
type ContractHost interface {
	Host
	Seeder
	Drainer
}

// RunHostContract runs a suite of tests to verify that a Host implementation
// adheres to the defined interface contract.
func RunHostContract(t *testing.T, host ContractHost) {
	ctx := context.Background()

	t.Run("Lookup Missing Field", func(t *testing.T) {
		_, err := host.Lookup(ctx, "missing-field")
		assert.ErrorIs(t, err, domain.ErrFieldNotFound)
	})

	t.Run("Seed and Lookup Experiments", func(t *testing.T) {
		experiments := domain.NewExperiments(
			domain.Experiment{ID: "B", Name: "Experiment B", Enabled: true},
			domain.Experiment{ID: "A", Name: "Experiment A"},
		)
		require.NoError(t, host.Seed(ctx, domain.FieldAllExperiments, experiments))

		raw, err := host.Lookup(ctx, domain.FieldAllExperiments)
		require.NoError(t, err)
		loaded, ok := raw.(*domain.Experiments)
		require.True(t, ok, "allExperiments should load as *domain.Experiments, got %T", raw)

		var ids []string
		for pair := loaded.Oldest(); pair != nil; pair = pair.Next() {
			ids = append(ids, pair.Key)
		}
		assert.Equal(t, []string{"B", "A"}, ids, "registration order must be preserved")

		exp, found := loaded.Get("B")
		require.True(t, found)
		assert.Equal(t, "Experiment B", exp.Name)
		assert.True(t, exp.Enabled)
	})

	t.Run("Seed and Lookup Active Experiments", func(t *testing.T) {
		require.NoError(t, host.Seed(ctx, domain.FieldActiveExperiments, []string{"A"}))

		raw, err := host.Lookup(ctx, domain.FieldActiveExperiments)
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, raw)
	})

	t.Run("Push and Drain", func(t *testing.T) {
		_, err := host.Drain(ctx)
		require.NoError(t, err)

		require.NoError(t, host.Push(ctx, domain.NewCommand(domain.MethodActivate, "A")))
		require.NoError(t, host.Push(ctx, domain.NewCommand(domain.MethodTrackEvent, "signup", map[string]any{})))

		cmds, err := host.Drain(ctx)
		require.NoError(t, err)
		require.Len(t, cmds, 2)
		assert.Equal(t, domain.MethodActivate, cmds[0].Method)
		assert.Equal(t, []any{"A"}, cmds[0].Args)
		assert.Equal(t, domain.MethodTrackEvent, cmds[1].Method)
		assert.Equal(t, "signup", cmds[1].Args[0])

		cmds, err = host.Drain(ctx)
		require.NoError(t, err)
		assert.Empty(t, cmds)
	})
}
