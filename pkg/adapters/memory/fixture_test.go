package memory_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/optigate/pkg/adapters/memory"
	"github.com/aretw0/optigate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
experiments:
  - id: B
    name: Checkout
    enabled: true
  - id: A
    name: Homepage
    enabled: false
active: [B]
variations:
  - id: V1
    name: Variant A
    code: JSCODE
variationNames:
  B: Variant A
variationIds:
  B: [V1]
`

func TestLoadFixture_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o644))

	f, err := memory.LoadFixture(path)
	require.NoError(t, err)
	require.Len(t, f.Experiments, 2)
	assert.Equal(t, "B", f.Experiments[0].ID)

	ctx := context.Background()
	host := memory.NewHost()
	require.NoError(t, f.Apply(ctx, host))

	raw, err := host.Lookup(ctx, domain.FieldAllExperiments)
	require.NoError(t, err)
	experiments := raw.(*domain.Experiments)
	assert.Equal(t, "B", experiments.Oldest().Key)
	assert.Equal(t, "A", experiments.Newest().Key)

	raw, err = host.Lookup(ctx, domain.FieldAllVariations)
	require.NoError(t, err)
	assert.Equal(t, "JSCODE", raw.(map[string]domain.Variation)["V1"].Code)

	raw, err = host.Lookup(ctx, domain.FieldVariationIDsMap)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"B": {"V1"}}, raw)

	// Empty sections are not seeded
	_, err = host.Lookup(ctx, domain.FieldVariationMap)
	assert.ErrorIs(t, err, domain.ErrFieldNotFound)
}

func TestLoadFixture_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host.json")
	data := `{"experiments":[{"id":"A","name":"Experiment A","enabled":true}],"active":["A"]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	f, err := memory.LoadFixture(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, f.Active)
	assert.True(t, f.Experiments[0].Enabled)
}

func TestParseFixture_MissingID(t *testing.T) {
	_, err := memory.ParseFixture([]byte("experiments:\n  - name: Orphan\n"), false)
	assert.ErrorContains(t, err, "missing an id")
}
