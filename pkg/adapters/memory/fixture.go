package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/optigate/pkg/domain"
	"github.com/aretw0/optigate/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Fixture describes host state in a file (YAML or JSON).
// Experiments are listed in registration order.
type Fixture struct {
	Experiments    []domain.Experiment `yaml:"experiments" json:"experiments"`
	Active         []string            `yaml:"active" json:"active"`
	Variations     []domain.Variation  `yaml:"variations" json:"variations"`
	VariationMap   map[string]any      `yaml:"variationMap" json:"variationMap"`
	VariationNames map[string]string   `yaml:"variationNames" json:"variationNames"`
	VariationIDs   map[string][]string `yaml:"variationIds" json:"variationIds"`
}

// LoadFixture reads a fixture file. Files ending in .json are parsed as JSON,
// anything else as YAML.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFixture(data, strings.ToLower(filepath.Ext(path)) == ".json")
}

// ParseFixture decodes fixture data.
func ParseFixture(data []byte, isJSON bool) (*Fixture, error) {
	var f Fixture
	if isJSON {
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse fixture json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse fixture yaml: %w", err)
		}
	}

	for i, exp := range f.Experiments {
		if exp.ID == "" {
			return nil, fmt.Errorf("experiment %d (%q) is missing an id", i, exp.Name)
		}
	}
	for i, v := range f.Variations {
		if v.ID == "" {
			return nil, fmt.Errorf("variation %d (%q) is missing an id", i, v.Name)
		}
	}
	return &f, nil
}

// Apply seeds every field described by the fixture into host.
// Sections left empty in the fixture are not written.
func (f *Fixture) Apply(ctx context.Context, host ports.Seeder) error {
	type seed struct {
		key   string
		value any
	}
	var seeds []seed
	add := func(key string, value any) {
		seeds = append(seeds, seed{key, value})
	}

	if len(f.Experiments) > 0 {
		add(domain.FieldAllExperiments, domain.NewExperiments(f.Experiments...))
	}
	if len(f.Active) > 0 {
		add(domain.FieldActiveExperiments, f.Active)
	}
	if len(f.Variations) > 0 {
		variations := make(map[string]domain.Variation, len(f.Variations))
		for _, v := range f.Variations {
			variations[v.ID] = v
		}
		add(domain.FieldAllVariations, variations)
	}
	if len(f.VariationMap) > 0 {
		add(domain.FieldVariationMap, f.VariationMap)
	}
	if len(f.VariationNames) > 0 {
		add(domain.FieldVariationNamesMap, f.VariationNames)
	}
	if len(f.VariationIDs) > 0 {
		add(domain.FieldVariationIDsMap, f.VariationIDs)
	}

	for _, s := range seeds {
		if err := host.Seed(ctx, s.key, s.value); err != nil {
			return fmt.Errorf("failed to seed %s: %w", s.key, err)
		}
	}
	return nil
}
