package optigate

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/optigate/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// AllExperiments returns every registered experiment keyed by ID, in host
// registration order. Empty when the host or the field is absent.
func (c *Client) AllExperiments(ctx context.Context) *domain.Experiments {
	raw, ok := c.lookup(ctx, domain.FieldAllExperiments)
	if !ok {
		return domain.NewExperiments()
	}
	experiments, err := toExperiments(raw)
	if err != nil {
		c.logger.Debug("ignoring malformed host field", "field", domain.FieldAllExperiments, "error", err)
		return domain.NewExperiments()
	}
	return experiments
}

// ActiveExperiments returns the IDs of the experiments activated for the visitor.
func (c *Client) ActiveExperiments(ctx context.Context) []string {
	return field(ctx, c, domain.FieldActiveExperiments, []string{})
}

// AllVariations returns every registered variation keyed by ID.
func (c *Client) AllVariations(ctx context.Context) map[string]domain.Variation {
	variations := field(ctx, c, domain.FieldAllVariations, map[string]domain.Variation{})
	out := make(map[string]domain.Variation, len(variations))
	for id, v := range variations {
		if v.ID == "" {
			v.ID = id
		}
		out[id] = v
	}
	return out
}

// VariationMap returns, per experiment ID the visitor is bucketed in, the
// host's variation payload (typically the variation index).
func (c *Client) VariationMap(ctx context.Context) map[string]any {
	return field(ctx, c, domain.FieldVariationMap, map[string]any{})
}

// VariationNamesMap returns, per experiment ID the visitor is bucketed in,
// the variation name.
func (c *Client) VariationNamesMap(ctx context.Context) map[string]string {
	return field(ctx, c, domain.FieldVariationNamesMap, map[string]string{})
}

// VariationIDsMap returns, per experiment ID the visitor is bucketed in, the
// variation IDs.
func (c *Client) VariationIDsMap(ctx context.Context) map[string][]string {
	return field(ctx, c, domain.FieldVariationIDsMap, map[string][]string{})
}

// Snapshot copies every query field into a single read-only view.
func (c *Client) Snapshot(ctx context.Context) domain.Snapshot {
	snap := domain.Snapshot{
		Available:         c.Available(ctx),
		AllExperiments:    []domain.Experiment{},
		ActiveExperiments: c.ActiveExperiments(ctx),
		AllVariations:     c.AllVariations(ctx),
		VariationMap:      c.VariationMap(ctx),
		VariationNamesMap: c.VariationNamesMap(ctx),
		VariationIDsMap:   c.VariationIDsMap(ctx),
	}
	for pair := c.AllExperiments(ctx).Oldest(); pair != nil; pair = pair.Next() {
		snap.AllExperiments = append(snap.AllExperiments, withID(pair.Key, pair.Value))
	}
	return snap
}

// lookup reads a raw field, hiding unavailability and lookup failures.
func (c *Client) lookup(ctx context.Context, key string) (any, bool) {
	raw, err := c.hostField(ctx, key)
	if err != nil {
		c.logger.Debug("host field unavailable", "field", key, "error", err)
		return nil, false
	}
	return raw, raw != nil
}

// field reads key as T. Values already of type T are returned as is; loosely
// typed values (decoded JSON, YAML) go through mapstructure. Anything else
// yields def.
func field[T any](ctx context.Context, c *Client, key string, def T) T {
	raw, ok := c.lookup(ctx, key)
	if !ok {
		return def
	}
	if v, ok := raw.(T); ok {
		return v
	}

	var out T
	if err := decode(raw, &out); err != nil {
		c.logger.Debug("ignoring malformed host field", "field", key, "error", err)
		return def
	}
	return out
}

func decode(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// toExperiments normalises the shapes a host may use for its experiment
// mapping. Plain Go maps carry no order, so their keys are sorted to keep
// resolution deterministic.
func toExperiments(raw any) (*domain.Experiments, error) {
	switch v := raw.(type) {
	case *domain.Experiments:
		return v, nil
	case []domain.Experiment:
		return domain.NewExperiments(v...), nil
	case map[string]domain.Experiment:
		out := domain.NewExperiments()
		for _, id := range sortedKeys(v) {
			out.Set(id, withID(id, v[id]))
		}
		return out, nil
	case map[string]any:
		out := domain.NewExperiments()
		for _, id := range sortedKeys(v) {
			var exp domain.Experiment
			if err := decode(v[id], &exp); err != nil {
				return nil, fmt.Errorf("experiment %s: %w", id, err)
			}
			out.Set(id, withID(id, exp))
		}
		return out, nil
	case []any:
		var list []domain.Experiment
		if err := decode(v, &list); err != nil {
			return nil, err
		}
		return domain.NewExperiments(list...), nil
	}
	return nil, fmt.Errorf("unsupported experiments type %T", raw)
}

func withID(id string, exp domain.Experiment) domain.Experiment {
	if exp.ID == "" {
		exp.ID = id
	}
	return exp
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
