package optigate

import (
	"context"
	"slices"

	"github.com/aretw0/optigate/pkg/domain"
)

// PossibleIDs returns the IDs of every experiment named name, in host
// registration order. Names are not unique, so there may be more than one.
func (c *Client) PossibleIDs(ctx context.Context, name string) []string {
	ids := []string{}
	for pair := c.AllExperiments(ctx).Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Name == name {
			ids = append(ids, pair.Key)
		}
	}
	return ids
}

// ExperimentID resolves an experiment name to an ID.
// When several experiments share the name, the last registered one wins.
func (c *Client) ExperimentID(ctx context.Context, name string) (string, bool) {
	ids := c.PossibleIDs(ctx, name)
	if len(ids) == 0 {
		return "", false
	}
	return ids[len(ids)-1], true
}

// ExperimentByID returns the experiment registered under id, or nil.
func (c *Client) ExperimentByID(ctx context.Context, id string) *domain.Experiment {
	exp, ok := c.AllExperiments(ctx).Get(id)
	if !ok {
		return nil
	}
	exp = withID(id, exp)
	return &exp
}

// ExperimentByName returns the experiment named name, or nil.
func (c *Client) ExperimentByName(ctx context.Context, name string) *domain.Experiment {
	id, ok := c.ExperimentID(ctx, name)
	if !ok {
		return nil
	}
	return c.ExperimentByID(ctx, id)
}

// IsEnabled reports whether the experiment named name exists and is enabled.
// Enabled does not mean active for the current visitor.
func (c *Client) IsEnabled(ctx context.Context, name string) bool {
	exp := c.ExperimentByName(ctx, name)
	return exp != nil && exp.Enabled
}

// IsNameUnique reports whether name resolves to at most one experiment.
func (c *Client) IsNameUnique(ctx context.Context, name string) bool {
	return len(c.PossibleIDs(ctx, name)) <= 1
}

// IsActive reports whether the experiment named name is active for the visitor.
func (c *Client) IsActive(ctx context.Context, name string) bool {
	id, ok := c.ExperimentID(ctx, name)
	if !ok {
		return false
	}
	return slices.Contains(c.ActiveExperiments(ctx), id)
}

// Activate activates the experiment named name for the current visitor and
// reports whether it is active afterwards.
//
// Experiments are refused when no host is available, when the name is
// ambiguous, or when the experiment is disabled. An already active experiment
// is not activated again.
func (c *Client) Activate(ctx context.Context, name string) bool {
	ev := &domain.ActivationEvent{ExperimentName: name}

	switch {
	case !c.Available(ctx):
		ev.Reason = domain.ReasonUnavailable
	case !c.IsNameUnique(ctx, name):
		ev.Reason = domain.ReasonAmbiguous
	case !c.IsEnabled(ctx, name):
		ev.Reason = domain.ReasonDisabled
	}
	if ev.Reason != "" {
		c.logger.Debug("experiment not activated", "experiment", name, "reason", ev.Reason)
		c.emitActivation(ctx, ev)
		return false
	}

	id, ok := c.ExperimentID(ctx, name)
	if ok && !c.IsActive(ctx, name) {
		c.ActivateExperiment(ctx, id)
	}

	ev.ExperimentID = id
	ev.Active = c.IsActive(ctx, name)
	c.emitActivation(ctx, ev)
	return ev.Active
}

// Variant returns the variation IDs the visitor is bucketed in for the
// experiment named name, as stored in the host's variation IDs map. It is
// nil unless the experiment resolves uniquely, is enabled and is active.
// Resolve full variations through AllVariations.
func (c *Client) Variant(ctx context.Context, name string) []string {
	if !c.Available(ctx) ||
		!c.IsNameUnique(ctx, name) ||
		!c.IsEnabled(ctx, name) ||
		!c.IsActive(ctx, name) {
		return nil
	}

	id, _ := c.ExperimentID(ctx, name)
	return c.VariationIDsMap(ctx)[id]
}
