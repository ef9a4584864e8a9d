package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/aretw0/optigate/pkg/domain"
)

// State is the experiment state injected into a connected component.
// Experiment and Variant are nil when they cannot be resolved.
type State struct {
	Experiment *domain.Experiment `json:"experiment"`
	Variant    *domain.Variation  `json:"variant"`
	IsActive   bool               `json:"isActive"`
}

// Resolver is the part of the client a connected component needs.
// *optigate.Client implements it.
type Resolver interface {
	Activate(ctx context.Context, name string) bool
	ExperimentByName(ctx context.Context, name string) *domain.Experiment
	Variant(ctx context.Context, name string) []string
	AllVariations(ctx context.Context) map[string]domain.Variation
}

// Component renders props together with the injected experiment state.
type Component[P any] func(props P, state State) templ.Component

// Connect returns a wrapper binding components to the experiment named name.
// The wrapped component resolves its State on each render; props are passed
// through unchanged.
func Connect[P any](r Resolver, name string) func(Component[P]) func(P) templ.Component {
	return func(component Component[P]) func(P) templ.Component {
		return func(props P) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				state := Resolve(ctx, r, name)
				return component(props, state).Render(WithState(ctx, name, state), w)
			})
		}
	}
}

// Resolve activates the experiment named name and collects its State.
func Resolve(ctx context.Context, r Resolver, name string) State {
	state := State{
		IsActive:   r.Activate(ctx, name),
		Experiment: r.ExperimentByName(ctx, name),
	}
	if ref := r.Variant(ctx, name); len(ref) > 0 {
		if v, ok := r.AllVariations(ctx)[ref[0]]; ok {
			state.Variant = &v
		}
	}
	return state
}

type stateKey string

// WithState stores the state of the experiment named name on ctx.
func WithState(ctx context.Context, name string, state State) context.Context {
	return context.WithValue(ctx, stateKey(name), state)
}

// StateFromContext returns the state stored by a connected component for the
// experiment named name.
func StateFromContext(ctx context.Context, name string) (State, bool) {
	state, ok := ctx.Value(stateKey(name)).(State)
	return state, ok
}

// Switch picks the component matching the state's variation by name, falling
// back to the "default" entry. It renders nothing if neither exists.
func Switch(state State, components map[string]domain.Result[templ.Component]) templ.Component {
	c := domain.Variate(components, state.Variant)
	if c == nil {
		return templ.NopComponent
	}
	return c
}
