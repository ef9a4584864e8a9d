package observability

import (
	"context"

	"github.com/aretw0/optigate/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Activation outcomes recorded when the experiment was not refused.
const (
	OutcomeActive   = "active"
	OutcomeInactive = "inactive"
)

// Metrics records facade activity as Prometheus counters.
type Metrics struct {
	commands      *prometheus.CounterVec
	commandErrors *prometheus.CounterVec
	activations   *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optigate_commands_total",
				Help: "Total number of commands enqueued on the experimentation host",
			},
			[]string{"method"},
		),
		commandErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optigate_command_errors_total",
				Help: "Total number of commands the experimentation host rejected",
			},
			[]string{"method"},
		),
		activations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optigate_activations_total",
				Help: "Activation attempts by experiment and outcome",
			},
			[]string{"experiment", "outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.commands, m.commandErrors, m.activations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks feeding the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommand: func(_ context.Context, e *domain.CommandEvent) {
			m.commands.WithLabelValues(e.Command.Method).Inc()
		},
		OnCommandError: func(_ context.Context, e *domain.CommandEvent) {
			m.commandErrors.WithLabelValues(e.Command.Method).Inc()
		},
		OnActivation: func(_ context.Context, e *domain.ActivationEvent) {
			m.activations.WithLabelValues(e.ExperimentName, outcome(e)).Inc()
		},
	}
}

func outcome(e *domain.ActivationEvent) string {
	switch {
	case e.Reason != "":
		return e.Reason
	case e.Active:
		return OutcomeActive
	}
	return OutcomeInactive
}
