/*
Package observability exports facade activity to Prometheus.

Metrics plugs into the client through lifecycle hooks:

	metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	client := optigate.New(host, optigate.WithLifecycleHooks(metrics.Hooks()))

Exported series:

  - optigate_commands_total{method}
  - optigate_command_errors_total{method}
  - optigate_activations_total{experiment, outcome}

The activation outcome is "active", "inactive" (the host has not processed
the activation yet) or the refusal reason: "unavailable", "ambiguous",
"disabled".
*/
package observability
