/*
Package optigate is a thin integration layer between a Go web application and
an Optimizely-style experimentation host.

The host owns everything interesting: bucketing, activation bookkeeping and
network reporting. optigate only reads the state the host exposes and appends
commands to its queue, so the same application code can run against an
in-memory host in tests, a Redis-backed host shared by replicas, or no host at
all (every query then degrades to an empty result).

# Concept

The host is injected as a ports.Host rather than read from a global. A Client
wraps it and offers four groups of operations:

  - Queries: AllExperiments, ActiveExperiments, AllVariations and the three variation maps.
  - Resolution: name to ID (last registered wins on collisions), IsEnabled, IsNameUnique, IsActive, Activate, Variant.
  - Commands: Call, ActivateExperiment, Tag, Track. Enqueue failures are logged, never returned.
  - Variate (pkg/domain) and Connect (pkg/view) to branch rendering on the current variation.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/optigate"
		"github.com/aretw0/optigate/pkg/adapters/memory"
		"github.com/aretw0/optigate/pkg/domain"
	)

	func main() {
		ctx := context.Background()

		host := memory.NewHost(memory.WithAutoActivate())
		_ = host.Seed(ctx, domain.FieldAllExperiments, domain.NewExperiments(
			domain.Experiment{ID: "A", Name: "Checkout", Enabled: true},
		))

		client := optigate.New(host)
		if client.Activate(ctx, "Checkout") {
			log.Println("variation ids:", client.Variant(ctx, "Checkout"))
		}
		client.Track(ctx, "purchase", optigate.WithRevenue(1999))
	}
*/
package optigate
