package ports

import (
	"context"

	"github.com/aretw0/optigate/pkg/domain"
)

// Host is the experimentation client the facade reads from and writes to.
type Host interface {
	// Lookup returns the value stored under a host field.
	// Returns domain.ErrFieldNotFound if the field is not set.
	Lookup(ctx context.Context, key string) (any, error)

	// Push appends a command to the host command queue.
	Push(ctx context.Context, cmd domain.Command) error
}

// Prober is implemented by hosts that can report whether they are reachable.
// Hosts that do not implement it are considered available once attached.
type Prober interface {
	Probe(ctx context.Context) error
}

// Seeder is implemented by hosts whose fields can be written by the application.
type Seeder interface {
	Seed(ctx context.Context, key string, value any) error
}

// Drainer is implemented by hosts that expose their pending command queue.
type Drainer interface {
	// Drain removes and returns every queued command, oldest first.
	Drain(ctx context.Context) ([]domain.Command, error)
}
