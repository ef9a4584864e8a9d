/*
Package ports defines the driven ports (interfaces) of the experimentation facade.

These interfaces decouple the facade from the concrete experimentation host,
so the same resolution logic runs against an in-memory host in tests, a
Redis-backed host shared between replicas, or a pre-initialization queue that
buffers commands until the real host is attached.

# Key Interfaces

  - Host: reads well-known fields and appends commands to the host queue.
  - Prober: optional availability check for hosts backed by a remote service.
  - Seeder: writes host fields (fixtures, tests, the CLI).
  - Drainer: removes and returns the commands waiting in the host queue.
*/
package ports
