/*
Package domain contains the core models of the experimentation facade.

It describes what the library reads from an experimentation host and what it
writes back to it. Everything here is owned by the host: the facade never
creates, persists or destroys experiments, it only reads them and appends
commands to the host queue. The package is kept pure and free of I/O.

# Key Entities

  - Experiment: a named, enableable unit of experimentation identified by an opaque ID.
  - Variation: a named alternative configuration served for an experiment.
  - Experiments: the ordered ID -> Experiment mapping, in host registration order.
  - Command: an instruction tuple (method, args...) appended to the host queue.
  - Result: a Value or Lazy outcome selected by Variate for the current variation.
*/
package domain
