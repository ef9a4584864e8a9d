package optigate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/optigate/pkg/adapters/memory"
	"github.com/aretw0/optigate/pkg/domain"
	"github.com/aretw0/optigate/pkg/ports"
)

// Client is the high-level entry point of the library.
// It reads experiment state from the attached host and enqueues commands on it.
// A Client is safe for concurrent use.
type Client struct {
	host   ports.Host
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	mu     sync.RWMutex
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithLifecycleHooks registers observability hooks.
// Calling it more than once chains the hooks in registration order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Client) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client bound to host. A nil host is allowed: queries then
// return empty results and the first command creates a pre-initialization
// queue, replayed once a real host is attached with Attach.
func New(host ports.Host, opts ...Option) *Client {
	c := &Client{host: host}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return c
}

func (c *Client) current() ports.Host {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.host
}

// Host returns the currently attached host, or nil.
func (c *Client) Host() ports.Host {
	return c.current()
}

// Attach binds host to the client. Commands buffered by a pre-initialization
// queue are replayed into host in order.
func (c *Client) Attach(ctx context.Context, host ports.Host) error {
	if host == nil {
		return fmt.Errorf("attach: host is nil")
	}

	c.mu.Lock()
	prev := c.host
	c.host = host
	c.mu.Unlock()

	queue, ok := prev.(*memory.Queue)
	if !ok {
		return nil
	}

	pending, err := queue.Drain(ctx)
	if err != nil {
		return fmt.Errorf("attach: failed to drain pre-initialization queue: %w", err)
	}

	var errs []error
	for _, cmd := range pending {
		if err := safePush(ctx, host, cmd); err != nil {
			errs = append(errs, fmt.Errorf("replay %s: %w", cmd.Method, err))
		}
	}
	c.logger.Debug("host attached", "replayed", len(pending), "failed", len(errs))
	return errors.Join(errs...)
}

// Available reports whether an experimentation host is attached and reachable.
func (c *Client) Available(ctx context.Context) bool {
	return available(ctx, c.current())
}

func available(ctx context.Context, host ports.Host) bool {
	if host == nil {
		return false
	}
	if p, ok := host.(ports.Prober); ok {
		return p.Probe(ctx) == nil
	}
	return true
}

// hostField is the unguarded accessor: it fails with domain.ErrHostUnavailable
// when no host is available. An empty key returns the host itself; a missing
// field yields nil.
func (c *Client) hostField(ctx context.Context, key string) (any, error) {
	host := c.current()
	if !available(ctx, host) {
		return nil, domain.ErrHostUnavailable
	}
	if key == "" {
		return host, nil
	}

	v, err := host.Lookup(ctx, key)
	if errors.Is(err, domain.ErrFieldNotFound) {
		return nil, nil
	}
	return v, err
}

func (c *Client) emitCommand(ctx context.Context, cmd domain.Command, err error) {
	ev := &domain.CommandEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCommand},
		Command:   cmd,
		Err:       err,
	}
	if err != nil {
		ev.Type = domain.EventCommandError
		if c.hooks.OnCommandError != nil {
			c.hooks.OnCommandError(ctx, ev)
		}
		return
	}
	if c.hooks.OnCommand != nil {
		c.hooks.OnCommand(ctx, ev)
	}
}

func (c *Client) emitActivation(ctx context.Context, ev *domain.ActivationEvent) {
	if c.hooks.OnActivation == nil {
		return
	}
	ev.EventBase = domain.EventBase{Timestamp: time.Now(), Type: domain.EventActivation}
	c.hooks.OnActivation(ctx, ev)
}
