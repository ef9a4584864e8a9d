package optigate

import (
	"context"
	"fmt"
	"maps"
	"reflect"

	"github.com/aretw0/optigate/pkg/adapters/memory"
	"github.com/aretw0/optigate/pkg/domain"
	"github.com/aretw0/optigate/pkg/ports"
)

// Call appends the command (method, args...) to the host queue.
// Without an attached host, a pre-initialization queue is created first.
// Enqueue failures are logged and never returned: tracking must not break
// the caller because the host misbehaved.
func (c *Client) Call(ctx context.Context, method string, args ...any) {
	c.mu.Lock()
	if c.host == nil {
		c.host = memory.NewQueue()
		c.logger.Debug("no host attached, buffering commands")
	}
	host := c.host
	c.mu.Unlock()

	cmd := domain.NewCommand(method, args...)
	if err := safePush(ctx, host, cmd); err != nil {
		c.logger.Error("failed to enqueue host command", "method", method, "error", err)
		c.emitCommand(ctx, cmd, err)
		return
	}
	c.logger.Debug("host command enqueued", "command", cmd.String())
	c.emitCommand(ctx, cmd, nil)
}

func safePush(ctx context.Context, host ports.Host, cmd domain.Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("host push panicked: %v", r)
		}
	}()
	return host.Push(ctx, cmd)
}

// ActivateExperiment activates an experiment by ID for the current visitor.
func (c *Client) ActivateExperiment(ctx context.Context, id string) {
	c.Call(ctx, domain.MethodActivate, id)
}

// Tag attaches custom tags to the visitor session. Each argument must be a
// key-value object: domain.Tags, a map keyed by string, or a struct (decoded
// through its mapstructure tags). Later keys override earlier ones and a
// single merged command is enqueued.
func (c *Client) Tag(ctx context.Context, tags ...any) error {
	merged := domain.Tags{}
	for _, tag := range tags {
		kv, err := toTags(tag)
		if err != nil {
			return err
		}
		maps.Copy(merged, kv)
	}

	c.Call(ctx, domain.MethodCustomTag, merged)
	return nil
}

func toTags(tag any) (domain.Tags, error) {
	switch v := tag.(type) {
	case domain.Tags:
		return v, nil
	case map[string]any:
		return v, nil
	case map[string]string:
		out := make(domain.Tags, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, nil
	}

	rv := reflect.ValueOf(tag)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct || (rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String) {
		out := domain.Tags{}
		if err := decode(tag, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTagType, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w, got %T", domain.ErrInvalidTagType, tag)
}

// TrackOption configures a tracked event.
type TrackOption func(domain.Metadata)

// WithRevenue attaches an amount of revenue, in cents, to the event.
func WithRevenue(cents int64) TrackOption {
	return func(m domain.Metadata) {
		m[domain.KeyRevenue] = cents
	}
}

// Track records a custom event for the visitor.
func (c *Client) Track(ctx context.Context, event string, opts ...TrackOption) {
	metadata := domain.Metadata{}
	for _, opt := range opts {
		opt(metadata)
	}
	c.Call(ctx, domain.MethodTrackEvent, event, metadata)
}
