package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/optigate/pkg/domain"
	backend "github.com/redis/go-redis/v9"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Host implements ports.Host using Redis.
// Fields are stored as JSON documents under "<prefix>field:<key>" and the
// command queue is a list under "<prefix>queue", so several replicas can
// share one host.
type Host struct {
	client   *backend.Client
	prefix   string
	queueTTL time.Duration
}

type Option func(*Host)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(h *Host) {
		h.prefix = prefix
	}
}

// WithQueueTTL expires the command queue if nothing drains it in time.
func WithQueueTTL(ttl time.Duration) Option {
	return func(h *Host) {
		h.queueTTL = ttl
	}
}

// New creates a new Redis host with options.
func New(address, password string, db int, opts ...Option) *Host {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis host from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Host {
	host := &Host{
		client: client,
		prefix: "optigate:",
	}

	for _, opt := range opts {
		opt(host)
	}

	return host
}

func (h *Host) fieldKey(key string) string {
	return h.prefix + "field:" + key
}

func (h *Host) queueKey() string {
	return h.prefix + "queue"
}

// Lookup reads a field. Well-known fields are decoded into their typed form.
func (h *Host) Lookup(ctx context.Context, key string) (any, error) {
	val, err := h.client.Get(ctx, h.fieldKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrFieldNotFound
		}
		return nil, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}

	out, err := decodeField(key, val)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return out, nil
}

func decodeField(key string, data []byte) (any, error) {
	switch key {
	case domain.FieldAllExperiments:
		// The ordered map keeps the JSON object key order on unmarshal
		out := orderedmap.New[string, domain.Experiment]()
		if err := json.Unmarshal(data, out); err != nil {
			return nil, err
		}
		return out, nil
	case domain.FieldActiveExperiments:
		var out []string
		err := json.Unmarshal(data, &out)
		return out, err
	case domain.FieldAllVariations:
		var out map[string]domain.Variation
		err := json.Unmarshal(data, &out)
		return out, err
	case domain.FieldVariationMap:
		var out map[string]any
		err := json.Unmarshal(data, &out)
		return out, err
	case domain.FieldVariationNamesMap:
		var out map[string]string
		err := json.Unmarshal(data, &out)
		return out, err
	case domain.FieldVariationIDsMap:
		var out map[string][]string
		err := json.Unmarshal(data, &out)
		return out, err
	default:
		var out any
		err := json.Unmarshal(data, &out)
		return out, err
	}
}

// Seed writes a field as JSON.
func (h *Host) Seed(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := h.client.Set(ctx, h.fieldKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s to redis: %w", key, err)
	}
	return nil
}

// Push appends cmd to the queue list.
func (h *Host) Push(ctx context.Context, cmd domain.Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	pipe := h.client.Pipeline()
	pipe.RPush(ctx, h.queueKey(), data)
	if h.queueTTL > 0 {
		pipe.Expire(ctx, h.queueKey(), h.queueTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push command to redis: %w", err)
	}
	return nil
}

// Drain atomically reads and clears the queue.
func (h *Host) Drain(ctx context.Context) ([]domain.Command, error) {
	pipe := h.client.TxPipeline()
	items := pipe.LRange(ctx, h.queueKey(), 0, -1)
	pipe.Del(ctx, h.queueKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to drain queue: %w", err)
	}

	cmds := make([]domain.Command, 0, len(items.Val()))
	for _, item := range items.Val() {
		var cmd domain.Command
		if err := json.Unmarshal([]byte(item), &cmd); err != nil {
			return nil, fmt.Errorf("failed to unmarshal command: %w", err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Probe checks that Redis is reachable.
func (h *Host) Probe(ctx context.Context) error {
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrHostUnavailable, err)
	}
	return nil
}

// Close closes the redis client.
func (h *Host) Close() error {
	return h.client.Close()
}
