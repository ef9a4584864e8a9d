package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/optigate/pkg/domain"
)

// Host implements ports.Host in memory.
// Safe for concurrent use.
type Host struct {
	fields       map[string]any
	queue        []domain.Command
	onPush       func(domain.Command) error
	autoActivate bool
	mu           sync.RWMutex
}

// Option configures an in-memory host.
type Option func(*Host)

// WithAutoActivate makes the host apply "activate" commands to its active
// experiments as soon as they are pushed, the way a loaded host does once it
// drains its queue.
func WithAutoActivate() Option {
	return func(h *Host) {
		h.autoActivate = true
	}
}

// WithPushHandler registers a callback invoked for every pushed command.
// A non-nil error rejects the command; it is not queued.
func WithPushHandler(fn func(domain.Command) error) Option {
	return func(h *Host) {
		h.onPush = fn
	}
}

// NewHost creates a new in-memory host with no fields set.
func NewHost(opts ...Option) *Host {
	h := &Host{
		fields: make(map[string]any),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Lookup returns the value stored under key.
func (h *Host) Lookup(ctx context.Context, key string) (any, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	v, ok := h.fields[key]
	if !ok {
		return nil, domain.ErrFieldNotFound
	}
	// Copy sequences on read so callers can't mutate host state through them
	if ids, ok := v.([]string); ok {
		return slices.Clone(ids), nil
	}
	return v, nil
}

// Seed stores value under key, replacing any previous value.
func (h *Host) Seed(ctx context.Context, key string, value any) error {
	if ids, ok := value.([]string); ok {
		value = slices.Clone(ids)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.fields[key] = value
	return nil
}

// Push appends cmd to the queue.
func (h *Host) Push(ctx context.Context, cmd domain.Command) error {
	if h.onPush != nil {
		if err := h.onPush(cmd); err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.queue = append(h.queue, cmd)

	if h.autoActivate && cmd.Method == domain.MethodActivate && len(cmd.Args) > 0 {
		if id, ok := cmd.Args[0].(string); ok {
			active, _ := h.fields[domain.FieldActiveExperiments].([]string)
			if !slices.Contains(active, id) {
				h.fields[domain.FieldActiveExperiments] = append(slices.Clone(active), id)
			}
		}
	}
	return nil
}

// Drain removes and returns the queued commands.
func (h *Host) Drain(ctx context.Context) ([]domain.Command, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cmds := h.queue
	h.queue = nil
	if cmds == nil {
		cmds = []domain.Command{}
	}
	return cmds, nil
}

// Commands returns the queued commands without draining them.
func (h *Host) Commands() []domain.Command {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.queue)
}
