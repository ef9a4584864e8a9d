package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/optigate/pkg/domain"
)

// Queue is a pre-initialization command queue.
// It stands in for the host before the real client is attached: commands are
// buffered in order and handed over on Drain. It exposes no fields and always
// reports itself as unavailable.
type Queue struct {
	cmds []domain.Command
	mu   sync.Mutex
}

// NewQueue creates an empty pre-initialization queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Lookup always fails: a queue carries no host state.
func (q *Queue) Lookup(ctx context.Context, key string) (any, error) {
	return nil, domain.ErrFieldNotFound
}

// Push buffers cmd.
func (q *Queue) Push(ctx context.Context, cmd domain.Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cmds = append(q.cmds, cmd)
	return nil
}

// Probe reports the queue as unavailable.
func (q *Queue) Probe(ctx context.Context) error {
	return domain.ErrHostUnavailable
}

// Drain removes and returns the buffered commands.
func (q *Queue) Drain(ctx context.Context) ([]domain.Command, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	cmds := q.cmds
	q.cmds = nil
	if cmds == nil {
		cmds = []domain.Command{}
	}
	return cmds, nil
}

// Len returns the number of buffered commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.cmds)
}

// Commands returns the buffered commands without draining them.
func (q *Queue) Commands() []domain.Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.cmds)
}
