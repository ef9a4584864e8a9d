package domain

import "fmt"

// Host command methods emitted by the facade.
const (
	MethodActivate   = "activate"
	MethodCustomTag  = "customTag"
	MethodTrackEvent = "trackEvent"
)

// KeyRevenue is the tracking metadata key holding the event revenue (in cents).
const KeyRevenue = "revenue"

// Command is an instruction tuple appended to the host command queue.
// The host drains the queue asynchronously; the facade never reads it back.
type Command struct {
	Method string `json:"method"`
	Args   []any  `json:"args,omitempty"`
}

// NewCommand builds a command tuple.
func NewCommand(method string, args ...any) Command {
	return Command{Method: method, Args: args}
}

// Tuple returns the command in its queue form: [method, args...].
func (c Command) Tuple() []any {
	tuple := make([]any, 0, len(c.Args)+1)
	tuple = append(tuple, c.Method)
	return append(tuple, c.Args...)
}

func (c Command) String() string {
	return fmt.Sprintf("%s%v", c.Method, c.Args)
}

// Tags are custom key-value pairs attached to the visitor session.
type Tags map[string]any

// Metadata carries optional tracking attributes such as revenue.
type Metadata map[string]any
