package hostfunc

import (
	"context"
	"io"
	"sync"

	"github.com/caffeineduck/hostbind/hostcall"
)

// LogEndpoints serves named append-only log sinks. Each message is
// written to the endpoint's writer followed by a newline.
type LogEndpoints struct {
	mu      sync.Mutex
	writers map[string]io.Writer
	handles *handleTable[string]
}

func NewLogEndpoints(endpoints map[string]io.Writer) *LogEndpoints {
	writers := make(map[string]io.Writer, len(endpoints))
	for name, w := range endpoints {
		writers[name] = w
	}
	return &LogEndpoints{
		writers: writers,
		handles: newHandleTable[string](),
	}
}

// EndpointGet resolves an endpoint name to a fresh handle.
// Args: name.
func (l *LogEndpoints) EndpointGet(ctx context.Context, args []any) (hostcall.Status, []any) {
	name, ok := hostcall.ArgBytes(args, 0)
	if !ok || len(name) == 0 {
		return hostcall.StatusInvalidArgument, nil
	}
	l.mu.Lock()
	_, exists := l.writers[string(name)]
	l.mu.Unlock()
	if !exists {
		return hostcall.StatusInvalidArgument, nil
	}
	h, ok := l.handles.open(string(name))
	if !ok {
		return hostcall.StatusError, nil
	}
	return hostcall.StatusOK, []any{h}
}

// Write appends one message.
// Args: handle, message.
func (l *LogEndpoints) Write(ctx context.Context, args []any) (hostcall.Status, []any) {
	h, ok := hostcall.ArgHandle(args, 0)
	if !ok {
		return hostcall.StatusInvalidArgument, nil
	}
	name, ok := l.handles.get(h)
	if !ok {
		return hostcall.StatusInvalidHandle, nil
	}
	msg, ok := hostcall.ArgBytes(args, 1)
	if !ok {
		return hostcall.StatusInvalidArgument, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	line := make([]byte, 0, len(msg)+1)
	line = append(line, msg...)
	line = append(line, '\n')
	if _, err := l.writers[name].Write(line); err != nil {
		return hostcall.StatusError, nil
	}
	return hostcall.StatusOK, []any{len(msg)}
}
