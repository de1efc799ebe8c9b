package hostcall

import (
	"context"
	"sort"
	"sync"
)

// Op implements one named host operation.
type Op func(ctx context.Context, args []any) (Status, []any)

// Registry is an in-process Transport mapping operation names to Go
// implementations.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Op
}

func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Op)}
}

func (r *Registry) Register(name string, op Op) {
	r.mu.Lock()
	r.ops[name] = op
	r.mu.Unlock()
}

func (r *Registry) Get(name string) (Op, bool) {
	r.mu.RLock()
	op, ok := r.ops[name]
	r.mu.RUnlock()
	return op, ok
}

// List returns the registered operation names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call runs the named operation. Unknown operations report
// StatusUnsupported.
func (r *Registry) Call(ctx context.Context, op string, args []any) (Status, []any) {
	fn, ok := r.Get(op)
	if !ok {
		return StatusUnsupported, nil
	}
	return fn(ctx, args)
}

// ArgBytes returns argument i as bytes. Strings are accepted and converted.
func ArgBytes(args []any, i int) ([]byte, bool) {
	if i >= len(args) {
		return nil, false
	}
	switch v := args[i].(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	}
	return nil, false
}

// ArgHandle returns argument i as a Handle.
func ArgHandle(args []any, i int) (Handle, bool) {
	if i >= len(args) {
		return InvalidHandle, false
	}
	h, ok := args[i].(Handle)
	return h, ok
}

// ArgInt returns argument i as an int.
func ArgInt(args []any, i int) (int, bool) {
	if i >= len(args) {
		return 0, false
	}
	n, ok := args[i].(int)
	return n, ok
}
