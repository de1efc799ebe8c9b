package hostfunc

import (
	"context"

	"github.com/caffeineduck/hostbind/hostcall"
)

// Dictionaries serves named, read-only config stores.
type Dictionaries struct {
	cfg     DictionaryConfig
	stores  map[string]map[string]string
	handles *handleTable[string]
}

// NewDictionaries returns config stores backed by the given name -> entries
// map. The map is copied.
func NewDictionaries(stores map[string]map[string]string, opts ...DictionaryOption) *Dictionaries {
	cfg := DefaultDictionaryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	copied := make(map[string]map[string]string, len(stores))
	for name, entries := range stores {
		m := make(map[string]string, len(entries))
		for k, v := range entries {
			m[k] = v
		}
		copied[name] = m
	}
	return &Dictionaries{
		cfg:     cfg,
		stores:  copied,
		handles: newHandleTable[string](),
	}
}

// Open resolves a store name to a fresh handle.
// Args: name.
func (d *Dictionaries) Open(ctx context.Context, args []any) (hostcall.Status, []any) {
	name, ok := hostcall.ArgBytes(args, 0)
	if !ok || len(name) == 0 {
		return hostcall.StatusInvalidArgument, nil
	}
	if _, exists := d.stores[string(name)]; !exists {
		return hostcall.StatusInvalidHandle, nil
	}
	h, ok := d.handles.open(string(name))
	if !ok {
		return hostcall.StatusError, nil
	}
	return hostcall.StatusOK, []any{h}
}

// Get looks up a key. Missing keys report StatusNone; values longer than
// the caller's bound report StatusBufferTooLong.
// Args: handle, key, maxLen.
func (d *Dictionaries) Get(ctx context.Context, args []any) (hostcall.Status, []any) {
	h, ok := hostcall.ArgHandle(args, 0)
	if !ok {
		return hostcall.StatusInvalidArgument, nil
	}
	name, ok := d.handles.get(h)
	if !ok {
		return hostcall.StatusInvalidHandle, nil
	}
	key, ok := hostcall.ArgBytes(args, 1)
	if !ok || len(key) > d.cfg.MaxKeyLen {
		return hostcall.StatusInvalidArgument, nil
	}
	maxLen, ok := hostcall.ArgInt(args, 2)
	if !ok || maxLen < 0 {
		return hostcall.StatusInvalidArgument, nil
	}
	if maxLen > d.cfg.MaxEntryLen {
		maxLen = d.cfg.MaxEntryLen
	}

	val, exists := d.stores[name][string(key)]
	if !exists {
		return hostcall.StatusNone, nil
	}
	if len(val) > maxLen {
		return hostcall.StatusBufferTooLong, nil
	}
	return hostcall.StatusOK, []any{[]byte(val)}
}

// Names lists the configured store names.
func (d *Dictionaries) Names() []string {
	names := make([]string, 0, len(d.stores))
	for n := range d.stores {
		names = append(names, n)
	}
	return names
}
