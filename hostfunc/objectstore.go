package hostfunc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/caffeineduck/hostbind/hostcall"
)

// Object store backends.
const (
	BackendMemDB     = string(dbm.MemDBBackend)
	BackendGoLevelDB = string(dbm.GoLevelDBBackend)
)

// OpenBackend opens a key-value database for an object store. dir is
// ignored by the memdb backend.
func OpenBackend(name, backend, dir string) (dbm.DB, error) {
	switch backend {
	case "", BackendMemDB:
		return dbm.NewMemDB(), nil
	case BackendGoLevelDB:
		db, err := dbm.NewDB(name, dbm.GoLevelDBBackend, dir)
		if err != nil {
			return nil, fmt.Errorf("open object store %s: %w", name, err)
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown object store backend %q", backend)
}

// ObjectStores serves named key-value object stores on cometbft-db
// databases.
type ObjectStores struct {
	cfg     ObjectStoreConfig
	mu      sync.RWMutex
	dbs     map[string]dbm.DB
	handles *handleTable[dbm.DB]
}

func NewObjectStores(opts ...ObjectStoreOption) *ObjectStores {
	cfg := ObjectStoreConfig{
		MaxKeyLen:   DefaultMaxObjectKey,
		MaxValueLen: DefaultMaxObjectLen,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ObjectStores{
		cfg:     cfg,
		dbs:     make(map[string]dbm.DB),
		handles: newHandleTable[dbm.DB](),
	}
}

// Add makes db available under name. The store takes ownership of db.
func (s *ObjectStores) Add(name string, db dbm.DB) error {
	if name == "" {
		return errors.New("object store name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.dbs[name]; exists {
		return fmt.Errorf("object store %q already defined", name)
	}
	s.dbs[name] = db
	return nil
}

// Open resolves a store name to a fresh handle.
// Args: name.
func (s *ObjectStores) Open(ctx context.Context, args []any) (hostcall.Status, []any) {
	name, ok := hostcall.ArgBytes(args, 0)
	if !ok || len(name) == 0 {
		return hostcall.StatusInvalidArgument, nil
	}
	s.mu.RLock()
	db, exists := s.dbs[string(name)]
	s.mu.RUnlock()
	if !exists {
		return hostcall.StatusInvalidHandle, nil
	}
	h, ok := s.handles.open(db)
	if !ok {
		return hostcall.StatusError, nil
	}
	return hostcall.StatusOK, []any{h}
}

// Lookup reads an object. Missing keys report StatusNone.
// Args: handle, key.
func (s *ObjectStores) Lookup(ctx context.Context, args []any) (hostcall.Status, []any) {
	db, key, status := s.target(args)
	if status != hostcall.StatusOK {
		return status, nil
	}
	val, err := db.Get(key)
	if err != nil {
		return hostcall.StatusError, nil
	}
	if val == nil {
		return hostcall.StatusNone, nil
	}
	return hostcall.StatusOK, []any{val}
}

// Insert writes an object, replacing any previous value.
// Args: handle, key, value.
func (s *ObjectStores) Insert(ctx context.Context, args []any) (hostcall.Status, []any) {
	db, key, status := s.target(args)
	if status != hostcall.StatusOK {
		return status, nil
	}
	val, ok := hostcall.ArgBytes(args, 2)
	if !ok {
		return hostcall.StatusInvalidArgument, nil
	}
	if len(val) > s.cfg.MaxValueLen {
		return hostcall.StatusBufferTooLong, nil
	}
	if err := db.Set(key, val); err != nil {
		return hostcall.StatusError, nil
	}
	return hostcall.StatusOK, nil
}

func (s *ObjectStores) target(args []any) (dbm.DB, []byte, hostcall.Status) {
	h, ok := hostcall.ArgHandle(args, 0)
	if !ok {
		return nil, nil, hostcall.StatusInvalidArgument
	}
	db, ok := s.handles.get(h)
	if !ok {
		return nil, nil, hostcall.StatusInvalidHandle
	}
	key, ok := hostcall.ArgBytes(args, 1)
	if !ok || !validObjectKey(key, s.cfg.MaxKeyLen) {
		return nil, nil, hostcall.StatusInvalidArgument
	}
	return db, key, hostcall.StatusOK
}

func validObjectKey(key []byte, maxLen int) bool {
	if len(key) == 0 || len(key) > maxLen {
		return false
	}
	switch string(key) {
	case ".", "..":
		return false
	}
	for _, c := range key {
		if c == '\r' || c == '\n' {
			return false
		}
	}
	return true
}

// Names lists the configured store names.
func (s *ObjectStores) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.dbs))
	for n := range s.dbs {
		names = append(names, n)
	}
	return names
}

// Close closes every backing database. Handles opened before Close report
// StatusInvalidHandle afterwards.
func (s *ObjectStores) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for name, db := range s.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close object store %s: %w", name, err))
		}
	}
	s.dbs = make(map[string]dbm.DB)
	s.handles.reset()
	return errors.Join(errs...)
}
