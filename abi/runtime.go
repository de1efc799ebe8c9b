package abi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/caffeineduck/hostbind/hostcall"
)

// Option configures a Runtime.
type Option func(*runtimeConfig)

type runtimeConfig struct {
	memoryLimitPages uint32
	logger           *zap.Logger
}

// WithMemoryLimit caps guest memory at pages of 64KB each. 0 keeps the
// wazero default.
func WithMemoryLimit(pages uint32) Option {
	return func(c *runtimeConfig) {
		c.memoryLimitPages = pages
	}
}

// WithLogger sets the logger for guest hostcall diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *runtimeConfig) {
		c.logger = l
	}
}

// Runtime runs guest modules against the host modules. Compiled guests
// are cached by the SHA-256 of their bytes.
type Runtime struct {
	runtime  wazero.Runtime
	compiled map[string]wazero.CompiledModule
	mu       sync.Mutex
	closed   bool
}

// NewRuntime creates a wazero runtime with WASI and the host modules
// backed by t.
func NewRuntime(ctx context.Context, t hostcall.Transport, opts ...Option) (*Runtime, error) {
	var cfg runtimeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	rtConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cfg.memoryLimitPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(cfg.memoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}
	if err := NewHost(t, cfg.logger).Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, err
	}

	return &Runtime{
		runtime:  rt,
		compiled: make(map[string]wazero.CompiledModule),
	}, nil
}

// Run compiles guest and runs it to completion. name is the guest's
// program name (argv[0]) and labels errors.
func (r *Runtime) Run(ctx context.Context, name string, guest []byte, stdout, stderr io.Writer) error {
	compiled, err := r.compile(ctx, name, guest)
	if err != nil {
		return err
	}

	modConfig := wazero.NewModuleConfig().
		WithName("").
		WithArgs(name)
	if stdout != nil {
		modConfig = modConfig.WithStdout(stdout)
	}
	if stderr != nil {
		modConfig = modConfig.WithStderr(stderr)
	}

	mod, err := r.runtime.InstantiateModule(ctx, compiled, modConfig)
	if err != nil {
		var exit *sys.ExitError
		if errors.As(err, &exit) && exit.ExitCode() == 0 {
			return nil
		}
		return fmt.Errorf("run %s: %w", name, err)
	}
	return mod.Close(ctx)
}

func (r *Runtime) compile(ctx context.Context, name string, guest []byte) (wazero.CompiledModule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("runtime closed")
	}
	sum := sha256.Sum256(guest)
	key := hex.EncodeToString(sum[:])
	if compiled, ok := r.compiled[key]; ok {
		return compiled, nil
	}
	compiled, err := r.runtime.CompileModule(ctx, guest)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	r.compiled[key] = compiled
	return compiled, nil
}

// Close releases the runtime and every compiled module.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.runtime.Close(ctx)
}
