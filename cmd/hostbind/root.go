package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dop251/goja"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/caffeineduck/hostbind/builtins"
	"github.com/caffeineduck/hostbind/hostcall"
	"github.com/caffeineduck/hostbind/hostfunc"
	"github.com/caffeineduck/hostbind/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "hostbind",
	Short: "Call host capabilities through script bindings",
	Long: `hostbind - exercise host capabilities (config stores, log endpoints,
object stores) through the same bindings script code uses.

The host platform is described by a YAML file (--config). Every command
installs the capability types into a fresh script runtime, then runs a
script against them, so errors are reported exactly as script code sees
them.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "f", "", "Platform config file (YAML)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log host calls to stderr")
}

// session is one script runtime bound to one platform.
type session struct {
	ctx      context.Context
	logger   *zap.Logger
	platform *hostfunc.Platform
	registry *hostcall.Registry
	vm       *goja.Runtime
	rt       *builtins.Runtime
	close    func() error
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		l, err := zap.NewDevelopment()
		if err == nil {
			return l
		}
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newSession builds the session described by the command's flags.
func newSession(cmd *cobra.Command) (*session, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openSession(cmd.Context(), cfg, goja.New(), newLogger(debug), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// openSession builds the platform and installs every capability into vm.
// No capability works without its class, so an install failure fails the
// whole session.
func openSession(ctx context.Context, cfg *config.Config, vm *goja.Runtime, logger *zap.Logger, stdout, stderr io.Writer) (*session, error) {
	platform, closePlatform, err := cfg.Build(stdout, stderr)
	if err != nil {
		return nil, err
	}

	registry := platform.Registry()
	gw := hostcall.NewGateway(registry, hostcall.WithLogger(logger))
	rt := builtins.New(vm, gw,
		builtins.WithLogger(logger),
		builtins.WithMaxEntryLen(cfg.Limits.MaxEntryLen))
	if err := rt.Install(); err != nil {
		closePlatform()
		return nil, fmt.Errorf("install capabilities: %w", err)
	}

	return &session{
		ctx:      ctx,
		logger:   logger,
		platform: platform,
		registry: registry,
		vm:       vm,
		rt:       rt,
		close: func() error {
			logger.Sync()
			return closePlatform()
		},
	}, nil
}

// run executes src with the given globals bound and returns its
// completion value.
func (s *session) run(src string, globals map[string]any) (goja.Value, error) {
	for name, v := range globals {
		if err := s.vm.Set(name, v); err != nil {
			return nil, err
		}
	}
	return s.vm.RunString(src)
}

// display renders a script value for the terminal. Undefined renders as
// nothing.
func display(v goja.Value) string {
	switch {
	case v == nil || goja.IsUndefined(v):
		return ""
	case goja.IsNull(v):
		return "null"
	}
	return v.String()
}

// uncaught renders a script error the way the REPL reports it.
func uncaught(err error) string {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return "Uncaught " + ex.Value().String()
	}
	return "Uncaught " + err.Error()
}
