package builtins

import (
	"context"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/caffeineduck/hostbind/hostcall"
)

// Runtime is the binding context for one goja runtime. It is created once
// at startup and holds the installed classes, which are written exactly
// once and read-only afterwards.
type Runtime struct {
	vm          *goja.Runtime
	gw          *hostcall.Gateway
	logger      *zap.Logger
	maxEntryLen int

	classes   [kindCount]*Class
	ctx       context.Context
	inRequest bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger for registration diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithMaxEntryLen sets the buffer bound passed to config store lookups.
func WithMaxEntryLen(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.maxEntryLen = n
		}
	}
}

// New returns a Runtime binding capabilities into vm over gw.
func New(vm *goja.Runtime, gw *hostcall.Gateway, opts ...Option) *Runtime {
	rt := &Runtime{
		vm:          vm,
		gw:          gw,
		logger:      zap.NewNop(),
		maxEntryLen: hostcall.ConfigStoreEntryMaxLen,
		ctx:         context.Background(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Register installs the type described by d as a global. A type can be
// registered once. Non-constructible types lose their global constructor
// but keep full method dispatch on instances.
func (rt *Runtime) Register(d *Descriptor) error {
	if d.Kind < 0 || d.Kind >= kindCount {
		return fmt.Errorf("register %s: unknown kind %d", d.Name, d.Kind)
	}
	if rt.classes[d.Kind] != nil {
		return fmt.Errorf("register %s: already registered", d.Name)
	}
	if d.Slots < 1 {
		return fmt.Errorf("register %s: at least one slot required", d.Name)
	}
	if rt.vm.GlobalObject().Get(d.Name) != nil {
		return fmt.Errorf("register %s: global already defined", d.Name)
	}

	class := &Class{desc: d}
	ctor := rt.vm.ToValue(rt.constructor(class)).(*goja.Object)
	if err := rt.nameFunction(ctor, d.Name, d.CtorArity); err != nil {
		return fmt.Errorf("register %s: %w", d.Name, err)
	}
	class.ctor = ctor
	class.proto = ctor.Get("prototype").(*goja.Object)

	if err := rt.initPrototype(class); err != nil {
		return fmt.Errorf("register %s: %w", d.Name, err)
	}
	if err := rt.vm.Set(d.Name, ctor); err != nil {
		return fmt.Errorf("register %s: %w", d.Name, err)
	}
	if !d.Constructible {
		if err := rt.vm.GlobalObject().Delete(d.Name); err != nil {
			return fmt.Errorf("register %s: %w", d.Name, err)
		}
	}

	rt.classes[d.Kind] = class
	rt.logger.Debug("registered capability",
		zap.String("type", d.Name),
		zap.Int("slots", d.Slots),
		zap.Bool("constructible", d.Constructible))
	return nil
}

func (rt *Runtime) initPrototype(c *Class) error {
	d := c.desc
	err := c.proto.DefineDataPropertySymbol(goja.SymToStringTag, rt.vm.ToValue(d.Name),
		goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE)
	if err != nil {
		return err
	}
	for _, m := range d.Methods {
		fn := rt.vm.ToValue(rt.bind(c, m.Name, m.Arity, m.Fn)).(*goja.Object)
		if err := rt.nameFunction(fn, m.Name, m.Arity); err != nil {
			return err
		}
		if err := c.proto.DefineDataProperty(m.Name, fn, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			return err
		}
	}
	for _, p := range d.Properties {
		get := rt.vm.ToValue(rt.bind(c, p.Name, 0, p.Get)).(*goja.Object)
		if err := rt.nameFunction(get, "get "+p.Name, 0); err != nil {
			return err
		}
		if err := c.proto.DefineAccessorProperty(p.Name, get, nil, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			return err
		}
	}
	return nil
}

// nameFunction replaces the Go symbol name goja derives for native
// functions with the script-visible one.
func (rt *Runtime) nameFunction(fn *goja.Object, name string, length int) error {
	if err := fn.DefineDataProperty("name", rt.vm.ToValue(name), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		return err
	}
	return fn.DefineDataProperty("length", rt.vm.ToValue(length), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE)
}

// Install registers every capability type and the getLogger global.
// Failure leaves the runtime unusable and should abort startup.
func (rt *Runtime) Install() error {
	for _, d := range Descriptors() {
		if err := rt.Register(d); err != nil {
			return err
		}
	}
	if rt.vm.GlobalObject().Get("getLogger") != nil {
		return fmt.Errorf("register getLogger: global already defined")
	}
	getLogger := rt.vm.ToValue(rt.getLogger).(*goja.Object)
	if err := rt.nameFunction(getLogger, "getLogger", 1); err != nil {
		return fmt.Errorf("register getLogger: %w", err)
	}
	if err := rt.vm.Set("getLogger", getLogger); err != nil {
		return fmt.Errorf("register getLogger: %w", err)
	}
	return nil
}

// Class returns the installed class for k.
func (rt *Runtime) Class(k Kind) (*Class, bool) {
	if k < 0 || k >= kindCount {
		return nil, false
	}
	c := rt.classes[k]
	return c, c != nil
}

// BeginRequest marks the start of downstream request handling. Host calls
// made until EndRequest run under ctx. It is called by the request
// lifecycle manager.
func (rt *Runtime) BeginRequest(ctx context.Context) {
	rt.ctx = ctx
	rt.inRequest = true
}

// EndRequest marks the end of downstream request handling.
func (rt *Runtime) EndRequest() {
	rt.ctx = context.Background()
	rt.inRequest = false
}

// HandlingRequest reports whether a downstream request is being handled.
func (rt *Runtime) HandlingRequest() bool { return rt.inRequest }

func (rt *Runtime) constructor(c *Class) func(goja.ConstructorCall) *goja.Object {
	return func(call goja.ConstructorCall) *goja.Object {
		if call.NewTarget == nil {
			panic(rt.vm.NewTypeError("%s constructor: 'new' is required", c.Name()))
		}
		obj, err := rt.construct(c, call.Arguments)
		if err != nil {
			panic(rt.throwable(err))
		}
		return obj
	}
}

// construct runs the constructor policy and opens the instance's resource.
// A failing open produces no instance.
func (rt *Runtime) construct(c *Class, args []goja.Value) (*goja.Object, error) {
	d := c.desc
	if !d.Constructible || d.Construct == nil {
		return nil, &NotConstructibleError{Type: d.Name}
	}
	if d.RequestOnly && !rt.HandlingRequest() {
		return nil, &RequestOnlyError{Feature: d.Name}
	}
	if err := requireAtLeast(d.Name, d.CtorArity, args); err != nil {
		return nil, err
	}
	obj, self, err := c.newObject(rt.vm)
	if err != nil {
		return nil, err
	}
	if err := d.Construct(rt, self, args); err != nil {
		return nil, err
	}
	return obj, nil
}

func (rt *Runtime) bind(c *Class, name string, arity int, fn MethodFunc) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		self, err := guard(c, name, arity, call.This, call.Arguments)
		if err != nil {
			panic(rt.throwable(err))
		}
		v, err := fn(rt, self, call.Arguments)
		if err != nil {
			panic(rt.throwable(err))
		}
		return v
	}
}

// open resolves a resource name through op and returns its handle.
func (rt *Runtime) open(method, op string, name []byte) (hostcall.Handle, error) {
	out, err := rt.gw.Call(rt.ctx, method, op, name)
	if err != nil {
		return hostcall.InvalidHandle, err
	}
	return out.Handle(0)
}

// encode converts a script value to UTF-8 bytes using script string
// conversion. Unpaired surrogates become U+FFFD.
func encode(v goja.Value) []byte {
	return []byte(strings.ToValidUTF8(v.String(), "\uFFFD"))
}

// decode turns host bytes into a script string.
func (rt *Runtime) decode(b []byte) goja.Value {
	return rt.vm.ToValue(strings.ToValidUTF8(string(b), "\uFFFD"))
}
