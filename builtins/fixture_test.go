package builtins

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"

	"github.com/caffeineduck/hostbind/hostcall"
	"github.com/caffeineduck/hostbind/hostfunc"
)

// recorder forwards host calls to a local platform, counting them and
// optionally forcing a status for an operation.
type recorder struct {
	next  hostcall.Transport
	calls []string
	force map[string]hostcall.Status
}

func (r *recorder) Call(ctx context.Context, op string, args []any) (hostcall.Status, []any) {
	r.calls = append(r.calls, op)
	if s, ok := r.force[op]; ok {
		return s, nil
	}
	return r.next.Call(ctx, op, args)
}

type fixture struct {
	ctx  context.Context
	vm   *goja.Runtime
	rt   *Runtime
	rec  *recorder
	logs *bytes.Buffer
}

var longValue = strings.Repeat("é", hostcall.ConfigStoreEntryMaxLen/2)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logs := &bytes.Buffer{}
	p := hostfunc.NewPlatform()
	p.Dictionaries = hostfunc.NewDictionaries(map[string]map[string]string{
		"settings": {
			"greeting": "hello",
			"unicode":  "日本語 🎉 ünïcode",
			"empty":    "",
			"longest":  longValue,
			"too-long": longValue + "x",
		},
		"other": {"greeting": "hi"},
	})
	p.Logs = hostfunc.NewLogEndpoints(map[string]io.Writer{
		"access": logs,
		"audit":  io.Discard,
	})
	require.NoError(t, p.Objects.Add("assets", dbm.NewMemDB()))
	t.Cleanup(func() { p.Close() })

	rec := &recorder{next: p.Registry(), force: map[string]hostcall.Status{}}
	vm := goja.New()
	rt := New(vm, hostcall.NewGateway(rec))
	require.NoError(t, rt.Install())

	return &fixture{
		ctx:  context.Background(),
		vm:   vm,
		rt:   rt,
		rec:  rec,
		logs: logs,
	}
}

// resetCalls forgets the host calls made so far.
func (f *fixture) resetCalls() {
	f.rec.calls = nil
}

// inRequest runs fn as downstream request handling.
func (f *fixture) inRequest(fn func()) {
	f.rt.BeginRequest(f.ctx)
	defer f.rt.EndRequest()
	fn()
}

func (f *fixture) run(t *testing.T, src string) goja.Value {
	t.Helper()
	v, err := f.vm.RunString(src)
	require.NoError(t, err, src)
	return v
}

// throws runs src, which must throw, and returns the thrown exception.
func (f *fixture) throws(t *testing.T, src string) *goja.Exception {
	t.Helper()
	_, err := f.vm.RunString(src)
	require.Error(t, err, src)
	var ex *goja.Exception
	require.True(t, errors.As(err, &ex), "%T: %v", err, err)
	return ex
}

func (f *fixture) construct(name string, args ...any) (*goja.Object, error) {
	return f.vm.New(f.vm.Get(name), f.values(args)...)
}

func (f *fixture) configStore(t *testing.T, name string) *goja.Object {
	t.Helper()
	var obj *goja.Object
	f.inRequest(func() {
		var err error
		obj, err = f.construct("ConfigStore", name)
		require.NoError(t, err)
	})
	return obj
}

func (f *fixture) objectStore(t *testing.T, name string) *goja.Object {
	t.Helper()
	var obj *goja.Object
	f.inRequest(func() {
		var err error
		obj, err = f.construct("ObjectStore", name)
		require.NoError(t, err)
	})
	return obj
}

func (f *fixture) logger(t *testing.T, name string) *goja.Object {
	t.Helper()
	obj, err := f.rt.NewLogger(name)
	require.NoError(t, err)
	return obj
}

// call invokes the method called name found on recv's prototype chain.
func (f *fixture) call(t *testing.T, recv *goja.Object, name string, args ...any) (goja.Value, error) {
	t.Helper()
	fn, ok := goja.AssertFunction(recv.Get(name))
	require.True(t, ok, "%s is not callable", name)
	return fn(recv, f.values(args)...)
}

// method returns the unbound method called name from class k.
func (f *fixture) method(t *testing.T, k Kind, name string) goja.Callable {
	t.Helper()
	class, ok := f.rt.Class(k)
	require.True(t, ok)
	fn, ok := goja.AssertFunction(class.proto.Get(name))
	require.True(t, ok, "%s is not callable", name)
	return fn
}

func (f *fixture) values(args []any) []goja.Value {
	vals := make([]goja.Value, len(args))
	for i, a := range args {
		vals[i] = f.vm.ToValue(a)
	}
	return vals
}

func handleOf(t *testing.T, obj *goja.Object) hostcall.Handle {
	t.Helper()
	inst, ok := obj.Export().(*Instance)
	require.True(t, ok)
	return inst.Handle(handleSlot)
}

// errorName is the script-visible name of the thrown error.
func errorName(ex *goja.Exception) string {
	obj, ok := ex.Value().(*goja.Object)
	if !ok {
		return ""
	}
	return obj.Get("name").String()
}

func errorMessage(ex *goja.Exception) string {
	obj, ok := ex.Value().(*goja.Object)
	if !ok {
		return ex.Value().String()
	}
	return obj.Get("message").String()
}
