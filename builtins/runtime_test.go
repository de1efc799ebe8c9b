package builtins

import (
	"errors"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeineduck/hostbind/hostcall"
)

func TestInstallExposesGlobals(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"ConfigStore", "ObjectStore", "getLogger"} {
		assert.Equal(t, "function", f.run(t, "typeof "+name).String(), name)
	}
	assert.Equal(t, "undefined", f.run(t, "typeof Logger").String())

	for _, d := range Descriptors() {
		c, ok := f.rt.Class(d.Kind)
		require.True(t, ok, d.Name)
		assert.Equal(t, d.Name, c.Name())
		assert.Equal(t, d.Slots, c.SlotCount())
		assert.Equal(t, d.Name, d.Kind.String())
	}
	assert.Equal(t, "ConfigStore", f.run(t, "ConfigStore.name").String())
	assert.EqualValues(t, 1, f.run(t, "ConfigStore.length").ToInteger())
	assert.EqualValues(t, 2, f.run(t, "ObjectStore.prototype.put.length").ToInteger())
}

func TestRegisterOnce(t *testing.T) {
	f := newFixture(t)
	err := f.rt.Register(configStoreDescriptor)
	assert.ErrorContains(t, err, "already registered")
}

func TestInstallFailsWhenGlobalTaken(t *testing.T) {
	vm := goja.New()
	_, err := vm.RunString("function ConfigStore() {}")
	require.NoError(t, err)

	rt := New(vm, hostcall.NewGateway(hostcall.NewRegistry()))
	err = rt.Install()
	assert.ErrorContains(t, err, "register ConfigStore")
}

func TestRegisterRejectsSlotlessDescriptor(t *testing.T) {
	rt := New(goja.New(), hostcall.NewGateway(hostcall.NewRegistry()))
	err := rt.Register(&Descriptor{Kind: KindLogger, Name: "Logger"})
	assert.ErrorContains(t, err, "at least one slot")
}

func TestClassIsSharedByAllCreationPaths(t *testing.T) {
	f := newFixture(t)
	store := f.configStore(t, "settings")
	fromGo := f.logger(t, "access")
	require.NoError(t, f.vm.Set("fromGo", fromGo))

	storeClass, _ := f.rt.Class(KindConfigStore)
	loggerClass, _ := f.rt.Class(KindLogger)
	assert.True(t, storeClass.IsInstance(store))
	assert.True(t, loggerClass.IsInstance(fromGo))
	assert.False(t, loggerClass.IsInstance(store))

	fromScript := f.run(t, `getLogger("audit")`)
	assert.True(t, loggerClass.IsInstance(fromScript))
	assert.True(t, f.run(t, `Object.getPrototypeOf(getLogger("audit")) === Object.getPrototypeOf(fromGo)`).ToBoolean())
	assert.Equal(t, "[object Logger]", f.run(t, "Object.prototype.toString.call(fromGo)").String())
}

func TestInstancesHaveNoOwnProperties(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.vm.Set("store", f.configStore(t, "settings")))

	assert.EqualValues(t, 0, f.run(t, "Object.keys(store).length").ToInteger())
	f.run(t, `store.get = 1`)
	assert.Equal(t, "function", f.run(t, "typeof store.get").String())
}

func TestIsInstanceRejectsLookalikes(t *testing.T) {
	f := newFixture(t)
	class, _ := f.rt.Class(KindConfigStore)

	fake := f.run(t, "Object.create(ConfigStore.prototype)")
	assert.False(t, class.IsInstance(fake))
	assert.False(t, class.IsInstance(goja.Null()))
	assert.False(t, class.IsInstance(f.vm.ToValue("settings")))
	assert.False(t, class.IsInstance(f.vm.ToValue(map[string]any{})))
}

func TestHandlesArePerOpen(t *testing.T) {
	f := newFixture(t)
	ha := handleOf(t, f.configStore(t, "settings"))
	hb := handleOf(t, f.configStore(t, "other"))
	hc := handleOf(t, f.configStore(t, "settings"))

	assert.NotEqual(t, ha, hb)
	assert.NotEqual(t, ha, hc)
	assert.True(t, ha.Valid())
}

func TestStoreHandleOnce(t *testing.T) {
	f := newFixture(t)
	obj := f.configStore(t, "settings")
	assert.Error(t, storeHandle(obj.Export().(*Instance), hostcall.Handle(1)))
}

func TestUnopenedInstanceSkipsHost(t *testing.T) {
	f := newFixture(t)
	class, _ := f.rt.Class(KindConfigStore)
	obj, self, err := class.newObject(f.vm)
	require.NoError(t, err)
	assert.Equal(t, hostcall.InvalidHandle, self.Handle(handleSlot))
	f.resetCalls()

	_, err = f.call(t, obj, "get", "greeting")
	require.Error(t, err)
	assert.True(t, hostcall.IsStatus(err, hostcall.StatusInvalidHandle))
	assert.Empty(t, f.rec.calls)
}

func TestGuardErrorsAreTypeErrors(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.vm.Set("logger", f.logger(t, "access")))

	ex := f.throws(t, "logger.log()")
	assert.Equal(t, "TypeError", errorName(ex))
	assert.Equal(t, "log: At least 1 argument required, but only 0 passed", errorMessage(ex))

	assert.True(t, f.run(t, `
		let caught;
		try { logger.log() } catch (e) { caught = e }
		caught instanceof TypeError
	`).ToBoolean())
}

func TestHostErrorsReachScriptAndGo(t *testing.T) {
	f := newFixture(t)
	ex := f.throws(t, `getLogger("missing")`)
	assert.Equal(t, "GoError", errorName(ex))
	assert.Contains(t, errorMessage(ex), "Logger: Invalid argument")

	var he *hostcall.HostError
	require.True(t, errors.As(ex, &he))
	assert.Equal(t, hostcall.StatusInvalidArgument, he.Status)
}

func TestRequestLifecycle(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.rt.HandlingRequest())
	f.inRequest(func() {
		assert.True(t, f.rt.HandlingRequest())
	})
	assert.False(t, f.rt.HandlingRequest())
}

func TestDescriptorProperty(t *testing.T) {
	vm := goja.New()
	rt := New(vm, hostcall.NewGateway(hostcall.NewRegistry()))
	require.NoError(t, rt.Register(&Descriptor{
		Kind:  KindLogger,
		Name:  "Logger",
		Slots: 1,
		Properties: []Property{{
			Name: "open",
			Get: func(rt *Runtime, self *Instance, args []goja.Value) (goja.Value, error) {
				return rt.vm.ToValue(self.Handle(handleSlot).Valid()), nil
			},
		}},
	}))

	class, _ := rt.Class(KindLogger)
	obj, _, err := class.newObject(vm)
	require.NoError(t, err)
	require.NoError(t, vm.Set("obj", obj))

	v, err := vm.RunString("obj.open")
	require.NoError(t, err)
	assert.False(t, v.ToBoolean())

	_, err = vm.RunString(`Object.getOwnPropertyDescriptor(Object.getPrototypeOf(obj), "open").get.call({})`)
	var wr *WrongReceiverTypeError
	assert.False(t, errors.As(err, &wr), "type errors stay script errors")
	assert.ErrorContains(t, err, "Method open called on receiver that's not an instance of Logger")
}
