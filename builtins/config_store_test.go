package builtins

import (
	"errors"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeineduck/hostbind/hostcall"
)

func TestConfigStoreGet(t *testing.T) {
	f := newFixture(t)
	store := f.configStore(t, "settings")

	cases := map[string]string{
		"greeting": "hello",
		"unicode":  "日本語 🎉 ünïcode",
		"empty":    "",
		"longest":  longValue,
	}
	for key, want := range cases {
		got, err := f.call(t, store, "get", key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got.Export(), key)
	}
}

func TestConfigStoreFromScript(t *testing.T) {
	f := newFixture(t)
	f.inRequest(func() {
		got := f.run(t, `new ConfigStore("settings").get("greeting")`)
		assert.Equal(t, "hello", got.String())
	})
}

func TestConfigStoreGetMissingIsNull(t *testing.T) {
	f := newFixture(t)
	store := f.configStore(t, "settings")

	got, err := f.call(t, store, "get", "missing-key")
	require.NoError(t, err)
	assert.True(t, goja.IsNull(got))
}

func TestConfigStoreGetCoercesKey(t *testing.T) {
	f := newFixture(t)
	store := f.configStore(t, "settings")

	got, err := f.call(t, store, "get", 42.0)
	require.NoError(t, err)
	assert.True(t, goja.IsNull(got))
	assert.Equal(t, hostcall.OpDictionaryGet, f.rec.calls[len(f.rec.calls)-1])
}

func TestConfigStoreGetOverBound(t *testing.T) {
	f := newFixture(t)
	store := f.configStore(t, "settings")

	_, err := f.call(t, store, "get", "too-long")
	require.Error(t, err)
	assert.True(t, hostcall.IsStatus(err, hostcall.StatusBufferTooLong))
	assert.Contains(t, err.Error(), "get: Buffer length error")
}

func TestConfigStoreGetHostFailures(t *testing.T) {
	for _, s := range hostcall.Statuses() {
		if s == hostcall.StatusOK || s == hostcall.StatusNone {
			continue
		}
		t.Run(s.String(), func(t *testing.T) {
			f := newFixture(t)
			store := f.configStore(t, "settings")
			f.rec.force[hostcall.OpDictionaryGet] = s

			_, err := f.call(t, store, "get", "greeting")
			require.Error(t, err)

			var he *hostcall.HostError
			require.True(t, errors.As(err, &he))
			assert.Equal(t, "get", he.Method)
			assert.Equal(t, s, he.Status)
		})
	}
}

func TestConfigStoreOutsideRequest(t *testing.T) {
	f := newFixture(t)
	f.resetCalls()

	obj, err := f.construct("ConfigStore", "settings")
	assert.Nil(t, obj)

	var ro *RequestOnlyError
	require.True(t, errors.As(err, &ro))
	assert.Contains(t, err.Error(), "only be used during request handling")
	assert.Empty(t, f.rec.calls)
}

func TestConfigStoreOpenFailureProducesNoInstance(t *testing.T) {
	f := newFixture(t)
	f.inRequest(func() {
		obj, err := f.construct("ConfigStore", "unknown-store")
		assert.Nil(t, obj)
		require.Error(t, err)
		assert.True(t, hostcall.IsStatus(err, hostcall.StatusInvalidHandle))
		assert.Contains(t, err.Error(), "ConfigStore: Invalid handle")
	})
}

func TestConfigStoreConstructorArity(t *testing.T) {
	f := newFixture(t)
	f.inRequest(func() {
		f.resetCalls()
		ex := f.throws(t, "new ConfigStore()")
		assert.Equal(t, "TypeError", errorName(ex))
		assert.Equal(t, "ConfigStore: At least 1 argument required, but only 0 passed", errorMessage(ex))
		assert.Empty(t, f.rec.calls)
	})
}

func TestConfigStoreRequiresNew(t *testing.T) {
	f := newFixture(t)
	f.inRequest(func() {
		ex := f.throws(t, `ConfigStore("settings")`)
		assert.Equal(t, "TypeError", errorName(ex))
		assert.Contains(t, errorMessage(ex), "'new' is required")
	})
}

func TestConfigStoreGetWrongReceiver(t *testing.T) {
	f := newFixture(t)
	get := f.method(t, KindConfigStore, "get")
	logger := f.logger(t, "access")
	f.resetCalls()

	for _, recv := range []goja.Value{logger, goja.Null(), goja.Undefined(), f.vm.ToValue("settings"), f.vm.ToValue(1.0)} {
		_, err := get(recv, f.vm.ToValue("greeting"))
		require.Error(t, err, "receiver %v", recv)
		assert.Contains(t, err.Error(), "TypeError: Method get called on receiver that's not an instance of ConfigStore")
	}
	assert.Empty(t, f.rec.calls)
}

func TestConfigStoreGetArity(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.vm.Set("store", f.configStore(t, "settings")))
	f.resetCalls()

	ex := f.throws(t, "store.get()")
	assert.Equal(t, "TypeError", errorName(ex))
	assert.Equal(t, "get: At least 1 argument required, but only 0 passed", errorMessage(ex))
	assert.Empty(t, f.rec.calls)
}

func TestConfigStoreMaxEntryLenOption(t *testing.T) {
	f := newFixture(t)
	WithMaxEntryLen(3)(f.rt)
	store := f.configStore(t, "settings")

	_, err := f.call(t, store, "get", "greeting")
	assert.True(t, hostcall.IsStatus(err, hostcall.StatusBufferTooLong))
}
