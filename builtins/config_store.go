package builtins

import (
	"github.com/dop251/goja"

	"github.com/caffeineduck/hostbind/hostcall"
)

var configStoreDescriptor = &Descriptor{
	Kind:          KindConfigStore,
	Name:          "ConfigStore",
	Slots:         1,
	Constructible: true,
	RequestOnly:   true,
	CtorArity:     1,
	Construct:     constructConfigStore,
	Methods: []Method{
		{Name: "get", Arity: 1, Fn: configStoreGet},
	},
}

func constructConfigStore(rt *Runtime, self *Instance, args []goja.Value) error {
	h, err := rt.open("ConfigStore", hostcall.OpDictionaryOpen, encode(args[0]))
	if err != nil {
		return err
	}
	return storeHandle(self, h)
}

// configStoreGet returns the value for a key, or null when the store has
// no such key.
func configStoreGet(rt *Runtime, self *Instance, args []goja.Value) (goja.Value, error) {
	key := encode(args[0])
	h, err := loadHandle("get", self)
	if err != nil {
		return nil, err
	}

	status, out := rt.gw.Invoke(rt.ctx, hostcall.OpDictionaryGet, h, key, rt.maxEntryLen)
	if status == hostcall.StatusNone {
		return goja.Null(), nil
	}
	if err := rt.gw.Translate("get", hostcall.OpDictionaryGet, status); err != nil {
		return nil, err
	}
	val, err := out.Bytes(0)
	if err != nil {
		return nil, err
	}
	return rt.decode(val), nil
}
