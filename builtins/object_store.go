package builtins

import (
	"github.com/dop251/goja"

	"github.com/caffeineduck/hostbind/hostcall"
)

var objectStoreDescriptor = &Descriptor{
	Kind:          KindObjectStore,
	Name:          "ObjectStore",
	Slots:         1,
	Constructible: true,
	RequestOnly:   true,
	CtorArity:     1,
	Construct:     constructObjectStore,
	Methods: []Method{
		{Name: "lookup", Arity: 1, Fn: objectStoreLookup},
		{Name: "put", Arity: 2, Fn: objectStorePut},
	},
}

func constructObjectStore(rt *Runtime, self *Instance, args []goja.Value) error {
	h, err := rt.open("ObjectStore", hostcall.OpObjectStoreOpen, encode(args[0]))
	if err != nil {
		return err
	}
	return storeHandle(self, h)
}

func objectStoreLookup(rt *Runtime, self *Instance, args []goja.Value) (goja.Value, error) {
	key := encode(args[0])
	h, err := loadHandle("lookup", self)
	if err != nil {
		return nil, err
	}

	status, out := rt.gw.Invoke(rt.ctx, hostcall.OpObjectStoreLookup, h, key)
	if status == hostcall.StatusNone {
		return goja.Null(), nil
	}
	if err := rt.gw.Translate("lookup", hostcall.OpObjectStoreLookup, status); err != nil {
		return nil, err
	}
	val, err := out.Bytes(0)
	if err != nil {
		return nil, err
	}
	return rt.decode(val), nil
}

func objectStorePut(rt *Runtime, self *Instance, args []goja.Value) (goja.Value, error) {
	key, val := encode(args[0]), encode(args[1])
	h, err := loadHandle("put", self)
	if err != nil {
		return nil, err
	}
	if _, err := rt.gw.Call(rt.ctx, "put", hostcall.OpObjectStoreInsert, h, key, val); err != nil {
		return nil, err
	}
	return goja.Undefined(), nil
}
