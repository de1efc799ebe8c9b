package builtins

import (
	"errors"

	"github.com/dop251/goja"

	"github.com/caffeineduck/hostbind/hostcall"
)

var loggerDescriptor = &Descriptor{
	Kind:  KindLogger,
	Name:  "Logger",
	Slots: 1,
	Methods: []Method{
		{Name: "log", Arity: 1, Fn: loggerLog},
	},
}

// NewLogger opens the log endpoint called name and returns a Logger
// instance bound to it. No instance is produced if the open fails.
func (rt *Runtime) NewLogger(name string) (*goja.Object, error) {
	class := rt.classes[KindLogger]
	if class == nil {
		return nil, errors.New("Logger is not registered")
	}
	h, err := rt.open("Logger", hostcall.OpLogEndpointGet, []byte(name))
	if err != nil {
		return nil, err
	}
	obj, self, err := class.newObject(rt.vm)
	if err != nil {
		return nil, err
	}
	if err := storeHandle(self, h); err != nil {
		return nil, err
	}
	return obj, nil
}

func (rt *Runtime) getLogger(call goja.FunctionCall) goja.Value {
	if err := requireAtLeast("getLogger", 1, call.Arguments); err != nil {
		panic(rt.throwable(err))
	}
	logger, err := rt.NewLogger(string(encode(call.Argument(0))))
	if err != nil {
		panic(rt.throwable(err))
	}
	return logger
}

func loggerLog(rt *Runtime, self *Instance, args []goja.Value) (goja.Value, error) {
	msg := encode(args[0])
	h, err := loadHandle("log", self)
	if err != nil {
		return nil, err
	}
	if _, err := rt.gw.Call(rt.ctx, "log", hostcall.OpLogWrite, h, msg); err != nil {
		return nil, err
	}
	return goja.Undefined(), nil
}
