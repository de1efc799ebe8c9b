package builtins

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/caffeineduck/hostbind/hostcall"
)

// WrongReceiverTypeError is returned when a method is called on a value
// that is not an instance of the method's class.
type WrongReceiverTypeError struct {
	Method   string
	Expected string
}

func (e *WrongReceiverTypeError) Error() string {
	return fmt.Sprintf("Method %s called on receiver that's not an instance of %s", e.Method, e.Expected)
}

func (e *WrongReceiverTypeError) ScriptErrorName() string { return "TypeError" }

// ArityError is returned when a call supplies fewer arguments than
// required.
type ArityError struct {
	Method   string
	Required int
	Got      int
}

func (e *ArityError) Error() string {
	noun := "arguments"
	if e.Required == 1 {
		noun = "argument"
	}
	return fmt.Sprintf("%s: At least %d %s required, but only %d passed", e.Method, e.Required, noun, e.Got)
}

func (e *ArityError) ScriptErrorName() string { return "TypeError" }

// NotConstructibleError is returned by the constructor of a type that can
// only be produced internally.
type NotConstructibleError struct {
	Type string
}

func (e *NotConstructibleError) Error() string {
	return e.Type + " can't be instantiated directly"
}

func (e *NotConstructibleError) ScriptErrorName() string { return "TypeError" }

// RequestOnlyError is returned when a request-only type is constructed
// outside request handling.
type RequestOnlyError struct {
	Feature string
}

func (e *RequestOnlyError) Error() string {
	return fmt.Sprintf("The %s builtin can only be used during request handling, not during initialization", e.Feature)
}

// guard checks the receiver and argument count of a method call. It runs
// before any argument is read and before any host call.
func guard(c *Class, method string, arity int, this goja.Value, args []goja.Value) (*Instance, error) {
	inst, ok := c.instance(this)
	if !ok {
		return nil, &WrongReceiverTypeError{Method: method, Expected: c.Name()}
	}
	if err := requireAtLeast(method, arity, args); err != nil {
		return nil, err
	}
	return inst, nil
}

func requireAtLeast(method string, n int, args []goja.Value) error {
	if len(args) < n {
		return &ArityError{Method: method, Required: n, Got: len(args)}
	}
	return nil
}

// handleSlot is the reserved slot holding an instance's resource handle.
const handleSlot = 0

// storeHandle assigns h to self. A handle is assigned once, at open time.
func storeHandle(self *Instance, h hostcall.Handle) error {
	if self.Handle(handleSlot).Valid() {
		return fmt.Errorf("%s: handle already assigned", self.class.Name())
	}
	if !h.Valid() {
		return fmt.Errorf("%s: host returned the invalid handle", self.class.Name())
	}
	self.slots[handleSlot] = h
	return nil
}

// loadHandle reads self's handle. An instance without an opened handle is
// reported as an invalid handle without calling the host.
func loadHandle(method string, self *Instance) (hostcall.Handle, error) {
	h := self.Handle(handleSlot)
	if !h.Valid() {
		return hostcall.InvalidHandle, hostcall.Translate(method, hostcall.StatusInvalidHandle)
	}
	return h, nil
}

// scriptError is implemented by errors raised under a specific script
// error type instead of the generic Go error wrapper.
type scriptError interface {
	ScriptErrorName() string
}

// throwable converts err into the value thrown into script code. Usage
// errors become TypeErrors; everything else is a GoError that unwraps to
// err on the Go side.
func (rt *Runtime) throwable(err error) *goja.Object {
	var se scriptError
	if errors.As(err, &se) && se.ScriptErrorName() == "TypeError" {
		return rt.vm.NewTypeError("%s", err.Error())
	}
	return rt.vm.NewGoError(err)
}
