package builtins

import (
	"github.com/dop251/goja"
)

// Kind enumerates the capability types this package can install.
type Kind int

const (
	KindConfigStore Kind = iota
	KindLogger
	KindObjectStore

	kindCount
)

func (k Kind) String() string {
	if d := descriptorFor(k); d != nil {
		return d.Name
	}
	return "unknown"
}

// MethodFunc implements a capability method. It runs after the dispatch
// guard, so self is always an instance of the descriptor's class and args
// holds at least the declared arity.
type MethodFunc func(rt *Runtime, self *Instance, args []goja.Value) (goja.Value, error)

// ConstructFunc opens the host resource for a new instance and stores its
// handle. If it fails the instance is discarded.
type ConstructFunc func(rt *Runtime, self *Instance, args []goja.Value) error

// Method is one entry of a capability's method table.
type Method struct {
	Name  string
	Arity int
	Fn    MethodFunc
}

// Property is a read-only accessor on a capability.
type Property struct {
	Name string
	Get  MethodFunc
}

// Descriptor describes one script-visible capability type. Descriptors are
// fixed at compile time and never mutated.
type Descriptor struct {
	Kind Kind
	Name string
	// Slots is the number of reserved per-instance cells; slot 0 always
	// holds the resource handle.
	Slots int
	// Constructible types can be created with `new` from script. Others
	// are only produced by native code and have no global constructor.
	Constructible bool
	// RequestOnly types can only be constructed while a downstream
	// request is being handled.
	RequestOnly bool
	CtorArity   int
	Construct   ConstructFunc
	Methods     []Method
	Properties  []Property
}

// Descriptors returns every capability descriptor in Kind order.
func Descriptors() []*Descriptor {
	return []*Descriptor{configStoreDescriptor, loggerDescriptor, objectStoreDescriptor}
}

func descriptorFor(k Kind) *Descriptor {
	for _, d := range Descriptors() {
		if d.Kind == k {
			return d
		}
	}
	return nil
}
