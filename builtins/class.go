package builtins

import (
	"fmt"
	"reflect"

	"github.com/dop251/goja"

	"github.com/caffeineduck/hostbind/hostcall"
)

// Class is an installed capability type. Its prototype is created once at
// registration and shared by every instance, whether script code or the
// runtime created it.
type Class struct {
	desc  *Descriptor
	ctor  *goja.Object
	proto *goja.Object
}

func (c *Class) Name() string   { return c.desc.Name }
func (c *Class) SlotCount() int { return c.desc.Slots }

// IsInstance reports whether v is an instance of c. It inspects the Go
// state behind v and never runs script code.
func (c *Class) IsInstance(v goja.Value) bool {
	_, ok := c.instance(v)
	return ok
}

var instanceType = reflect.TypeOf((*Instance)(nil))

func (c *Class) instance(v goja.Value) (*Instance, bool) {
	obj, ok := v.(*goja.Object)
	if !ok || obj.ExportType() != instanceType {
		return nil, false
	}
	inst := obj.Export().(*Instance)
	return inst, inst.class == c
}

// newObject allocates an instance with every slot unopened.
func (c *Class) newObject(vm *goja.Runtime) (*goja.Object, *Instance, error) {
	inst := &Instance{class: c, slots: make([]hostcall.Handle, c.desc.Slots)}
	for i := range inst.slots {
		inst.slots[i] = hostcall.InvalidHandle
	}
	obj := vm.NewDynamicObject(inst)
	if err := obj.SetPrototype(c.proto); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", c.desc.Name, err)
	}
	return obj, inst, nil
}

// Instance is the native state behind a capability object: one handle per
// reserved slot, nothing else. It has no own script properties; methods
// come from the class prototype.
type Instance struct {
	class *Class
	slots []hostcall.Handle
}

// Handle returns the handle in slot i, or InvalidHandle if the slot is
// unopened or out of range.
func (inst *Instance) Handle(i int) hostcall.Handle {
	if i < 0 || i >= len(inst.slots) {
		return hostcall.InvalidHandle
	}
	return inst.slots[i]
}

func (*Instance) Get(key string) goja.Value           { return nil }
func (*Instance) Set(key string, val goja.Value) bool { return false }
func (*Instance) Has(key string) bool                 { return false }
func (*Instance) Delete(key string) bool              { return true }
func (*Instance) Keys() []string                      { return nil }
