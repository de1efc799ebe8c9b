// Package abi exposes the host operations to WebAssembly guests as wazero
// host modules.
//
// Guests call them with the pointer/length convention of the Compute
// hostcall ABI: strings are (ptr, len) pairs in guest memory, results are
// written through out-pointers and every function returns a status code.
// Each call is forwarded to a [hostcall.Transport], so a guest sees the
// same statuses as an in-process binding.
//
// Exported functions:
//
//	fastly_abi          init(version i64) -> status
//	fastly_dictionary   open(name_ptr, name_len, handle_out) -> status
//	fastly_dictionary   get(handle, key_ptr, key_len, value_ptr, value_max_len, nwritten_out) -> status
//	fastly_log          endpoint_get(name_ptr, name_len, handle_out) -> status
//	fastly_log          write(handle, msg_ptr, msg_len, nwritten_out) -> status
//	fastly_object_store open(name_ptr, name_len, handle_out) -> status
//	fastly_object_store lookup(handle, key_ptr, key_len, value_ptr, value_max_len, nwritten_out) -> status
//	fastly_object_store insert(handle, key_ptr, key_len, value_ptr, value_len) -> status
//
// Lookups return the none status (10) for absent keys and the buflen
// status (4) when the value does not fit in value_max_len bytes.
package abi

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/caffeineduck/hostbind/hostcall"
)

// Host forwards guest hostcalls to a transport.
type Host struct {
	transport hostcall.Transport
	logger    *zap.Logger
}

// NewHost returns a Host backed by t.
func NewHost(t hostcall.Transport, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{transport: t, logger: logger}
}

// Instantiate defines the host modules in rt.
func (h *Host) Instantiate(ctx context.Context, rt wazero.Runtime) error {
	if _, err := rt.NewHostModuleBuilder("fastly_abi").
		NewFunctionBuilder().WithFunc(h.abiInit).Export("init").
		Instantiate(ctx); err != nil {
		return fmt.Errorf("instantiate fastly_abi: %w", err)
	}

	if _, err := rt.NewHostModuleBuilder("fastly_dictionary").
		NewFunctionBuilder().WithFunc(h.dictionaryOpen).Export("open").
		NewFunctionBuilder().WithFunc(h.dictionaryGet).Export("get").
		Instantiate(ctx); err != nil {
		return fmt.Errorf("instantiate fastly_dictionary: %w", err)
	}

	if _, err := rt.NewHostModuleBuilder("fastly_log").
		NewFunctionBuilder().WithFunc(h.logEndpointGet).Export("endpoint_get").
		NewFunctionBuilder().WithFunc(h.logWrite).Export("write").
		Instantiate(ctx); err != nil {
		return fmt.Errorf("instantiate fastly_log: %w", err)
	}

	if _, err := rt.NewHostModuleBuilder("fastly_object_store").
		NewFunctionBuilder().WithFunc(h.objectStoreOpen).Export("open").
		NewFunctionBuilder().WithFunc(h.objectStoreLookup).Export("lookup").
		NewFunctionBuilder().WithFunc(h.objectStoreInsert).Export("insert").
		Instantiate(ctx); err != nil {
		return fmt.Errorf("instantiate fastly_object_store: %w", err)
	}
	return nil
}

func (h *Host) call(ctx context.Context, op string, args ...any) (hostcall.Status, []any) {
	status, out := h.transport.Call(ctx, op, args)
	if status != hostcall.StatusOK {
		h.logger.Debug("guest hostcall failed", zap.String("op", op), zap.Stringer("status", status))
	}
	return status, out
}

func (h *Host) abiInit(ctx context.Context, version uint64) uint32 {
	status, _ := h.call(ctx, hostcall.OpABIInit, int(version))
	return uint32(status)
}

func (h *Host) dictionaryOpen(ctx context.Context, mod api.Module, namePtr, nameLen, handleOut uint32) uint32 {
	return uint32(h.open(ctx, mod, hostcall.OpDictionaryOpen, namePtr, nameLen, handleOut))
}

func (h *Host) logEndpointGet(ctx context.Context, mod api.Module, namePtr, nameLen, handleOut uint32) uint32 {
	return uint32(h.open(ctx, mod, hostcall.OpLogEndpointGet, namePtr, nameLen, handleOut))
}

func (h *Host) objectStoreOpen(ctx context.Context, mod api.Module, namePtr, nameLen, handleOut uint32) uint32 {
	return uint32(h.open(ctx, mod, hostcall.OpObjectStoreOpen, namePtr, nameLen, handleOut))
}

func (h *Host) open(ctx context.Context, mod api.Module, op string, namePtr, nameLen, handleOut uint32) hostcall.Status {
	mem := mod.Memory()
	if mem == nil {
		return hostcall.StatusError
	}
	if handleOut%4 != 0 {
		return hostcall.StatusMisaligned
	}
	name, ok := readBytes(mem, namePtr, nameLen)
	if !ok {
		return hostcall.StatusInvalidArgument
	}
	status, out := h.call(ctx, op, name)
	if status != hostcall.StatusOK {
		return status
	}
	handle, ok := outHandle(out)
	if !ok {
		return hostcall.StatusError
	}
	if !mem.WriteUint32Le(handleOut, uint32(handle)) {
		return hostcall.StatusInvalidArgument
	}
	return hostcall.StatusOK
}

func (h *Host) dictionaryGet(ctx context.Context, mod api.Module, handle, keyPtr, keyLen, valuePtr, valueMaxLen, nwrittenOut uint32) uint32 {
	return uint32(h.get(ctx, mod, hostcall.OpDictionaryGet, handle, keyPtr, keyLen, valuePtr, valueMaxLen, nwrittenOut, int(valueMaxLen)))
}

func (h *Host) objectStoreLookup(ctx context.Context, mod api.Module, handle, keyPtr, keyLen, valuePtr, valueMaxLen, nwrittenOut uint32) uint32 {
	return uint32(h.get(ctx, mod, hostcall.OpObjectStoreLookup, handle, keyPtr, keyLen, valuePtr, valueMaxLen, nwrittenOut))
}

// get reads a keyed value into the guest buffer at valuePtr. Statuses
// other than ok, StatusNone included, are returned to the guest as is.
func (h *Host) get(ctx context.Context, mod api.Module, op string, handle, keyPtr, keyLen, valuePtr, valueMaxLen, nwrittenOut uint32, extra ...any) hostcall.Status {
	mem := mod.Memory()
	if mem == nil {
		return hostcall.StatusError
	}
	if nwrittenOut%4 != 0 {
		return hostcall.StatusMisaligned
	}
	key, ok := readBytes(mem, keyPtr, keyLen)
	if !ok {
		return hostcall.StatusInvalidArgument
	}
	args := append([]any{hostcall.Handle(handle), key}, extra...)
	status, out := h.call(ctx, op, args...)
	if status != hostcall.StatusOK {
		return status
	}
	val, ok := outBytes(out)
	if !ok {
		return hostcall.StatusError
	}
	if uint32(len(val)) > valueMaxLen {
		return hostcall.StatusBufferTooLong
	}
	if !mem.Write(valuePtr, val) || !mem.WriteUint32Le(nwrittenOut, uint32(len(val))) {
		return hostcall.StatusInvalidArgument
	}
	return hostcall.StatusOK
}

func (h *Host) objectStoreInsert(ctx context.Context, mod api.Module, handle, keyPtr, keyLen, valuePtr, valueLen uint32) uint32 {
	mem := mod.Memory()
	if mem == nil {
		return uint32(hostcall.StatusError)
	}
	key, ok := readBytes(mem, keyPtr, keyLen)
	if !ok {
		return uint32(hostcall.StatusInvalidArgument)
	}
	val, ok := readBytes(mem, valuePtr, valueLen)
	if !ok {
		return uint32(hostcall.StatusInvalidArgument)
	}
	status, _ := h.call(ctx, hostcall.OpObjectStoreInsert, hostcall.Handle(handle), key, val)
	return uint32(status)
}

func (h *Host) logWrite(ctx context.Context, mod api.Module, handle, msgPtr, msgLen, nwrittenOut uint32) uint32 {
	mem := mod.Memory()
	if mem == nil {
		return uint32(hostcall.StatusError)
	}
	if nwrittenOut%4 != 0 {
		return uint32(hostcall.StatusMisaligned)
	}
	msg, ok := readBytes(mem, msgPtr, msgLen)
	if !ok {
		return uint32(hostcall.StatusInvalidArgument)
	}
	status, out := h.call(ctx, hostcall.OpLogWrite, hostcall.Handle(handle), msg)
	if status != hostcall.StatusOK {
		return uint32(status)
	}
	n := len(msg)
	if len(out) > 0 {
		if v, ok := out[0].(int); ok {
			n = v
		}
	}
	if !mem.WriteUint32Le(nwrittenOut, uint32(n)) {
		return uint32(hostcall.StatusInvalidArgument)
	}
	return uint32(hostcall.StatusOK)
}

// readBytes copies a guest buffer; wazero's view aliases guest memory.
func readBytes(mem api.Memory, ptr, n uint32) ([]byte, bool) {
	view, ok := mem.Read(ptr, n)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), view...), true
}

func outHandle(out []any) (hostcall.Handle, bool) {
	if len(out) == 0 {
		return hostcall.InvalidHandle, false
	}
	h, ok := out[0].(hostcall.Handle)
	return h, ok
}

func outBytes(out []any) ([]byte, bool) {
	if len(out) == 0 {
		return nil, false
	}
	b, ok := out[0].([]byte)
	return b, ok
}
