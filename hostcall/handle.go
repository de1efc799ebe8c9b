package hostcall

import "strconv"

// Handle is an opaque reference to host-side state such as a config store
// or a log endpoint. Script code never sees its value.
type Handle uint32

// InvalidHandle marks a handle that was never opened. It must not be passed
// to a host operation that dereferences state.
const InvalidHandle Handle = 1<<32 - 2

// Valid reports whether h refers to an opened resource.
func (h Handle) Valid() bool {
	return h != InvalidHandle
}

func (h Handle) String() string {
	if !h.Valid() {
		return "invalid"
	}
	return strconv.FormatUint(uint64(h), 10)
}
