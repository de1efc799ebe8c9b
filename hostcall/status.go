package hostcall

import (
	"errors"
	"fmt"
)

// Status is the result code returned by every host operation.
type Status uint32

const (
	StatusOK                Status = 0
	StatusError             Status = 1
	StatusInvalidArgument   Status = 2
	StatusInvalidHandle     Status = 3
	StatusBufferTooLong     Status = 4
	StatusUnsupported       Status = 5
	StatusMisaligned        Status = 6
	StatusHTTPInvalid       Status = 7
	StatusHTTPUser          Status = 8
	StatusHTTPIncomplete    Status = 9
	StatusNone              Status = 10
	StatusHTTPHeadTooLarge  Status = 11
	StatusHTTPInvalidStatus Status = 12
)

var statusText = map[Status]string{
	StatusError: "Generic error value. This means that some unexpected error " +
		"occurred during a hostcall.",
	StatusInvalidArgument: "Invalid argument.",
	StatusInvalidHandle: "Invalid handle. Thrown when a request, response, dictionary, " +
		"or body handle is not valid.",
	StatusBufferTooLong: "Buffer length error. Buffer is too long.",
	StatusUnsupported: "Unsupported operation error. This error is thrown when some " +
		"operation cannot be performed, because it is not supported.",
	StatusMisaligned: "Alignment error. This is thrown when a pointer does not point " +
		"to a properly aligned slice of memory.",
	StatusHTTPInvalid: "HTTP parse error. This can be thrown when a method, URI, header, " +
		"or status is not valid. This can also be thrown if a message head is too large.",
	StatusHTTPUser: "HTTP user error. This is thrown in cases where user code caused an " +
		"HTTP error. For example, attempt to send a 1xx response code, or a request with " +
		"a non-absolute URI. This can also be caused by an unexpected header: both " +
		"`content-length` and `transfer-encoding`, for example.",
	StatusHTTPIncomplete: "HTTP incomplete message error. A stream ended unexpectedly.",
	StatusNone: "A `None` error. This status code is used to indicate when an optional " +
		"value did not exist, as opposed to an empty value.",
	StatusHTTPHeadTooLarge: "HTTP head too large error. This error will be thrown when " +
		"the message head is too large.",
	StatusHTTPInvalidStatus: "HTTP invalid status error. This error will be thrown when " +
		"the HTTP message contains an invalid status code.",
}

var statusNames = [...]string{
	"ok", "error", "inval", "badf", "buflen", "unsupported", "badalign",
	"httpinvalid", "httpuser", "httpincomplete", "none", "httpheadtoolarge",
	"httpinvalidstatus",
}

// Known reports whether s belongs to the closed status taxonomy.
func (s Status) Known() bool {
	return int(s) < len(statusNames)
}

func (s Status) String() string {
	if s.Known() {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint32(s))
}

// Description returns the human readable meaning of s, or "" for StatusOK
// and unrecognized codes.
func (s Status) Description() string {
	return statusText[s]
}

// Statuses lists every status in the taxonomy in code order.
func Statuses() []Status {
	out := make([]Status, len(statusNames))
	for i := range out {
		out[i] = Status(i)
	}
	return out
}

// HostError is a failed host operation. Method is the script-visible name
// of the call site, Op the host operation that returned Status.
type HostError struct {
	Method string
	Op     string
	Status Status
}

func (e *HostError) Error() string {
	if desc := e.Status.Description(); desc != "" {
		return fmt.Sprintf("%s: %s - host error code %d", e.Method, desc, uint32(e.Status))
	}
	return fmt.Sprintf("%s: host error code %d", e.Method, uint32(e.Status))
}

// Translate turns a host status into an error. It returns nil only for
// StatusOK; every other status, StatusNone included, is a failure. Call
// sites for which an absent value is a legitimate result must check for
// StatusNone before calling Translate.
func Translate(method string, s Status) error {
	if s == StatusOK {
		return nil
	}
	return &HostError{Method: method, Status: s}
}

// IsStatus reports whether err is a HostError carrying s.
func IsStatus(err error, s Status) bool {
	var he *HostError
	return errors.As(err, &he) && he.Status == s
}
