// Package hostcall is the single chokepoint between capability bindings and
// the host platform.
//
// A host operation is addressed by name (for example "fastly_dictionary.open")
// and returns a [Status] plus zero or more typed outputs. Bindings never look
// at raw status values themselves: every status is routed through
// [Translate] (or [Gateway.Call], which does it for them), which maps the
// closed status taxonomy onto descriptive [HostError] values.
//
// The one legitimate non-error outcome is [StatusNone] on operations whose
// result is optional. Such call sites use [Gateway.Invoke], check for
// StatusNone first and only then translate.
package hostcall

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Transport carries a named host operation to the host platform.
type Transport interface {
	Call(ctx context.Context, op string, args []any) (Status, []any)
}

// Gateway invokes host operations over a Transport and translates their
// statuses.
type Gateway struct {
	transport Transport
	logger    *zap.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the logger used for host call diagnostics.
func WithLogger(l *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGateway returns a Gateway that sends operations over t.
func NewGateway(t Transport, opts ...GatewayOption) *Gateway {
	g := &Gateway{transport: t, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Invoke calls op and returns its raw status and outputs. Outputs are only
// meaningful when the status is StatusOK.
func (g *Gateway) Invoke(ctx context.Context, op string, args ...any) (Status, Outputs) {
	status, out := g.transport.Call(ctx, op, args)
	g.logger.Debug("host call", zap.String("op", op), zap.Stringer("status", status))
	return status, Outputs{op: op, values: out}
}

// Translate converts s into an error attributed to method. Unrecognized
// codes are logged with the operation before the generic error is returned.
func (g *Gateway) Translate(method, op string, s Status) error {
	err := Translate(method, s)
	if err == nil {
		return nil
	}
	he := err.(*HostError)
	he.Op = op
	if !s.Known() {
		g.logger.Warn("unrecognized host status",
			zap.String("method", method),
			zap.String("op", op),
			zap.Uint32("code", uint32(s)))
	} else {
		g.logger.Debug("host call failed",
			zap.String("method", method),
			zap.String("op", op),
			zap.Stringer("status", s))
	}
	return he
}

// Call invokes op and translates any non-ok status, StatusNone included.
func (g *Gateway) Call(ctx context.Context, method, op string, args ...any) (Outputs, error) {
	status, out := g.Invoke(ctx, op, args...)
	if err := g.Translate(method, op, status); err != nil {
		return Outputs{}, err
	}
	return out, nil
}

// Outputs are the typed results of a successful host operation.
type Outputs struct {
	op     string
	values []any
}

// Len returns the number of outputs.
func (o Outputs) Len() int { return len(o.values) }

func (o Outputs) at(i int) (any, error) {
	if i < 0 || i >= len(o.values) {
		return nil, fmt.Errorf("%s: missing output %d", o.op, i)
	}
	return o.values[i], nil
}

// Handle returns output i as a Handle.
func (o Outputs) Handle(i int) (Handle, error) {
	v, err := o.at(i)
	if err != nil {
		return InvalidHandle, err
	}
	h, ok := v.(Handle)
	if !ok {
		return InvalidHandle, fmt.Errorf("%s: output %d is %T, not a handle", o.op, i, v)
	}
	return h, nil
}

// Bytes returns output i as a byte slice.
func (o Outputs) Bytes(i int) ([]byte, error) {
	v, err := o.at(i)
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%s: output %d is %T, not bytes", o.op, i, v)
	}
	return b, nil
}
