package hostfunc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeineduck/hostbind/hostcall"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestLogWrite(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogEndpoints(map[string]io.Writer{"access": &buf})
	ctx := context.Background()

	status, out := l.EndpointGet(ctx, []any{[]byte("access")})
	require.Equal(t, hostcall.StatusOK, status)
	h := out[0].(hostcall.Handle)

	status, out = l.Write(ctx, []any{h, []byte("first")})
	require.Equal(t, hostcall.StatusOK, status)
	assert.Equal(t, 5, out[0])

	status, _ = l.Write(ctx, []any{h, []byte("second")})
	require.Equal(t, hostcall.StatusOK, status)

	assert.Equal(t, "first\nsecond\n", buf.String())
}

func TestLogEndpointUnknown(t *testing.T) {
	l := NewLogEndpoints(map[string]io.Writer{"access": io.Discard})
	status, _ := l.EndpointGet(context.Background(), []any{[]byte("missing")})
	assert.Equal(t, hostcall.StatusInvalidArgument, status)
}

func TestLogWriteInvalidHandle(t *testing.T) {
	l := NewLogEndpoints(map[string]io.Writer{"access": io.Discard})
	status, _ := l.Write(context.Background(), []any{hostcall.Handle(99), []byte("x")})
	assert.Equal(t, hostcall.StatusInvalidHandle, status)
}

func TestLogWriteFailure(t *testing.T) {
	l := NewLogEndpoints(map[string]io.Writer{"broken": failingWriter{}})
	ctx := context.Background()
	_, out := l.EndpointGet(ctx, []any{[]byte("broken")})

	status, _ := l.Write(ctx, []any{out[0], []byte("x")})
	assert.Equal(t, hostcall.StatusError, status)
}
