package hostfunc

import (
	"context"
	"io"

	"github.com/caffeineduck/hostbind/hostcall"
)

// Platform is a local implementation of the host capabilities: config
// stores, log endpoints and object stores.
type Platform struct {
	Dictionaries *Dictionaries
	Logs         *LogEndpoints
	Objects      *ObjectStores
}

// NewPlatform returns a platform with no stores or endpoints.
func NewPlatform() *Platform {
	return &Platform{
		Dictionaries: NewDictionaries(nil),
		Logs:         NewLogEndpoints(map[string]io.Writer{}),
		Objects:      NewObjectStores(),
	}
}

// Register installs every host operation on reg.
func (p *Platform) Register(reg *hostcall.Registry) {
	reg.Register(hostcall.OpABIInit, abiInit)

	reg.Register(hostcall.OpDictionaryOpen, p.Dictionaries.Open)
	reg.Register(hostcall.OpDictionaryGet, p.Dictionaries.Get)

	reg.Register(hostcall.OpLogEndpointGet, p.Logs.EndpointGet)
	reg.Register(hostcall.OpLogWrite, p.Logs.Write)

	reg.Register(hostcall.OpObjectStoreOpen, p.Objects.Open)
	reg.Register(hostcall.OpObjectStoreLookup, p.Objects.Lookup)
	reg.Register(hostcall.OpObjectStoreInsert, p.Objects.Insert)
}

// Registry returns a new registry with every host operation installed.
func (p *Platform) Registry() *hostcall.Registry {
	reg := hostcall.NewRegistry()
	p.Register(reg)
	return reg
}

// Close releases the object store databases.
func (p *Platform) Close() error {
	return p.Objects.Close()
}

func abiInit(ctx context.Context, args []any) (hostcall.Status, []any) {
	v, ok := hostcall.ArgInt(args, 0)
	if !ok {
		return hostcall.StatusInvalidArgument, nil
	}
	if v != hostcall.ABIVersion {
		return hostcall.StatusUnsupported, nil
	}
	return hostcall.StatusOK, nil
}
