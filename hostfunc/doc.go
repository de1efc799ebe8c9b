// Package hostfunc is a local implementation of the host platform that
// capability bindings talk to.
//
// It serves the named operations listed in the hostcall package:
//
//   - config stores ([Dictionaries]): named, read-only string maps
//   - log endpoints ([LogEndpoints]): named append-only writers
//   - object stores ([ObjectStores]): named key-value stores backed by
//     cometbft-db (memdb or goleveldb)
//
// Every open hands out a fresh [hostcall.Handle]; handles are never shared
// or reused. Failures are reported as host statuses, never as Go errors,
// so bindings see exactly what they would see from a remote host.
//
//	p := hostfunc.NewPlatform()
//	p.Dictionaries = hostfunc.NewDictionaries(map[string]map[string]string{
//	    "settings": {"greeting": "hello"},
//	})
//	gw := hostcall.NewGateway(p.Registry())
//
// # Limits
//
// Config store keys and values, object keys and object values are bounded
// by [DictionaryConfig] and [ObjectStoreConfig]. Oversized values are
// reported as StatusBufferTooLong, oversized keys as
// StatusInvalidArgument.
package hostfunc
