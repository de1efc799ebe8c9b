// Package hostbind binds host platform capabilities into a goja
// JavaScript runtime.
//
// # Overview
//
// Script code sees capability types (ConfigStore, Logger, ObjectStore)
// whose methods validate their receiver and arguments, call a named host
// operation through a gateway and turn the host's status code into either
// a value or a catchable error.
//
// # Basic Usage
//
//	platform := hostfunc.NewPlatform()
//	platform.Dictionaries = hostfunc.NewDictionaries(map[string]map[string]string{
//	    "settings": {"greeting": "hello"},
//	})
//	gw := hostcall.NewGateway(platform.Registry())
//
//	vm := goja.New()
//	rt := builtins.New(vm, gw)
//	if err := rt.Install(); err != nil {
//	    log.Fatal(err)
//	}
//
//	rt.BeginRequest(ctx)
//	v, _ := vm.RunString(`new ConfigStore("settings").get("greeting")`) // "hello"
//
// # Guests
//
// The same host operations are exported to WebAssembly guests as the
// fastly_* host modules:
//
//	rt, _ := abi.NewRuntime(ctx, platform.Registry())
//	defer rt.Close(ctx)
//	err := rt.Run(ctx, "guest", wasm, os.Stdout, os.Stderr)
//
// See the [builtins], [hostcall], [hostfunc] and [abi] packages for detailed
// API documentation.
package hostbind
