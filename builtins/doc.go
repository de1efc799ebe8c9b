// Package builtins installs host capabilities into a goja runtime as
// native-backed types.
//
// Each capability is described by a [Descriptor]: its script-visible name,
// how many reserved slots an instance carries, whether script code may
// construct it, and its method table. [Runtime.Install] registers every
// descriptor once; the resulting classes are cached on the [Runtime] and
// shared by every creation path.
//
// Installed types:
//
//	ConfigStore  new ConfigStore(name), get(key) -> string | null
//	Logger       getLogger(name), log(message)
//	ObjectStore  new ObjectStore(name), lookup(key) -> string | null, put(key, value)
//
// ConfigStore and ObjectStore can only be constructed while a downstream
// request is being handled ([Runtime.BeginRequest]). Logger has no global
// constructor; instances come from getLogger or [Runtime.NewLogger].
//
// Every method first checks its receiver and argument count, failing with
// [WrongReceiverTypeError] or [ArityError] before any host call. Host
// statuses are translated by the hostcall gateway; lookups turn the
// "absent value" status into null instead of an error.
package builtins
