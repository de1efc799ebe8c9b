package hostcall

// Host operation names. Arguments and outputs are listed as
// (args) -> (outputs on StatusOK).
const (
	// (version int) -> ()
	OpABIInit = "fastly_abi.init"

	// (name []byte) -> (Handle)
	OpDictionaryOpen = "fastly_dictionary.open"
	// (store Handle, key []byte, maxLen int) -> (value []byte); StatusNone when the key is absent
	OpDictionaryGet = "fastly_dictionary.get"

	// (name []byte) -> (Handle)
	OpLogEndpointGet = "fastly_log.endpoint_get"
	// (endpoint Handle, msg []byte) -> (nwritten int)
	OpLogWrite = "fastly_log.write"

	// (name []byte) -> (Handle)
	OpObjectStoreOpen = "fastly_object_store.open"
	// (store Handle, key []byte) -> (value []byte); StatusNone when the key is absent
	OpObjectStoreLookup = "fastly_object_store.lookup"
	// (store Handle, key []byte, value []byte) -> ()
	OpObjectStoreInsert = "fastly_object_store.insert"
)

// ABIVersion is the only host ABI version accepted by OpABIInit.
const ABIVersion = 1

// ConfigStoreEntryMaxLen bounds a config store value returned by
// OpDictionaryGet.
const ConfigStoreEntryMaxLen = 8000
