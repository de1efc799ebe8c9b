package hostfunc

// Default limits applied when no option overrides them.
const (
	DefaultMaxKeyLen    = 256
	DefaultMaxEntryLen  = 8000
	DefaultMaxObjectKey = 1024
	DefaultMaxObjectLen = 1 << 20 // 1MB
)

// DictionaryConfig bounds config store lookups.
type DictionaryConfig struct {
	MaxKeyLen   int
	MaxEntryLen int
}

// DefaultDictionaryConfig returns the default config store limits.
func DefaultDictionaryConfig() DictionaryConfig {
	return DictionaryConfig{
		MaxKeyLen:   DefaultMaxKeyLen,
		MaxEntryLen: DefaultMaxEntryLen,
	}
}

// DictionaryOption configures config store limits.
type DictionaryOption func(*DictionaryConfig)

// WithMaxKeyLen sets the maximum config store key length in bytes.
func WithMaxKeyLen(n int) DictionaryOption {
	return func(c *DictionaryConfig) {
		c.MaxKeyLen = n
	}
}

// WithMaxEntryLen sets the maximum config store value length in bytes.
func WithMaxEntryLen(n int) DictionaryOption {
	return func(c *DictionaryConfig) {
		c.MaxEntryLen = n
	}
}

// ObjectStoreConfig bounds object store operations.
type ObjectStoreConfig struct {
	MaxKeyLen   int
	MaxValueLen int
}

// ObjectStoreOption configures object store limits.
type ObjectStoreOption func(*ObjectStoreConfig)

// WithMaxObjectKeyLen sets the maximum object key length in bytes.
func WithMaxObjectKeyLen(n int) ObjectStoreOption {
	return func(c *ObjectStoreConfig) {
		c.MaxKeyLen = n
	}
}

// WithMaxObjectLen sets the maximum object value size in bytes.
func WithMaxObjectLen(n int) ObjectStoreOption {
	return func(c *ObjectStoreConfig) {
		c.MaxValueLen = n
	}
}
