// Package config loads the local host platform definition from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/caffeineduck/hostbind/hostcall"
	"github.com/caffeineduck/hostbind/hostfunc"
)

var validate = validator.New()

// Config describes the config stores, log endpoints and object stores the
// local platform serves.
type Config struct {
	Limits       Limits                       `yaml:"limits"`
	ConfigStores map[string]map[string]string `yaml:"config_stores"`
	LogEndpoints map[string]LogEndpoint       `yaml:"log_endpoints" validate:"dive"`
	ObjectStores map[string]ObjectStore       `yaml:"object_stores" validate:"dive"`
}

// Limits bounds host operations. Zero values take the defaults.
type Limits struct {
	MaxEntryLen  int `yaml:"max_entry_len" validate:"gte=0,lte=8000"`
	MaxKeyLen    int `yaml:"max_key_len" validate:"gte=0"`
	MaxObjectLen int `yaml:"max_object_len" validate:"gte=0"`
}

// LogEndpoint is where a named log endpoint writes.
type LogEndpoint struct {
	Target string `yaml:"target" validate:"required,oneof=stdout stderr file"`
	Path   string `yaml:"path" validate:"required_if=Target file"`
}

// ObjectStore selects the database behind a named object store.
type ObjectStore struct {
	Backend string `yaml:"backend" validate:"omitempty,oneof=memdb goleveldb"`
	Dir     string `yaml:"dir" validate:"required_if=Backend goleveldb"`
}

// Default returns an empty configuration with default limits.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration. Unknown fields are
// rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	for name := range c.ConfigStores {
		if name == "" {
			return nil, errors.New("config validation failed: empty config store name")
		}
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Limits.MaxEntryLen == 0 {
		c.Limits.MaxEntryLen = hostcall.ConfigStoreEntryMaxLen
	}
	if c.Limits.MaxKeyLen == 0 {
		c.Limits.MaxKeyLen = hostfunc.DefaultMaxKeyLen
	}
	if c.Limits.MaxObjectLen == 0 {
		c.Limits.MaxObjectLen = hostfunc.DefaultMaxObjectLen
	}
}

// Build creates the platform described by c. Log endpoints targeting
// stdout and stderr write to the given writers. The returned close function
// releases log files and object store databases.
func (c *Config) Build(stdout, stderr io.Writer) (*hostfunc.Platform, func() error, error) {
	var files []*os.File
	closeFiles := func() error {
		var errs []error
		for _, f := range files {
			errs = append(errs, f.Close())
		}
		return errors.Join(errs...)
	}

	writers := make(map[string]io.Writer, len(c.LogEndpoints))
	for name, ep := range c.LogEndpoints {
		switch ep.Target {
		case "stdout":
			writers[name] = stdout
		case "stderr":
			writers[name] = stderr
		case "file":
			f, err := os.OpenFile(ep.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				closeFiles()
				return nil, nil, fmt.Errorf("open log endpoint %s: %w", name, err)
			}
			files = append(files, f)
			writers[name] = f
		}
	}

	p := &hostfunc.Platform{
		Dictionaries: hostfunc.NewDictionaries(c.ConfigStores,
			hostfunc.WithMaxKeyLen(c.Limits.MaxKeyLen),
			hostfunc.WithMaxEntryLen(c.Limits.MaxEntryLen)),
		Logs:    hostfunc.NewLogEndpoints(writers),
		Objects: hostfunc.NewObjectStores(hostfunc.WithMaxObjectLen(c.Limits.MaxObjectLen)),
	}

	for name, st := range c.ObjectStores {
		db, err := hostfunc.OpenBackend(name, st.Backend, st.Dir)
		if err == nil {
			err = p.Objects.Add(name, db)
		}
		if err != nil {
			p.Close()
			closeFiles()
			return nil, nil, err
		}
	}

	closeAll := func() error {
		return errors.Join(p.Close(), closeFiles())
	}
	return p, closeAll, nil
}
