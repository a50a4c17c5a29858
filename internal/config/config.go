package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is a gqlc project file.
type Config struct {
	// Schema lists SDL files. Paths are relative to the config file.
	Schema []string `yaml:"schema" toml:"schema" json:"schema,omitempty"`

	// Documents lists query documents or directories of .graphql files.
	Documents []string `yaml:"documents,omitempty" toml:"documents,omitempty" json:"documents,omitempty"`

	FeatureFlags FeatureFlags `yaml:"feature_flags,omitempty" toml:"feature_flags,omitempty" json:"feature_flags,omitempty"`

	// Cache is the path of the compile cache database; empty disables it.
	Cache string `yaml:"cache,omitempty" toml:"cache,omitempty" json:"cache,omitempty"`

	// Parallelism bounds concurrent document compilation; 0 means
	// GOMAXPROCS.
	Parallelism int `yaml:"parallelism,omitempty" toml:"parallelism,omitempty" json:"parallelism,omitempty"`
}

//go:embed schema.cue
var schemaCUE string

// ErrUnsupportedFormat is returned for config files with an unknown
// extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Load reads a config file, choosing the decoder by extension: .yaml/.yml,
// .toml, or .cue/.json (CUE is a superset of JSON). Unknown keys are
// rejected by every decoder. Relative paths are resolved against the
// file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = decodeYAML(data)
	case ".toml":
		cfg, err = decodeTOML(data)
	case ".cue", ".json":
		cfg, err = decodeCUE(path, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

func decodeYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeTOML(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return &cfg, nil
}

// decodeCUE unifies the file with the closed #Config definition, so
// unknown fields and type mismatches fail before decoding.
func decodeCUE(path string, data []byte) (*Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("config schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, err
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if len(c.Schema) == 0 {
		return errors.New("schema is required")
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must be >= 0, got %d", c.Parallelism)
	}
	return nil
}

func (c *Config) resolvePaths(base string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i, p := range c.Schema {
		c.Schema[i] = resolve(p)
	}
	for i, p := range c.Documents {
		c.Documents[i] = resolve(p)
	}
	c.Cache = resolve(c.Cache)
}
