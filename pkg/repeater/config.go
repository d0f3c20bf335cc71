package repeater

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ahesford/bonjour-repeater/pkg/discovery"
)

// Configuration defaults.
const (
	// DefaultPrefix is prepended to mirrored instance names.
	DefaultPrefix = "Repeated"

	// DefaultTimeout bounds each resolve and register wait.
	DefaultTimeout = 5 * time.Second
)

// Configuration errors. All are fatal at startup; none occurs mid-run.
var (
	ErrMissingBrowseType = errors.New("browse service type is required")
	ErrMissingRepeatType = errors.New("repeat service type is required")
	ErrNoAppendFields    = errors.New("at least one append field is required")
	ErrEmptyPrefix       = errors.New("prefix must be non-empty")
	ErrInvalidTimeout    = errors.New("timeout must be positive")
	ErrInvalidField      = errors.New("invalid field specification")
	ErrDuplicateField    = errors.New("duplicate field key")
)

// Field is one key/value TXT attribute the transform policy inserts or
// overwrites.
type Field struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// ParseField parses a "key=value" specification. The value may itself
// contain "=" characters; only the first one separates key from value.
func ParseField(spec string) (Field, error) {
	key, value, found := strings.Cut(spec, "=")
	if !found {
		return Field{}, fmt.Errorf("%w: %q has no '='", ErrInvalidField, spec)
	}
	if key == "" {
		return Field{}, fmt.Errorf("%w: %q has an empty key", ErrInvalidField, spec)
	}
	return Field{Key: key, Value: value}, nil
}

// ParseFields parses a list of "key=value" specifications.
func ParseFields(specs []string) ([]Field, error) {
	fields := make([]Field, 0, len(specs))
	for _, s := range specs {
		f, err := ParseField(s)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Config holds one repeater's settings. Build it once at startup and
// validate before constructing the engine.
type Config struct {
	// BrowseType is the service type to browse for originals.
	BrowseType string `yaml:"browse_type"`

	// RepeatType is the service type mirrors are published under.
	RepeatType string `yaml:"repeat_type"`

	// Domain is the mDNS domain. Empty means "local".
	Domain string `yaml:"domain,omitempty"`

	// Append lists TXT fields inserted into every mirrored record. A field
	// already present in the original makes the instance ineligible: an
	// instance carrying the marker is already a mirror.
	Append []Field `yaml:"append"`

	// Replace lists TXT fields overwritten in every mirrored record. A field
	// absent from the original makes the instance ineligible.
	Replace []Field `yaml:"replace,omitempty"`

	// Prefix is prepended (with a space) to mirrored instance names.
	// Instances whose name already starts with it are never mirrored.
	Prefix string `yaml:"prefix,omitempty"`

	// Timeout bounds each resolve and register wait. In YAML this is a Go
	// duration string ("5s", "500ms"); see UnmarshalYAML.
	Timeout time.Duration `yaml:"-"`

	// RequireHost, when set, restricts mirroring to instances whose resolved
	// target host matches it exactly.
	RequireHost string `yaml:"require_host,omitempty"`

	// Interface selects a single network interface by name. Empty means all.
	Interface string `yaml:"interface,omitempty"`
}

// DefaultConfig returns a Config with defaults applied. BrowseType,
// RepeatType and Append must still be filled in.
func DefaultConfig() Config {
	return Config{
		Domain:  discovery.DefaultDomain,
		Prefix:  DefaultPrefix,
		Timeout: DefaultTimeout,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// UnmarshalYAML decodes the config, reading the "timeout" key as a Go
// duration string. Keys absent from the document keep their current values,
// so decoding over DefaultConfig picks up defaults.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type plain Config
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}

	var extra struct {
		Timeout string `yaml:"timeout"`
	}
	if err := node.Decode(&extra); err != nil {
		return err
	}
	if extra.Timeout != "" {
		d, err := time.ParseDuration(extra.Timeout)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, extra.Timeout)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks the configuration. It does not mutate the config; apply
// DefaultConfig (or LoadConfig) first to pick up defaults.
func (c *Config) Validate() error {
	if c.BrowseType == "" {
		return ErrMissingBrowseType
	}
	if c.RepeatType == "" {
		return ErrMissingRepeatType
	}
	if len(c.Append) == 0 {
		return ErrNoAppendFields
	}
	if c.Prefix == "" {
		return ErrEmptyPrefix
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	seen := make(map[string]struct{}, len(c.Append)+len(c.Replace))
	for _, f := range append(append([]Field{}, c.Append...), c.Replace...) {
		if f.Key == "" {
			return fmt.Errorf("%w: empty key", ErrInvalidField)
		}
		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateField, f.Key)
		}
		seen[f.Key] = struct{}{}
	}

	return nil
}
