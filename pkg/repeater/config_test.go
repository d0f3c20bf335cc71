package repeater_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahesford/bonjour-repeater/pkg/repeater"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    repeater.Field
		wantErr bool
	}{
		{"Basic", "URF=W8", repeater.Field{Key: "URF", Value: "W8"}, false},
		{"ValueWithEquals", "adminurl=http://x/?a=b", repeater.Field{Key: "adminurl", Value: "http://x/?a=b"}, false},
		{"EmptyValue", "flag=", repeater.Field{Key: "flag", Value: ""}, false},
		{"NoEquals", "justakey", repeater.Field{}, true},
		{"EmptyKey", "=value", repeater.Field{}, true},
		{"Empty", "", repeater.Field{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repeater.ParseField(tt.spec)
			if tt.wantErr {
				require.ErrorIs(t, err, repeater.ErrInvalidField)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func validConfig() repeater.Config {
	cfg := repeater.DefaultConfig()
	cfg.BrowseType = "_ipp._tcp"
	cfg.RepeatType = "_ipp._tcp,_universal"
	cfg.Append = []repeater.Field{{Key: "URF", Value: "W8"}}
	return cfg
}

func TestConfigValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*repeater.Config)
		wantErr error
	}{
		{"NoBrowseType", func(c *repeater.Config) { c.BrowseType = "" }, repeater.ErrMissingBrowseType},
		{"NoRepeatType", func(c *repeater.Config) { c.RepeatType = "" }, repeater.ErrMissingRepeatType},
		{"NoAppendFields", func(c *repeater.Config) { c.Append = nil }, repeater.ErrNoAppendFields},
		{"EmptyPrefix", func(c *repeater.Config) { c.Prefix = "" }, repeater.ErrEmptyPrefix},
		{"ZeroTimeout", func(c *repeater.Config) { c.Timeout = 0 }, repeater.ErrInvalidTimeout},
		{"NegativeTimeout", func(c *repeater.Config) { c.Timeout = -time.Second }, repeater.ErrInvalidTimeout},
		{
			"DuplicateAppendKey",
			func(c *repeater.Config) {
				c.Append = append(c.Append, repeater.Field{Key: "URF", Value: "other"})
			},
			repeater.ErrDuplicateField,
		},
		{
			"AppendAndReplaceSameKey",
			func(c *repeater.Config) {
				c.Replace = []repeater.Field{{Key: "URF", Value: "x"}}
			},
			repeater.ErrDuplicateField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repeater.yaml")
	data := `
browse_type: _ipp._tcp
repeat_type: _ipp._tcp,_universal
append:
  - key: URF
    value: W8,CP1,RS600-600
replace:
  - key: rp
    value: printers/mirror
prefix: AirPrint
timeout: 10s
require_host: printer.local.
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := repeater.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "_ipp._tcp", cfg.BrowseType)
	assert.Equal(t, "_ipp._tcp,_universal", cfg.RepeatType)
	assert.Equal(t, []repeater.Field{{Key: "URF", Value: "W8,CP1,RS600-600"}}, cfg.Append)
	assert.Equal(t, []repeater.Field{{Key: "rp", Value: "printers/mirror"}}, cfg.Replace)
	assert.Equal(t, "AirPrint", cfg.Prefix)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "printer.local.", cfg.RequireHost)

	// Unset keys keep defaults
	assert.Equal(t, "local", cfg.Domain)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repeater.yaml")
	data := `
browse_type: _ipp._tcp
repeat_type: _printer._tcp
append:
  - key: repeated
    value: "yes"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := repeater.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, repeater.DefaultPrefix, cfg.Prefix)
	assert.Equal(t, repeater.DefaultTimeout, cfg.Timeout)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := repeater.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("browse_type: [unclosed"), 0644))

	_, err := repeater.LoadConfig(path)
	require.Error(t, err)
}
