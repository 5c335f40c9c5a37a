// Package config holds the settings shared by the kestrel command and
// embedders. Files are YAML (.yaml, .yml) or TOML (.toml).
package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/naoina/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxCallDepth       = 5000
	DefaultCheckpointInterval = 1024
	DefaultCacheSize          = 64
	DefaultWorkers            = 4
)

type Config struct {
	Engine   Engine   `yaml:"engine" toml:"engine"`
	Log      Log      `yaml:"log" toml:"log"`
	Parallel Parallel `yaml:"parallel" toml:"parallel"`
}

type Engine struct {
	// MaxCallDepth bounds ordinary recursion. Negative disables the check.
	MaxCallDepth       int `yaml:"max_call_depth" toml:"max_call_depth"`
	CheckpointInterval int `yaml:"checkpoint_interval" toml:"checkpoint_interval"`
	CacheSize          int `yaml:"cache_size" toml:"cache_size"`
}

// Log configures the diagnostic logger. Guest output never goes here.
type Log struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // auto, text or json
	File   string `yaml:"file" toml:"file"`

	MaxSizeMB  int  `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" toml:"max_age_days"`
	Compress   bool `yaml:"compress" toml:"compress"`
}

type Parallel struct {
	Workers int `yaml:"workers" toml:"workers"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Engine: Engine{
			MaxCallDepth:       DefaultMaxCallDepth,
			CheckpointInterval: DefaultCheckpointInterval,
			CacheSize:          DefaultCacheSize,
		},
		Log: Log{
			Level:      "warn",
			Format:     "auto",
			MaxSizeMB:  16,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Parallel: Parallel{Workers: DefaultWorkers},
	}
}

// Unknown keys are errors so typos do not pass silently.
var tomlSettings = toml.Config{
	NormFieldName: toml.DefaultConfig.NormFieldName,
	FieldToKey:    toml.DefaultConfig.FieldToKey,
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Load reads path over the defaults, choosing the decoder by extension.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "config")
	}
	defer f.Close()
	if err := decode(f, formatOf(path), &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes data in the given format ("yaml" or "toml") over the defaults.
func Parse(data []byte, format string) (Config, error) {
	cfg := Default()
	if err := decode(bytes.NewReader(data), format, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func decode(r io.Reader, format string, cfg *Config) error {
	switch format {
	case "toml":
		err := tomlSettings.NewDecoder(bufio.NewReader(r)).Decode(cfg)
		if lerr, ok := err.(*toml.LineError); ok {
			return errors.Errorf("line %d: %v", lerr.Line, lerr.Err)
		}
		return err
	case "yaml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return err
		}
		return nil
	default:
		return errors.Errorf("unsupported config format %q", format)
	}
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return strings.TrimPrefix(filepath.Ext(path), ".")
	}
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.Engine.CheckpointInterval <= 0 {
		return errors.Errorf("engine.checkpoint_interval must be positive, got %d", c.Engine.CheckpointInterval)
	}
	if c.Engine.CacheSize <= 0 {
		return errors.Errorf("engine.cache_size must be positive, got %d", c.Engine.CacheSize)
	}
	if c.Parallel.Workers <= 0 {
		return errors.Errorf("parallel.workers must be positive, got %d", c.Parallel.Workers)
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return errors.Errorf("log.format must be auto, text or json, got %q", c.Log.Format)
	}
	return nil
}

// Dump writes c in the given format.
func (c Config) Dump(w io.Writer, format string) error {
	switch format {
	case "toml":
		out, err := tomlSettings.Marshal(c)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.Errorf("unsupported config format %q", format)
	}
}
