// Package config loads protodts settings from an optional YAML file and
// PROTODTS_ environment variables. Command-line flags are applied on top by
// the cmd package.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	TargetTS      = "ts"
	TargetOpenAPI = "openapi"

	DefaultConfigFile    = "protodts.yaml"
	DefaultInput         = "schemas/scintirete.proto"
	DefaultTSOutput      = "types/scintirete.d.ts"
	DefaultOpenAPIOutput = "types/scintirete.openapi.yaml"

	envPrefix = "protodts"
)

var ErrUnknownTarget = errors.New("unknown target")

// Config is the merged configuration. Fields left empty after loading take
// their defaults from the accessor methods.
type Config struct {
	// ConfigFilePath is the file the settings were read from, empty when no
	// file was found.
	ConfigFilePath string `yaml:"-" ignored:"true"`

	// Environment keys are derived from the field names with split_words, so
	// only PROTODTS_-prefixed variables are read (PROTODTS_OMIT_TIMESTAMP).
	Input         string `yaml:"input"`
	Output        string `yaml:"output"`
	Target        string `yaml:"target"`
	Strict        bool   `yaml:"strict"`
	Check         bool   `yaml:"check"`
	OmitTimestamp bool   `yaml:"omit_timestamp" split_words:"true"`
	ClientSuffix  string `yaml:"client_suffix" split_words:"true"`
	ResultWrapper string `yaml:"result_wrapper" split_words:"true"`
	// TypeOverrides replaces entries of the primitive type table, e.g.
	// int64: string. From the environment: PROTODTS_TYPE_OVERRIDES=int64:string.
	TypeOverrides map[string]string `yaml:"type_overrides" split_words:"true"`
	LogLevel      string            `yaml:"log_level" split_words:"true"`
}

type locator struct {
	ConfigFile string `split_words:"true"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Input:    DefaultInput,
		Target:   TargetTS,
		LogLevel: "info",
	}
}

// Load reads the YAML file at path, then applies environment overrides. An
// empty path falls back to PROTODTS_CONFIG_FILE and then to protodts.yaml in
// the working directory. Only a missing default file is tolerated.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var loc locator
		if err := envconfig.Process(envPrefix, &loc); err != nil {
			return nil, fmt.Errorf("failed to process environment variables: %w", err)
		}
		path = loc.ConfigFile
		explicit = path != ""
	}
	if path == "" {
		path = DefaultConfigFile
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file '%s': %w", path, err)
		}
		cfg.ConfigFilePath = path
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.Target {
	case TargetTS, TargetOpenAPI:
	default:
		return fmt.Errorf("%w %q: want %s or %s", ErrUnknownTarget, c.Target, TargetTS, TargetOpenAPI)
	}
	if c.Input == "" {
		return errors.New("no input schema configured")
	}
	return nil
}

// OutputPath returns the configured output, or the default for the target.
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	if c.Target == TargetOpenAPI {
		return DefaultOpenAPIOutput
	}
	return DefaultTSOutput
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}
