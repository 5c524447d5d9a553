// Package config loads treeparse settings from TOML or YAML files.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	jsoniter "github.com/json-iterator/go"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the configuration version this build writes and reads
const CurrentVersion = "v1"

var (
	// ErrUnsupportedFormat is returned for files that are neither TOML nor YAML
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrUnsupportedVersion is returned when the major version does not match
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalid is returned when a file does not satisfy the schema
	ErrInvalid = errors.New("invalid config")
)

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Config holds everything the command line can also set
type Config struct {
	Version   string `toml:"version" yaml:"version"`
	Title     string `toml:"title" yaml:"title"`
	Format    string `toml:"format" yaml:"format"`
	View      bool   `toml:"view" yaml:"view"`
	Output    string `toml:"output" yaml:"output"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	Color     bool   `toml:"color" yaml:"color"`
	Telemetry bool   `toml:"telemetry" yaml:"telemetry"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Version:  CurrentVersion,
		Title:    "PARSE TREE",
		Format:   "text",
		LogLevel: "warn",
		Color:    true,
	}
}

// Level maps LogLevel to a slog level, defaulting to warn
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Load reads path over the defaults. The format is chosen by extension:
// .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(content, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes content in the format named by ext (with or without the dot)
func Parse(content []byte, ext string) (*Config, error) {
	var unmarshal func([]byte, any) error
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "toml":
		unmarshal = toml.Unmarshal
	case "yaml", "yml":
		unmarshal = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, ext)
	}

	// Validate the raw document first so unknown keys are caught
	raw := map[string]any{}
	if err := unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}
	if err := checkVersion(cfg.Version); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(raw map[string]any) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		url := "schema://treeparse.json"
		if schemaErr = compiler.AddResource(url, strings.NewReader(schemaJSON)); schemaErr != nil {
			return
		}
		schema, schemaErr = compiler.Compile(url)
	})
	if schemaErr != nil {
		return fmt.Errorf("schema compilation failed: %w", schemaErr)
	}

	// Round-trip through JSON so TOML and YAML scalars become JSON values
	doc, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var value any
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(bytes.NewReader(doc)).Decode(&value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("%w %q", ErrUnsupportedVersion, v)
	}
	if semver.Major(v) != semver.Major(CurrentVersion) {
		return fmt.Errorf("%w %q (want %s.x)", ErrUnsupportedVersion, v, CurrentVersion)
	}
	return nil
}
