package config

import (
	"bytes"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/storectx/internal/errors"
)

const (
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "STORECTX_"

	// EnvConfigFile names the YAML file to load when no path is given.
	EnvConfigFile = EnvPrefix + "CONFIG"

	// DefaultInspectAddr is the default inspector listen address.
	DefaultInspectAddr = "127.0.0.1:7070"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "storectx"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendS3     = "s3"
)

// Config is the complete storectx configuration.
type Config struct {
	// Local configures the durable handle.
	Local StorageConfig `yaml:"local" envPrefix:"LOCAL_"`

	// Session configures the session handle.
	Session StorageConfig `yaml:"session" envPrefix:"SESSION_"`

	Log     LogConfig     `yaml:"log" envPrefix:"LOG_"`
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
	Inspect InspectConfig `yaml:"inspect" envPrefix:"INSPECT_"`
	Tracing TracingConfig `yaml:"tracing" envPrefix:"TRACING_"`

	// path stores the file the config was loaded from.
	path string
}

// StorageConfig selects and configures one backend.
type StorageConfig struct {
	// Backend is one of memory, sqlite, file or s3.
	Backend string `yaml:"backend" env:"BACKEND"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`

	// FileDir is the directory for the file backend.
	FileDir string `yaml:"file_dir" env:"FILE_DIR"`

	// Watch relays writes made to FileDir by other processes.
	Watch bool `yaml:"watch" env:"WATCH"`

	// S3 configures the s3 backend.
	S3 S3Config `yaml:"s3" envPrefix:"S3_"`
}

// S3Config configures the s3 backend.
type S3Config struct {
	Bucket    string `yaml:"bucket" env:"BUCKET"`
	Prefix    string `yaml:"prefix" env:"PREFIX"`
	Region    string `yaml:"region" env:"REGION"`
	Endpoint  string `yaml:"endpoint" env:"ENDPOINT"`
	PathStyle bool   `yaml:"path_style" env:"PATH_STYLE"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level" env:"LEVEL"`

	// Format is text or json.
	Format string `yaml:"format" env:"FORMAT"`
}

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// InspectConfig configures the inspector server.
type InspectConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// TracingConfig configures backend spans.
type TracingConfig struct {
	// Enabled wraps every backend with persist.Traced.
	Enabled bool `yaml:"enabled" env:"ENABLED"`
}

// Default returns a Config with default values: both handles in memory,
// info-level text logs.
func Default() *Config {
	return &Config{
		Local:   StorageConfig{Backend: BackendMemory},
		Session: StorageConfig{Backend: BackendMemory},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{Namespace: DefaultNamespace},
		Inspect: InspectConfig{Addr: DefaultInspectAddr},
	}
}

// Load builds the configuration from defaults, the YAML file at path (or
// $STORECTX_CONFIG when path is empty; no file when both are empty) and the
// environment, then validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.New(errors.CodeConfigFile).WithSubject(path).Wrap(err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return nil, errors.New(errors.CodeConfigFile).WithSubject(path).Wrap(err)
		}
		cfg.path = path
	}

	if err := cfg.applyEnv(nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeYAML overlays data onto c. Unknown fields are rejected.
func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// applyEnv overlays the environment onto c. environ replaces the process
// environment when non-nil.
func (c *Config) applyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return errors.New(errors.CodeConfigEnv).Wrap(err)
	}
	return nil
}

// Path returns the file the configuration was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// Validate checks backend selection, backend settings and logging.
func (c *Config) Validate() error {
	if err := c.Local.validate("local", true); err != nil {
		return err
	}
	if err := c.Session.validate("session", false); err != nil {
		return err
	}

	if _, ok := levels[c.Log.Level]; !ok {
		return errors.New(errors.CodeInvalidLogLevel).WithSubject(c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New(errors.CodeInvalidLogFormat).WithSubject(c.Log.Format)
	}
	return nil
}

func (s *StorageConfig) validate(handle string, allowS3 bool) error {
	switch s.Backend {
	case BackendMemory:
	case BackendSQLite:
		if s.SQLitePath == "" {
			return errors.New(errors.CodeMissingSetting).WithSubject(handle + ".sqlite_path")
		}
	case BackendFile:
		if s.FileDir == "" {
			return errors.New(errors.CodeMissingSetting).WithSubject(handle + ".file_dir")
		}
	case BackendS3:
		if !allowS3 {
			return errors.New(errors.CodeBackendNotAllowed).WithSubject(handle + ".backend=s3")
		}
		if s.S3.Bucket == "" {
			return errors.New(errors.CodeMissingSetting).WithSubject(handle + ".s3.bucket")
		}
		if s.S3.Region == "" {
			return errors.New(errors.CodeMissingSetting).WithSubject(handle + ".s3.region")
		}
	default:
		return errors.New(errors.CodeUnknownBackend).WithSubject(handle + ".backend=" + s.Backend)
	}
	return nil
}
