package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend selects the codec implementation.
type Backend string

const (
	BackendStd  Backend = "std"
	BackendVips Backend = "vips"
)

// Config is the top-level configuration struct.  All fields have safe defaults
// so callers can start with Default() and override only what they need.
type Config struct {
	// Encode options applied by the renderer.  Matches the quality a browser
	// canvas uses when none is given.
	DefaultQuality int    `yaml:"default_quality"` // 1-100; default 92
	DefaultFormat  string `yaml:"default_format"`  // fallback output format; default jpeg

	// Streaming / memory limits.
	MaxImageBytes int64 `yaml:"max_image_bytes"` // 0 = no limit
	ChunkSize     int   `yaml:"chunk_size"`      // streaming chunk size in bytes; default 32 KiB

	// Timeout applied per conversion or preview.
	JobTimeout time.Duration `yaml:"job_timeout"`

	Backend Backend      `yaml:"backend"`
	Local   LocalConfig  `yaml:"local"`
	Server  ServerConfig `yaml:"server"`

	LogLevel string `yaml:"log_level"` // "debug", "info", "warn", "error"
}

// LocalConfig configures the local filesystem download target.
type LocalConfig struct {
	RootDir     string `yaml:"root_dir"`
	Permissions uint32 `yaml:"permissions"` // default 0644
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	return Config{
		DefaultQuality: 92,
		DefaultFormat:  "jpeg",
		ChunkSize:      32 * 1024,
		JobTimeout:     30 * time.Second,
		Backend:        BackendStd,
		Local: LocalConfig{
			RootDir:     ".",
			Permissions: 0o644,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 32 << 20,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file on top of Default() and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, Validate(cfg)
}

var outputFormats = map[string]bool{"jpeg": true, "png": true, "gif": true, "webp": true}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.DefaultQuality < 1 || c.DefaultQuality > 100 {
		return errors.New("config: DefaultQuality must be between 1 and 100")
	}
	if !outputFormats[c.DefaultFormat] {
		return fmt.Errorf("config: DefaultFormat %q is not one of jpeg, png, gif, webp", c.DefaultFormat)
	}
	if c.ChunkSize <= 0 {
		return errors.New("config: ChunkSize must be positive")
	}
	if c.MaxImageBytes < 0 {
		return errors.New("config: MaxImageBytes must not be negative")
	}
	if c.JobTimeout < 0 {
		return errors.New("config: JobTimeout must not be negative")
	}
	switch c.Backend {
	case BackendStd, BackendVips:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	return nil
}
