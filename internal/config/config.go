// Package config loads fmea settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"fmeacore/internal/adapters/suggest"
	"fmeacore/internal/blob"
	"fmeacore/internal/core"
)

// EnvConfigPath names the variable holding the default config file path.
const EnvConfigPath = "FMEA_CONFIG"

// Config is the full runtime configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Blob      BlobConfig      `yaml:"blob"`
	Suggest   SuggestConfig   `yaml:"suggest"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StorageConfig selects the document store.
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// BlobConfig selects the report artifact store.
type BlobConfig struct {
	Driver string   `yaml:"driver"`
	FSRoot string   `yaml:"fs_root"`
	S3     S3Config `yaml:"s3"`
}

// S3Config configures the S3 artifact driver.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// SuggestConfig configures the suggestion service.
type SuggestConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig enables session metrics and traces. Empty paths disable
// them.
type TelemetryConfig struct {
	// MetricsFile receives the Prometheus text exposition when a command ends.
	MetricsFile string `yaml:"metrics_file"`
	// TraceFile receives one JSON line per session operation.
	TraceFile string `yaml:"trace_file"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Storage: StorageConfig{Driver: string(core.StorageSQLite)},
		Blob:    BlobConfig{Driver: string(blob.DriverFilesystem), FSRoot: blob.DefaultFSRoot},
		Suggest: SuggestConfig{Model: suggest.DefaultModel},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (or $FMEA_CONFIG when path is empty) over the defaults,
// then applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("unmarshal %s: %w", path, err)
			}
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides fields with every non-empty environment variable.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Storage.Driver, "FMEA_STORAGE_DRIVER")
	set(&c.Storage.SQLitePath, "FMEA_SQLITE_PATH")
	set(&c.Storage.PostgresDSN, "FMEA_POSTGRES_DSN")
	set(&c.Blob.Driver, "FMEA_BLOB_DRIVER")
	set(&c.Blob.FSRoot, "FMEA_BLOB_FS_ROOT")
	set(&c.Blob.S3.Bucket, "FMEA_BLOB_S3_BUCKET")
	set(&c.Blob.S3.Region, "FMEA_BLOB_S3_REGION")
	set(&c.Blob.S3.Endpoint, "FMEA_BLOB_S3_ENDPOINT")
	if v := os.Getenv("FMEA_BLOB_S3_PATH_STYLE"); v != "" {
		c.Blob.S3.PathStyle = strings.EqualFold(v, "true")
	}
	set(&c.Suggest.APIKey, "OPENAI_API_KEY")
	set(&c.Suggest.Model, "OPENAI_MODEL")
	set(&c.Suggest.BaseURL, "OPENAI_BASE_URL")
	set(&c.Log.Level, "FMEA_LOG_LEVEL")
	set(&c.Log.Format, "FMEA_LOG_FORMAT")
	set(&c.Telemetry.MetricsFile, "FMEA_METRICS_FILE")
	set(&c.Telemetry.TraceFile, "FMEA_TRACE_FILE")
}

// StorageOptions converts to the document store selection.
func (c Config) StorageOptions() core.StorageOptions {
	return core.StorageOptions{
		Driver:      core.StorageDriver(c.Storage.Driver),
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
	}
}

// BlobConfig converts to the artifact store selection.
func (c Config) BlobConfig() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:    c.Blob.S3.Bucket,
			Region:    c.Blob.S3.Region,
			Endpoint:  c.Blob.S3.Endpoint,
			PathStyle: c.Blob.S3.PathStyle,
		},
	}
}

// OpenAIConfig converts to the suggestion provider settings.
func (c Config) OpenAIConfig() suggest.OpenAIConfig {
	return suggest.OpenAIConfig{APIKey: c.Suggest.APIKey, Model: c.Suggest.Model, BaseURL: c.Suggest.BaseURL}
}

// ParseLevel maps a level name to slog; unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a slog logger writing to w with the configured level and
// format ("json" or text).
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(l.Level)}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
