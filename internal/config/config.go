// Package config loads converter settings from the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rezonia/nfe-converter/internal/logger"
)

// EnvPrefix is prepended to every environment key, e.g. NFE_LOG_LEVEL
const EnvPrefix = "NFE"

// Config groups all settings
type Config struct {
	Log     LogConfig
	HTTP    HTTPConfig
	Convert ConvertConfig
}

// LogConfig selects the log level, format and destination
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// HTTPConfig holds the server listener settings
type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
}

// ConvertConfig holds conversion defaults
type ConvertConfig struct {
	OutputDir    string
	WorkbookName string
	Normalize    bool
	PreviewLimit int
	// Decompressed size limits for zip input
	ZipMaxEntryBytes int64
	ZipMaxTotalBytes int64
}

// Logger returns the logger settings in the form logger.Setup expects
func (c *Config) Logger() logger.LogConfig {
	return logger.LogConfig{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: c.Log.Output,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.read_timeout", 30*time.Second)
	v.SetDefault("http.write_timeout", 2*time.Minute)
	v.SetDefault("http.max_body", 10<<20)

	v.SetDefault("output.dir", "output")
	v.SetDefault("workbook.name", "notas.xlsx")
	v.SetDefault("normalize", true)
	v.SetDefault("preview.limit", 12)
	v.SetDefault("zip.max_entry", 10<<20)
	v.SetDefault("zip.max_total", 100<<20)
}

// Load reads configuration from NFE_* environment variables and, when
// present, config.yaml in . or ./config. Environment values win.
func Load() (*Config, error) {
	return load(viper.New(), ".", "./config")
}

// LoadFrom is Load with explicit config search paths
func LoadFrom(paths ...string) (*Config, error) {
	return load(viper.New(), paths...)
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			Address:      v.GetString("http.address"),
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			MaxBodyBytes: v.GetInt64("http.max_body"),
		},
		Convert: ConvertConfig{
			OutputDir:    v.GetString("output.dir"),
			WorkbookName: v.GetString("workbook.name"),
			Normalize:    v.GetBool("normalize"),
			PreviewLimit: v.GetInt("preview.limit"),

			ZipMaxEntryBytes: v.GetInt64("zip.max_entry"),
			ZipMaxTotalBytes: v.GetInt64("zip.max_total"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server or converter cannot run with
func (c *Config) Validate() error {
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("http.max_body must be positive, got %d", c.HTTP.MaxBodyBytes)
	}
	if c.Convert.PreviewLimit <= 0 {
		return fmt.Errorf("preview.limit must be positive, got %d", c.Convert.PreviewLimit)
	}
	if c.Convert.ZipMaxEntryBytes <= 0 || c.Convert.ZipMaxTotalBytes <= 0 {
		return fmt.Errorf("zip.max_entry and zip.max_total must be positive, got %d and %d",
			c.Convert.ZipMaxEntryBytes, c.Convert.ZipMaxTotalBytes)
	}
	if c.Convert.WorkbookName == "" {
		return errors.New("workbook.name must not be empty")
	}
	return nil
}
