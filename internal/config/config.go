// Package config provides configuration loading for the mail sink: defaults,
// then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/shineum/mailsink-lite/internal/mailsink"
)

// Config holds the complete application configuration.
type Config struct {
	Provider string        `yaml:"provider" env:"MAILSINK_PROVIDER"`
	Sink     SinkConfig    `yaml:"sink"`
	Storage  StorageConfig `yaml:"storage"`
	Logging  LoggingConfig `yaml:"logging"`
}

// SinkConfig mirrors mailsink.Options.
type SinkConfig struct {
	OutputDir         string            `yaml:"output_dir" env:"MAILSINK_OUTPUT_DIR"`
	FileNameTemplate  string            `yaml:"file_name_template" env:"MAILSINK_FILENAME_TEMPLATE"`
	IgnoreCreateFiles IgnoreFilesConfig `yaml:"ignore_create_files"`
}

// IgnoreFilesConfig holds per-format suppression flags.
type IgnoreFilesConfig struct {
	Text bool `yaml:"text" env:"MAILSINK_IGNORE_TEXT"`
	HTML bool `yaml:"html" env:"MAILSINK_IGNORE_HTML"`
	JSON bool `yaml:"json" env:"MAILSINK_IGNORE_JSON"`
}

// StorageConfig selects where artifacts are written.
type StorageConfig struct {
	Driver string   `yaml:"driver" env:"STORAGE_DRIVER"`
	S3     S3Config `yaml:"s3"`
}

// S3Config holds S3 storage settings.
type S3Config struct {
	Bucket          string `yaml:"bucket" env:"S3_BUCKET"`
	Region          string `yaml:"region" env:"S3_REGION"`
	Prefix          string `yaml:"prefix" env:"S3_PREFIX"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	ForcePathStyle  bool   `yaml:"force_path_style" env:"S3_FORCE_PATH_STYLE"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	if err := cfg.applyEnvVars(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyEnvVars(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SinkOptions converts the sink section into mailsink options. Every flag
// is passed explicitly because the config layer already applied defaults.
func (c *Config) SinkOptions() mailsink.Options {
	return mailsink.Options{
		OutputDir:        c.Sink.OutputDir,
		FileNameTemplate: c.Sink.FileNameTemplate,
		IgnoreCreateFiles: mailsink.IgnoreCreateFiles{
			Text: mailsink.Bool(c.Sink.IgnoreCreateFiles.Text),
			HTML: mailsink.Bool(c.Sink.IgnoreCreateFiles.HTML),
			JSON: mailsink.Bool(c.Sink.IgnoreCreateFiles.JSON),
		},
	}
}

// S3Configured returns true if the bucket and region are set.
func (c *Config) S3Configured() bool {
	return c.Storage.S3.Bucket != "" && c.Storage.S3.Region != ""
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.Provider = "file"
	c.Sink.OutputDir = mailsink.DefaultOutputDir
	c.Sink.FileNameTemplate = mailsink.DefaultFileNameTemplate
	c.Sink.IgnoreCreateFiles = IgnoreFilesConfig{Text: false, HTML: false, JSON: true}
	c.Storage.Driver = "local"
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Unset variables leave the current value in place.
func (c *Config) applyEnvVars() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	c.Provider = strings.ToLower(c.Provider)
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	return nil
}
