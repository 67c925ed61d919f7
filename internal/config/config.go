package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Storage       Storage `yaml:"storage"`
	RetentionDays int     `yaml:"retention_days"`
	MaxWorkers    int     `yaml:"max_workers"`
	DryRun        bool    `yaml:"dry_run"`
	Databases     []Group `yaml:"databases"`
	Journal       string  `yaml:"journal"`
	MetricsListen string  `yaml:"metrics_listen"`
	LogLevel      string  `yaml:"log_level"`
	LogDir        string  `yaml:"log_dir"`
}

// Storage represents S3-compatible storage configuration
type Storage struct {
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	Secure       bool   `yaml:"secure"`
	SourceBucket string `yaml:"source_bucket"`
	TargetBucket string `yaml:"target_bucket"`
}

// Group represents one logical backup category. Groups are declared as a
// YAML list so their configured order is preserved across the run.
type Group struct {
	Name          string   `yaml:"name"`
	SourcePath    string   `yaml:"source_path"`
	TargetPath    string   `yaml:"target_path"`
	FileExtension string   `yaml:"file_extension"`
	Servers       []string `yaml:"servers"`
}

// Load loads configuration from file and command line flags
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	cfg := &Config{
		RetentionDays: 30,
		MaxWorkers:    4,
		LogLevel:      "info",
	}

	// Load from YAML file if provided
	if configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with command line flags
	if err := loadFromFlags(cfg, flags); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func loadFromFlags(cfg *Config, flags *pflag.FlagSet) error {
	if flags.Changed("endpoint") {
		cfg.Storage.Endpoint, _ = flags.GetString("endpoint")
	}
	if flags.Changed("access-key") {
		cfg.Storage.AccessKey, _ = flags.GetString("access-key")
	}
	if flags.Changed("secret-key") {
		cfg.Storage.SecretKey, _ = flags.GetString("secret-key")
	}
	if flags.Changed("secure") {
		cfg.Storage.Secure, _ = flags.GetBool("secure")
	}
	if flags.Changed("source-bucket") {
		cfg.Storage.SourceBucket, _ = flags.GetString("source-bucket")
	}
	if flags.Changed("target-bucket") {
		cfg.Storage.TargetBucket, _ = flags.GetString("target-bucket")
	}

	if flags.Changed("days") {
		cfg.RetentionDays, _ = flags.GetInt("days")
	}
	if flags.Changed("max-workers") {
		cfg.MaxWorkers, _ = flags.GetInt("max-workers")
	}
	if flags.Changed("dry-run") {
		cfg.DryRun, _ = flags.GetBool("dry-run")
	}
	if flags.Changed("journal") {
		cfg.Journal, _ = flags.GetString("journal")
	}
	if flags.Changed("metrics-listen") {
		cfg.MetricsListen, _ = flags.GetString("metrics-listen")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-dir") {
		cfg.LogDir, _ = flags.GetString("log-dir")
	}

	return nil
}

func (c *Config) validate() error {
	if c.Storage.Endpoint == "" {
		return fmt.Errorf("storage endpoint is required")
	}
	if c.Storage.AccessKey == "" {
		return fmt.Errorf("storage access key is required")
	}
	if c.Storage.SecretKey == "" {
		return fmt.Errorf("storage secret key is required")
	}
	if c.Storage.SourceBucket == "" {
		return fmt.Errorf("source bucket is required")
	}
	if c.Storage.TargetBucket == "" {
		return fmt.Errorf("target bucket is required")
	}

	if c.RetentionDays < 0 {
		return fmt.Errorf("retention days must not be negative")
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max workers must be positive")
	}

	if len(c.Databases) == 0 {
		return fmt.Errorf("at least one database group is required")
	}
	for i, g := range c.Databases {
		if g.Name == "" {
			return fmt.Errorf("database group %d: name is required", i)
		}
		if g.SourcePath == "" {
			return fmt.Errorf("database group %q: source path is required", g.Name)
		}
		if g.TargetPath == "" {
			return fmt.Errorf("database group %q: target path is required", g.Name)
		}
		if g.FileExtension == "" {
			return fmt.Errorf("database group %q: file extension is required", g.Name)
		}
		if len(g.Servers) == 0 {
			return fmt.Errorf("database group %q: at least one server is required", g.Name)
		}
	}

	return nil
}
