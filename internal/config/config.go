package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPListenAddr string
	LogLevel       string

	// DataDir holds the registry and session files; BackupRoot is where
	// retrieved backup files land, date-partitioned.
	DataDir    string
	BackupRoot string

	// Browser automation sidecar.
	DriverURL     string
	DriverTimeout time.Duration
	// LoginTimeout bounds how long the interactive login flow waits for the
	// operator to finish credentials and MFA in the sidecar's browser.
	LoginTimeout time.Duration
	// DriverConcurrency caps true parallel driver invocations process-wide.
	// One machine drives one visible browser, so the default is 1.
	DriverConcurrency int64

	SchedulerTick         time.Duration
	DefaultBackupInterval time.Duration
	DefaultCheckInterval  time.Duration

	// Optional S3 mirror for backup artifacts. Disabled unless a bucket is
	// configured.
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

// fileConfig mirrors Config for the optional YAML file named by
// CONSOLEBACK_CONFIG. Durations are strings like "15m".
type fileConfig struct {
	HTTPListenAddr        string `yaml:"http_listen_addr"`
	LogLevel              string `yaml:"log_level"`
	DataDir               string `yaml:"data_dir"`
	BackupRoot            string `yaml:"backup_root"`
	DriverURL             string `yaml:"driver_url"`
	DriverTimeout         string `yaml:"driver_timeout"`
	LoginTimeout          string `yaml:"login_timeout"`
	DriverConcurrency     int64  `yaml:"driver_concurrency"`
	SchedulerTick         string `yaml:"scheduler_tick"`
	DefaultBackupInterval string `yaml:"default_backup_interval"`
	DefaultCheckInterval  string `yaml:"default_check_interval"`
	S3Endpoint            string `yaml:"s3_endpoint"`
	S3Region              string `yaml:"s3_region"`
	S3Bucket              string `yaml:"s3_bucket"`
	S3AccessKey           string `yaml:"s3_access_key"`
	S3SecretKey           string `yaml:"s3_secret_key"`
}

// Load builds the configuration from defaults, then the optional YAML file,
// then environment variables. Environment always wins.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPListenAddr:        ":8450",
		LogLevel:              "info",
		DataDir:               "data",
		DriverURL:             "http://127.0.0.1:8791",
		DriverTimeout:         3 * time.Minute,
		LoginTimeout:          2 * time.Minute,
		DriverConcurrency:     1,
		SchedulerTick:         time.Minute,
		DefaultBackupInterval: 24 * time.Hour,
		DefaultCheckInterval:  4 * time.Hour,
		S3Region:              "us-east-1",
	}

	if path := os.Getenv("CONSOLEBACK_CONFIG"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.BackupRoot == "" {
		cfg.BackupRoot = filepath.Join(cfg.DataDir, "backups")
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.HTTPListenAddr, fc.HTTPListenAddr)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.BackupRoot, fc.BackupRoot)
	setString(&cfg.DriverURL, fc.DriverURL)
	setString(&cfg.S3Endpoint, fc.S3Endpoint)
	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3Bucket, fc.S3Bucket)
	setString(&cfg.S3AccessKey, fc.S3AccessKey)
	setString(&cfg.S3SecretKey, fc.S3SecretKey)
	if fc.DriverConcurrency > 0 {
		cfg.DriverConcurrency = fc.DriverConcurrency
	}

	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{fc.DriverTimeout, &cfg.DriverTimeout},
		{fc.LoginTimeout, &cfg.LoginTimeout},
		{fc.SchedulerTick, &cfg.SchedulerTick},
		{fc.DefaultBackupInterval, &cfg.DefaultBackupInterval},
		{fc.DefaultCheckInterval, &cfg.DefaultCheckInterval},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config file %s: %w", path, err)
		}
		*d.dst = parsed
	}

	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.HTTPListenAddr, os.Getenv("HTTP_LISTEN_ADDR"))
	setString(&cfg.LogLevel, os.Getenv("LOG_LEVEL"))
	setString(&cfg.DataDir, os.Getenv("DATA_DIR"))
	setString(&cfg.BackupRoot, os.Getenv("BACKUP_ROOT"))
	setString(&cfg.DriverURL, os.Getenv("DRIVER_URL"))
	setString(&cfg.S3Endpoint, os.Getenv("S3_ENDPOINT"))
	setString(&cfg.S3Region, os.Getenv("S3_REGION"))
	setString(&cfg.S3Bucket, os.Getenv("S3_BUCKET"))
	setString(&cfg.S3AccessKey, os.Getenv("S3_ACCESS_KEY"))
	setString(&cfg.S3SecretKey, os.Getenv("S3_SECRET_KEY"))

	if v := os.Getenv("DRIVER_CONCURRENCY"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid DRIVER_CONCURRENCY %q", v)
		}
		cfg.DriverConcurrency = n
	}

	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"DRIVER_TIMEOUT", &cfg.DriverTimeout},
		{"LOGIN_TIMEOUT", &cfg.LoginTimeout},
		{"SCHEDULER_TICK", &cfg.SchedulerTick},
		{"DEFAULT_BACKUP_INTERVAL", &cfg.DefaultBackupInterval},
		{"DEFAULT_CHECK_INTERVAL", &cfg.DefaultCheckInterval},
	} {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.key, v, err)
		}
		*d.dst = parsed
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// RegistryPath is the console registry file inside DataDir.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.DataDir, "registry.json")
}

// SessionPath is the saved-session file inside DataDir.
func (c *Config) SessionPath() string {
	return filepath.Join(c.DataDir, "session.json")
}

// S3MirrorEnabled reports whether backup artifacts are mirrored to S3.
func (c *Config) S3MirrorEnabled() bool {
	return c.S3Bucket != ""
}
