package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"aquacore/internal/blob"
	"aquacore/internal/core"
)

// Config collects everything the commands need to wire the service. Values
// resolve in precedence order: built-in defaults, then environment, then the
// --config file, then flags.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Blob        BlobConfig        `yaml:"blob"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Stocking    StockingPolicy    `yaml:"stocking"`
	Log         LogConfig         `yaml:"log"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type PersistenceConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

type BlobConfig struct {
	Driver string `yaml:"driver"`
	FSRoot string `yaml:"fs_root"`
}

type CatalogConfig struct {
	PackDir string `yaml:"pack_dir"`
	Watch   bool   `yaml:"watch"`
}

// StockingPolicy mirrors the calculator knobs. Zero values keep the engine
// defaults.
type StockingPolicy struct {
	SchoolSize   int `yaml:"school_size"`
	MaxQuantity  int `yaml:"max_quantity"`
	LowStockDays int `yaml:"low_stock_days"`
	CriticalDays int `yaml:"critical_days"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Environment variables consulted by the commands beyond the ones the
// storage factory already defines.
const (
	envHTTPAddr   = "AQUACORE_HTTP_ADDR"
	envBlobDriver = "AQUACORE_BLOB_DRIVER"
	envBlobFSRoot = "AQUACORE_BLOB_FS_ROOT"
	envPackDir    = "AQUACORE_PACK_DIR"
	envLogLevel   = "AQUACORE_LOG_LEVEL"
)

func defaultConfig() Config {
	var cfg Config
	cfg.HTTP.Addr = ":8080"
	cfg.Persistence.Driver = string(core.StorageMemory)
	cfg.Persistence.SQLitePath = "aquacore.db"
	cfg.Blob.Driver = string(blob.DriverFilesystem)
	cfg.Blob.FSRoot = "artifacts"
	cfg.Log.Level = "info"
	return cfg
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(envHTTPAddr); ok {
		c.HTTP.Addr = v
	}
	if v, ok := lookup(core.EnvStorageDriver); ok {
		c.Persistence.Driver = v
	}
	if v, ok := lookup(core.EnvSQLitePath); ok {
		c.Persistence.SQLitePath = v
	}
	if v, ok := lookup(core.EnvPostgresDSN); ok {
		c.Persistence.PostgresDSN = v
	}
	if v, ok := lookup(envBlobDriver); ok {
		c.Blob.Driver = v
	}
	if v, ok := lookup(envBlobFSRoot); ok {
		c.Blob.FSRoot = v
	}
	if v, ok := lookup(envPackDir); ok {
		c.Catalog.PackDir = v
	}
	if v, ok := lookup(envLogLevel); ok {
		c.Log.Level = v
	}
}

// applyFile overlays the YAML file onto the config. Fields absent from the
// file keep their current values.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyFlags overlays flags the user actually passed. Flag defaults never
// clobber file or environment values.
func (c *Config) applyFlags(flags *pflag.FlagSet) {
	if flags.Changed("addr") {
		c.HTTP.Addr = flagAddr
	}
	if flags.Changed("driver") {
		c.Persistence.Driver = flagDriver
	}
	if flags.Changed("sqlite-path") {
		c.Persistence.SQLitePath = flagSQLitePath
	}
	if flags.Changed("postgres-dsn") {
		c.Persistence.PostgresDSN = flagPostgresDSN
	}
	if flags.Changed("blob-driver") {
		c.Blob.Driver = flagBlobDriver
	}
	if flags.Changed("blob-root") {
		c.Blob.FSRoot = flagBlobRoot
	}
	if flags.Changed("pack-dir") {
		c.Catalog.PackDir = flagPackDir
	}
	if flags.Changed("watch") {
		c.Catalog.Watch = flagWatch
	}
	if flags.Changed("log-level") {
		c.Log.Level = flagLogLevel
	}
	if flags.Changed("dev") {
		c.Log.Development = flagDev
	}
}

// resolveConfig builds the effective configuration for the invoked command.
func resolveConfig(flags *pflag.FlagSet) (Config, error) {
	cfg := defaultConfig()
	cfg.applyEnv(os.LookupEnv)
	if flagConfig != "" {
		if err := cfg.applyFile(flagConfig); err != nil {
			return Config{}, err
		}
	}
	cfg.applyFlags(flags)
	return cfg, nil
}
