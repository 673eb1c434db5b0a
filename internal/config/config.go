// Package config handles loading and parsing application configuration.
// It supports two sources for the file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value in the file can be overridden by its environment variable.
// The parsed values are returned as a *Config pointer so the struct is
// shared by reference rather than copied everywhere.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage drivers understood by StorageDriver.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config is the root configuration structure.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// StorageDriver picks the backend: "sqlite" or "mongo".
	StorageDriver string `yaml:"storage_driver" env:"STORAGE_DRIVER" env-default:"sqlite"`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH"`

	// BcryptSaltRounds is the bcrypt cost factor used when hashing
	// student passwords.
	BcryptSaltRounds int `yaml:"bcrypt_salt_rounds" env:"BCRYPT_SALT_ROUNDS" env-default:"12"`

	Mongo Mongo `yaml:"mongo"`

	// HTTPServer is embedded (not a pointer) so its fields are accessible
	// directly on Config:  cfg.HTTPServer.Addr  or after promotion cfg.Addr
	HTTPServer `yaml:"http_server"`
}

// Mongo holds the MongoDB connection settings (storage_driver: mongo).
type Mongo struct {
	URI            string        `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database       string        `yaml:"database" env:"MONGO_DATABASE" env-default:"student-registry"`
	Collection     string        `yaml:"collection" env:"MONGO_COLLECTION" env-default:"students"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"MONGO_CONNECT_TIMEOUT" env-default:"10s"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`
}

// Validate checks the cross-field rules cleanenv's tags cannot express.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverSQLite:
		if c.StoragePath == "" {
			return fmt.Errorf("config: storage_path is required for the %q driver", DriverSQLite)
		}
	case DriverMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" || c.Mongo.Collection == "" {
			return fmt.Errorf("config: mongo uri, database and collection are required for the %q driver", DriverMongo)
		}
	default:
		return fmt.Errorf("config: unknown storage_driver %q", c.StorageDriver)
	}

	if c.BcryptSaltRounds <= 0 {
		return fmt.Errorf("config: bcrypt_salt_rounds must be positive, got %d", c.BcryptSaltRounds)
	}

	return nil
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	// cleanenv.ReadConfig reads the YAML file and populates the struct.
	// It also reads any env:"..." tagged fields from the environment,
	// fills env-default values and enforces env-required.
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to exit on failure: if this
// function returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err.Error())
	}

	return cfg
}
