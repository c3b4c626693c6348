// Package config loads library settings from flags, LIBRARY_* environment
// variables, .env files and an optional .library.yaml config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"library-catalog/internal/logging"
	"library-catalog/library"
)

// EnvPrefix is prepended to every environment variable the config reads.
const EnvPrefix = "LIBRARY"

// Viper keys.
const (
	KeyBackend          = "backend"
	KeyDataDir          = "data_dir"
	KeyPublicationsFile = "publications_file"
	KeyUsersFile        = "users_file"
	KeySnapshotFile     = "snapshot_file"
	KeyLogLevel         = "log_level"
	KeyLogFormat        = "log_format"
	KeyLogOutput        = "log_output"
	KeyVerbose          = "verbose"
)

// Config holds the resolved application configuration.
type Config struct {
	// Backend is the selector token; empty means ask interactively.
	Backend string

	Storage library.StorageOptions

	LogLevel  string
	LogFormat string
	LogOutput string
	Verbose   bool

	// ConfigFile is the config file that was read, if any.
	ConfigFile string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBackend, "")
	v.SetDefault(KeyDataDir, ".")
	v.SetDefault(KeyPublicationsFile, library.DefaultPublicationsFile)
	v.SetDefault(KeyUsersFile, library.DefaultUsersFile)
	v.SetDefault(KeySnapshotFile, library.DefaultSnapshotFile)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "auto")
	v.SetDefault(KeyLogOutput, "stderr")
}

// Load resolves configuration in order of precedence:
//  1. flags bound to v
//  2. LIBRARY_* environment variables
//  3. .env and .env.local
//  4. configFile, or .library.yaml in the working or home directory
//  5. defaults
func Load(v *viper.Viper, configFile string) (*Config, error) {
	loadEnvFiles()

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(".library")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return &Config{
		Backend: v.GetString(KeyBackend),
		Storage: library.StorageOptions{
			Dir:              v.GetString(KeyDataDir),
			PublicationsFile: v.GetString(KeyPublicationsFile),
			UsersFile:        v.GetString(KeyUsersFile),
			SnapshotFile:     v.GetString(KeySnapshotFile),
		},
		LogLevel:   v.GetString(KeyLogLevel),
		LogFormat:  v.GetString(KeyLogFormat),
		LogOutput:  v.GetString(KeyLogOutput),
		Verbose:    v.GetBool(KeyVerbose),
		ConfigFile: v.ConfigFileUsed(),
	}, nil
}

// Logging returns the logger configuration; --verbose forces debug.
func (c *Config) Logging() *logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Format = c.LogFormat
	cfg.Output = c.LogOutput
	if c.Verbose {
		cfg.Level = "debug"
	}
	return cfg
}

// loadEnvFiles loads .env then .env.local; missing files are ignored.
func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
}
