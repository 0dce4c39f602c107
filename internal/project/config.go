package project

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/interfaces"
	"github.com/spf13/viper"
)

// ConfigVersion is the current routinely.yaml schema version
const ConfigVersion = 1

const (
	defaultStoragePath = DirName + "/state.db"
	defaultPushTimeout = 10 * time.Second
	defaultLogLevel    = "warn"
)

// DefaultConfig is what init writes when no flags are given
func DefaultConfig() *interfaces.ProjectConfig {
	return &interfaces.ProjectConfig{
		Version:  ConfigVersion,
		Platform: interfaces.PlatformNative,
		Storage: interfaces.StorageConfig{
			Driver: interfaces.DriverSQLite3,
			Path:   defaultStoragePath,
		},
		Push: interfaces.PushConfig{
			Timeout: defaultPushTimeout,
		},
		Log: interfaces.LogConfig{
			Level: defaultLogLevel,
		},
	}
}

// NewViper returns a viper instance with every key defaulted and bound to
// its ROUTINELY_* environment variable.
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("platform", string(d.Platform))
	v.SetDefault("storage.driver", string(d.Storage.Driver))
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("push.project_id", "")
	v.SetDefault("push.endpoint", "")
	v.SetDefault("push.timeout", d.Push.Timeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Decode unmarshals v into a ProjectConfig
func Decode(v *viper.Viper) (*interfaces.ProjectConfig, error) {
	var config interfaces.ProjectConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewGenericError("failed to parse configuration structure", err)
	}
	config.Platform = interfaces.Platform(strings.ToLower(string(config.Platform)))
	return &config, nil
}

// Validate checks required fields and enumerations
func Validate(config *interfaces.ProjectConfig) error {
	if config.Version == 0 {
		return errors.NewValidationError("invalid configuration: missing version")
	}
	if config.Version > ConfigVersion {
		return errors.NewValidationError(fmt.Sprintf("invalid configuration: unsupported version %d", config.Version))
	}

	switch config.Platform {
	case interfaces.PlatformNative, interfaces.PlatformWeb:
	default:
		return errors.NewValidationError(
			fmt.Sprintf("invalid configuration: platform must be 'native' or 'web', got %q", config.Platform))
	}

	if config.Platform == interfaces.PlatformNative {
		switch config.Storage.Driver {
		case interfaces.DriverSQLite3, interfaces.DriverSQLite:
		default:
			return errors.NewValidationError(
				fmt.Sprintf("invalid configuration: storage driver must be 'sqlite3' or 'sqlite', got %q", config.Storage.Driver))
		}
		if strings.TrimSpace(config.Storage.Path) == "" {
			return errors.NewValidationError("invalid configuration: native platform requires storage.path")
		}
	}

	if config.Push.Timeout < 0 {
		return errors.NewValidationError("invalid configuration: push.timeout must not be negative")
	}
	return nil
}

// StoragePath resolves the configured database path against the project root
func StoragePath(projectRoot string, config *interfaces.ProjectConfig) string {
	path := config.Storage.Path
	if path == "" {
		path = defaultStoragePath
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, filepath.FromSlash(path))
}
