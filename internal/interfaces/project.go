package interfaces

import (
	"context"
	"time"
)

// ProjectManager handles project directory creation, discovery and configuration loading
type ProjectManager interface {
	Initialize(ctx context.Context, opts InitOptions) error
	FindProjectRoot(startDir string) (string, error)
	LoadConfig(projectRoot string) (*ProjectConfig, error)
}

// InitOptions contains parameters for project initialization
type InitOptions struct {
	TargetDirectory string
	Platform        Platform
	StorageDriver   StorageDriver
	PushProjectID   string
	PushEndpoint    string
}

// Platform identifies the runtime the client state layer is hosted in
type Platform string

const (
	PlatformNative Platform = "native"
	PlatformWeb    Platform = "web"
)

// StorageDriver names the database/sql driver backing native storage
type StorageDriver string

const (
	// DriverSQLite3 is the cgo mattn/go-sqlite3 driver
	DriverSQLite3 StorageDriver = "sqlite3"
	// DriverSQLite is the pure Go modernc.org/sqlite driver
	DriverSQLite StorageDriver = "sqlite"
)

// ProjectConfig represents the project configuration
type ProjectConfig struct {
	Version  int           `yaml:"version" mapstructure:"version"`
	Platform Platform      `yaml:"platform" mapstructure:"platform"`
	Storage  StorageConfig `yaml:"storage" mapstructure:"storage"`
	Push     PushConfig    `yaml:"push" mapstructure:"push"`
	Log      LogConfig     `yaml:"log" mapstructure:"log"`
}

// StorageConfig contains durable storage settings
type StorageConfig struct {
	Driver StorageDriver `yaml:"driver" mapstructure:"driver"`
	Path   string        `yaml:"path" mapstructure:"path"`
}

// PushConfig contains push token provider settings
type PushConfig struct {
	ProjectID string        `yaml:"project_id,omitempty" mapstructure:"project_id"`
	Endpoint  string        `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	Timeout   time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development,omitempty" mapstructure:"development"`
}
