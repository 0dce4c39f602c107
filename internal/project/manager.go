package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/interfaces"
	"gopkg.in/yaml.v3"
)

const (
	// DirName is the per-project directory holding config and state
	DirName = ".routinely"
	// ConfigName is the config file inside DirName
	ConfigName = "routinely.yaml"
	// EnvPrefix prefixes environment overrides, e.g. ROUTINELY_STORAGE_DRIVER
	EnvPrefix = "ROUTINELY"
)

// Manager implements the ProjectManager interface
type Manager struct{}

// NewManager creates a new ProjectManager instance
func NewManager() interfaces.ProjectManager {
	return &Manager{}
}

// ConfigPath returns the config file location for a project root
func ConfigPath(projectRoot string) string {
	return filepath.Join(projectRoot, DirName, ConfigName)
}

// FindProjectRoot searches for .routinely/routinely.yaml in current and parent directories
func (m *Manager) FindProjectRoot(startDir string) (string, error) {
	absPath, err := filepath.Abs(startDir)
	if err != nil {
		return "", errors.NewGenericError("failed to resolve absolute path", err)
	}

	currentDir := absPath
	for {
		info, err := os.Stat(ConfigPath(currentDir))
		if err == nil && !info.IsDir() {
			return currentDir, nil
		}
		if err != nil && os.IsPermission(err) {
			return "", errors.NewGenericError("permission denied accessing "+filepath.Join(DirName, ConfigName), err)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", errors.NewContextError("not in a routinely project directory (run 'routinely init')")
}

// LoadConfig reads routinely.yaml, applies defaults and ROUTINELY_* overrides
// and validates the result.
func (m *Manager) LoadConfig(projectRoot string) (*interfaces.ProjectConfig, error) {
	configPath := ConfigPath(projectRoot)

	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewContextError("configuration file not found")
		}
		return nil, errors.NewGenericError("failed to access configuration file", err)
	}

	v := NewViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewGenericError("failed to parse configuration file", err)
	}

	config, err := Decode(v)
	if err != nil {
		return nil, err
	}
	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Initialize creates the project directory and writes a default configuration
func (m *Manager) Initialize(ctx context.Context, opts interfaces.InitOptions) error {
	targetDir := opts.TargetDirectory
	if targetDir == "" {
		var err error
		targetDir, err = os.Getwd()
		if err != nil {
			return errors.NewGenericError("failed to get current directory", err)
		}
	}

	absTargetDir, err := filepath.Abs(targetDir)
	if err != nil {
		return errors.NewGenericError("failed to resolve absolute path", err)
	}
	targetDir = absTargetDir

	if info, err := os.Stat(targetDir); err == nil && !info.IsDir() {
		return errors.NewValidationError("path is not a directory")
	}
	if _, err := os.Stat(ConfigPath(targetDir)); err == nil {
		return errors.NewValidationError("directory already contains a routinely project")
	}

	config := DefaultConfig()
	if opts.Platform != "" {
		config.Platform = opts.Platform
	}
	if opts.StorageDriver != "" {
		config.Storage.Driver = opts.StorageDriver
	}
	config.Push.ProjectID = strings.TrimSpace(opts.PushProjectID)
	config.Push.Endpoint = strings.TrimSpace(opts.PushEndpoint)
	if err := Validate(config); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return errors.NewGenericError("initialization cancelled", err)
	}

	projectDir := filepath.Join(targetDir, DirName)
	_, statErr := os.Stat(projectDir)
	created := os.IsNotExist(statErr)

	rollback := func() {
		if created {
			os.RemoveAll(projectDir)
		}
	}

	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return errors.NewGenericError(fmt.Sprintf("failed to create directory %s", projectDir), err)
	}

	if err := m.writeConfig(targetDir, config); err != nil {
		rollback()
		return err
	}

	// Keep the local database out of version control.
	ignore := filepath.Join(projectDir, ".gitignore")
	if err := os.WriteFile(ignore, []byte("*.db\n*.db-journal\n"), 0644); err != nil {
		rollback()
		return errors.NewGenericError("failed to write .gitignore", err)
	}

	return nil
}

// writeConfig writes the project configuration to routinely.yaml
func (m *Manager) writeConfig(targetDir string, config *interfaces.ProjectConfig) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.NewGenericError("failed to encode configuration", err)
	}
	if err := os.WriteFile(ConfigPath(targetDir), data, 0644); err != nil {
		return errors.NewGenericError("failed to write config file", err)
	}
	return nil
}
