package project

import (
	"github.com/routinely/cli/internal/interfaces"
)

// Context is a located project with its loaded configuration
type Context struct {
	Root   string
	Config *interfaces.ProjectConfig
}

// Load finds the project enclosing startDir and reads its configuration
func Load(pm interfaces.ProjectManager, startDir string) (*Context, error) {
	root, err := pm.FindProjectRoot(startDir)
	if err != nil {
		return nil, err
	}
	config, err := pm.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	return &Context{Root: root, Config: config}, nil
}

// StoragePath is the absolute database path for the project
func (c *Context) StoragePath() string {
	return StoragePath(c.Root, c.Config)
}
