package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/routinely/cli/internal/interfaces"
	"github.com/routinely/cli/internal/project"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	projectDir string
	platform   string
	logLevel   string
	verbose    bool
	rootCmd    = &cobra.Command{
		Use:   "routinely",
		Short: "Routinely CLI - Drive the routinely client state from a terminal",
		Long: `Routinely keeps the client-side state of the routinely planner: the
onboarding flow, the routine view and the signed-in user.

Onboarding progress and routine view state are stored per project in
.routinely/ and restored on every run. On the web platform state lives for
the current session only.`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			syncLogger()
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&projectDir, "project-dir", "", "project directory (default is current directory)")
	flags.StringVar(&platform, "platform", "", "override the configured platform (native, web)")
	flags.StringVar(&logLevel, "log-level", "", "override the configured log level")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	viper.BindPFlag("platform", flags.Lookup("platform"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
}

// initConfig lets ROUTINELY_* variables override flags left unset
func initConfig() {
	viper.SetEnvPrefix(project.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// applyOverrides copies flag values onto a loaded project configuration
func applyOverrides(config *interfaces.ProjectConfig) error {
	if p := strings.TrimSpace(viper.GetString("platform")); p != "" {
		config.Platform = interfaces.Platform(strings.ToLower(p))
	}
	if l := strings.TrimSpace(viper.GetString("log.level")); l != "" {
		config.Log.Level = l
	}
	return project.Validate(config)
}

// resolveProjectDir resolves the project directory from flag or current directory
// Returns the absolute path to the project root
func resolveProjectDir() (string, error) {
	dir := projectDir
	if dir == "" {
		return getCurrentDir()
	}

	if strings.HasPrefix(dir, "~/") || dir == "~" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, strings.TrimPrefix(dir[1:], "/"))
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	return absDir, nil
}

func getCurrentDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
