package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/interfaces"
	"github.com/spf13/cobra"
)

var (
	initPlatform      string
	storageDriver     string
	pushProjectID     string
	pushEndpoint      string
	interactiveInit   bool
	initPlatformLabel = map[string]interfaces.Platform{
		"Native: keep state in a local SQLite database.": interfaces.PlatformNative,
		"Web: keep state for the current session only.":  interfaces.PlatformWeb,
	}

	initCmd = &cobra.Command{
		Use:   "init [target_directory]",
		Short: "Initialize a new routinely project",
		Long: `
Initialize a new routinely project in the specified directory.
If no directory is specified, the current directory is used.

The project keeps its configuration in .routinely/routinely.yaml and, on the
native platform, its saved state in .routinely/state.db.

  --platform-target=native --storage-driver=sqlite3   cgo SQLite (default)
  --platform-target=native --storage-driver=sqlite    pure Go SQLite
  --platform-target=web                               session-only state

Use --interactive to be prompted for every setting.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initPlatform, "platform-target", "", "platform to configure (native, web)")
	initCmd.Flags().StringVar(&storageDriver, "storage-driver", "", "database driver for native storage (sqlite3, sqlite)")
	initCmd.Flags().StringVar(&pushProjectID, "push-project-id", "", "project id sent to the push token provider")
	initCmd.Flags().StringVar(&pushEndpoint, "push-endpoint", "", "push token provider URL")
	initCmd.Flags().BoolVarP(&interactiveInit, "interactive", "i", false, "prompt for every setting")
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	// Determine target directory with priority:
	// 1. Positional argument (if provided)
	// 2. --project-dir flag (if provided)
	// 3. Current directory (default)
	var targetDir string
	if len(args) > 0 {
		targetDir = args[0]
	} else if projectDir != "" {
		targetDir = projectDir
	}

	opts := interfaces.InitOptions{
		TargetDirectory: targetDir,
		PushProjectID:   pushProjectID,
		PushEndpoint:    pushEndpoint,
	}

	var err error
	if opts.Platform, err = parsePlatform(initPlatform); err != nil {
		return err
	}
	if opts.StorageDriver, err = parseStorageDriver(storageDriver); err != nil {
		return err
	}

	if interactiveInit {
		if err := promptInitOptions(defaultPrompter, &opts); err != nil {
			return err
		}
	}

	if err := getProjectManager().Initialize(ctx, opts); err != nil {
		return err
	}

	if targetDir == "" {
		targetDir, err = getCurrentDir()
		if err != nil {
			targetDir = "{current_dir}"
		}
	}

	platformName := opts.Platform
	if platformName == "" {
		platformName = interfaces.PlatformNative
	}

	cmd.Println()
	cmd.Printf("✅ Successfully initialized %s project in %s\n", platformName, targetDir)
	cmd.Println("📝 Next Steps:")
	cmd.Println("   1). Walk through onboarding: routinely onboarding walk")
	cmd.Println("   2). Pick a day and filter:   routinely routine date today")
	if opts.PushEndpoint == "" {
		cmd.Println("   3). Set push.endpoint in .routinely/routinely.yaml, then: routinely push register")
	} else {
		cmd.Println("   3). Register for reminders:  routinely push register")
	}
	cmd.Println()
	return nil
}

// promptInitOptions asks for every init setting not given on the command line
func promptInitOptions(p prompter, opts *interfaces.InitOptions) error {
	labels := make([]string, 0, len(initPlatformLabel))
	defaultLabel := ""
	for label, platform := range initPlatformLabel {
		labels = append(labels, label)
		if platform == interfaces.PlatformNative {
			defaultLabel = label
		}
	}
	sort.Strings(labels)

	choice, err := p.Select("Where will routinely run?", labels, defaultLabel)
	if err != nil {
		return errors.NewGenericError("could not select platform", err)
	}
	opts.Platform = initPlatformLabel[choice]

	if opts.Platform == interfaces.PlatformNative {
		driver, err := p.Select("Which SQLite driver should be used?",
			[]string{string(interfaces.DriverSQLite3), string(interfaces.DriverSQLite)},
			string(interfaces.DriverSQLite3))
		if err != nil {
			return errors.NewGenericError("could not select storage driver", err)
		}
		opts.StorageDriver = interfaces.StorageDriver(driver)
	}

	endpoint, err := p.Input("Push token endpoint (leave empty to skip):", opts.PushEndpoint)
	if err != nil {
		return errors.NewGenericError("could not read push endpoint", err)
	}
	opts.PushEndpoint = strings.TrimSpace(endpoint)

	if opts.PushEndpoint != "" {
		id, err := p.Input("Push project id:", opts.PushProjectID)
		if err != nil {
			return errors.NewGenericError("could not read push project id", err)
		}
		opts.PushProjectID = strings.TrimSpace(id)
	}
	return nil
}

// parsePlatform converts a flag value to a Platform; empty keeps the default
func parsePlatform(value string) (interfaces.Platform, error) {
	switch p := interfaces.Platform(strings.ToLower(strings.TrimSpace(value))); p {
	case "", interfaces.PlatformNative, interfaces.PlatformWeb:
		return p, nil
	default:
		return "", errors.NewValidationError(
			fmt.Sprintf("invalid platform: %s. Must be one of: native, web", value),
		)
	}
}

// parseStorageDriver converts a flag value to a StorageDriver; empty keeps the default
func parseStorageDriver(value string) (interfaces.StorageDriver, error) {
	switch d := interfaces.StorageDriver(strings.ToLower(strings.TrimSpace(value))); d {
	case "", interfaces.DriverSQLite3, interfaces.DriverSQLite:
		return d, nil
	default:
		return "", errors.NewValidationError(
			fmt.Sprintf("invalid storage driver: %s. Must be one of: sqlite3, sqlite", value),
		)
	}
}
