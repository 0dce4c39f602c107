package cli

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/routinely/cli/internal/app"
	"github.com/routinely/cli/internal/classify"
	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/interfaces"
	"github.com/routinely/cli/internal/logging"
	"github.com/routinely/cli/internal/project"
	"github.com/routinely/cli/internal/push"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// action runs against an open App. Every store command is an action so the
// shell can dispatch the same code.
type action func(ctx context.Context, a *app.App, out io.Writer, args []string) error

// actions maps "group name" to the action registered for it
var actions = map[string]action{}

var logger = zap.NewNop()

// addAction registers fn as a subcommand of parent and in the shell table
func addAction(parent *cobra.Command, use, short string, args cobra.PositionalArgs, fn action) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, appOptions{}, func(ctx context.Context, a *app.App) error {
				return fn(ctx, a, cmd.OutOrStdout(), args)
			})
		},
	}
	parent.AddCommand(cmd)
	actions[parent.Name()+" "+cmd.Name()] = fn
	return cmd
}

// actionNames lists the registered actions in order
func actionNames() []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupAction(words []string) (action, []string, bool) {
	if len(words) < 2 {
		return nil, nil, false
	}
	fn, ok := actions[strings.ToLower(words[0])+" "+strings.ToLower(words[1])]
	return fn, words[2:], ok
}

type appOptions struct {
	confirm push.Confirmer
}

// openApp locates the project, builds the logger and opens the App
func openApp(cmd *cobra.Command, opts appOptions) (*app.App, error) {
	targetDir, err := resolveProjectDir()
	if err != nil {
		return nil, errors.NewGenericError("failed to resolve project directory", err)
	}

	pc, err := project.Load(getProjectManager(), targetDir)
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(pc.Config); err != nil {
		return nil, err
	}
	pc.Config.Storage.Path = pc.StoragePath()

	log, err := logging.New(pc.Config.Log.Level, pc.Config.Log.Development, verbose)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	logger = log
	zap.ReplaceGlobals(log)

	return app.New(commandContext(cmd), app.Options{
		Config:   pc.Config,
		Root:     pc.Root,
		Logger:   log,
		Notifier: classify.NewConsoleNotifier(cmd.ErrOrStderr()),
		Confirm:  opts.confirm,
	})
}

// withApp opens the App, runs fn and closes the App
func withApp(cmd *cobra.Command, opts appOptions, fn func(ctx context.Context, a *app.App) error) (err error) {
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(commandContext(cmd), a)
}

func syncLogger() {
	_ = logger.Sync()
}

// Helper functions to get manager instances
func getProjectManager() interfaces.ProjectManager {
	return project.NewManager()
}
