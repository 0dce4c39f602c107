// Package app wires the stores, their persistence, the classifier and the
// push service for one process.
package app

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"time"

	"github.com/routinely/cli/internal/auth"
	"github.com/routinely/cli/internal/classify"
	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/interfaces"
	"github.com/routinely/cli/internal/onboarding"
	"github.com/routinely/cli/internal/persist"
	"github.com/routinely/cli/internal/push"
	"github.com/routinely/cli/internal/routine"
	"github.com/routinely/cli/internal/state"
	"go.uber.org/zap"
)

// Options configures New
type Options struct {
	Config *interfaces.ProjectConfig
	// Root resolves a relative storage path.
	Root string

	Logger   *zap.Logger
	Notifier interfaces.Notifier

	// Permissions defaults to a prompt remembered in storage.
	Permissions interfaces.PermissionProvider
	// Confirm is used by the default permission prompt.
	Confirm push.Confirmer
	// Tokens defaults to the HTTP provider at push.endpoint.
	Tokens interfaces.TokenProvider
	// Backend bypasses platform selection.
	Backend interfaces.StorageBackend

	Now func() time.Time
}

// App is the client state layer of one process
type App struct {
	Caps       state.Capabilities
	Backend    interfaces.StorageBackend
	Classifier *classify.Classifier

	Onboarding *onboarding.Machine
	Routine    *routine.Store
	Auth       *auth.Store
	Push       *push.Service

	onboardingAdapter *persist.Adapter[onboarding.State, onboarding.Persisted]
	routineAdapter    *persist.Adapter[routine.State, routine.Persisted]

	log *zap.Logger
}

// New resolves the platform, opens storage and hydrates every persisted
// store before returning.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.NewGenericError("app requires a configuration", nil)
	}
	cfg := opts.Config

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	caps, err := state.ResolveCapabilities(string(cfg.Platform))
	if err != nil {
		return nil, err
	}

	backend := opts.Backend
	if backend == nil {
		path := cfg.Storage.Path
		if path != "" && !filepath.IsAbs(path) && opts.Root != "" {
			path = filepath.Join(opts.Root, filepath.FromSlash(path))
		}
		backend, err = state.SelectBackend(ctx, caps, state.SQLOpener(cfg.Storage.Driver, path))
		if err != nil {
			return nil, err
		}
	}
	log.Debug("Storage selected",
		zap.String("platform", string(caps.Platform)),
		zap.Bool("durable", caps.DurableStorage()))

	classifier := classify.New(classify.NewZapSink(log.Named("diagnostics")), opts.Notifier)
	classify.SetDefault(classifier)

	a := &App{
		Caps:       caps,
		Backend:    backend,
		Classifier: classifier,
		Onboarding: onboarding.NewMachine(),
		Routine:    routine.NewStore(opts.Now),
		Auth:       auth.NewStore(),
		log:        log,
	}

	a.onboardingAdapter = persist.New(ctx, a.Onboarding.Store(), persist.Config[onboarding.State, onboarding.Persisted]{
		Name:    onboarding.StorageName,
		Project: onboarding.Project,
		Merge:   onboarding.Merge,
		Backend: backend,
		Logger:  log,
	})
	a.routineAdapter = persist.New(ctx, a.Routine.Store(), persist.Config[routine.State, routine.Persisted]{
		Name:    routine.StorageName,
		Project: routine.Project,
		Merge:   routine.Merge,
		Backend: backend,
		Logger:  log,
	})

	permissions := opts.Permissions
	if permissions == nil {
		permissions = push.NewPromptPermissions(backend, opts.Confirm)
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = push.NewHTTPTokenProvider(cfg.Push.Endpoint, cfg.Push.Timeout)
	}
	a.Push = push.NewService(push.Options{
		Permissions: permissions,
		Tokens:      tokens,
		Device:      push.NewDeviceIDProvider(backend),
		ProjectID:   cfg.Push.ProjectID,
		Classifier:  classifier,
		Logger:      log,
	})

	return a, nil
}

// HydrationErrors returns the errors that made a store fall back to its
// initial state, keyed by storage entry.
func (a *App) HydrationErrors() map[string]error {
	out := map[string]error{}
	if err := a.onboardingAdapter.HydrationErr(); err != nil {
		out[a.onboardingAdapter.Name()] = err
	}
	if err := a.routineAdapter.HydrationErr(); err != nil {
		out[a.routineAdapter.Name()] = err
	}
	return out
}

// WriteFailures returns the number of failed persistence writes so far
func (a *App) WriteFailures() int {
	_, onboardingFailures, _ := a.onboardingAdapter.Stats()
	_, routineFailures, _ := a.routineAdapter.Stats()
	return onboardingFailures + routineFailures
}

// ClearPersisted deletes both storage entries. In-memory state is kept.
func (a *App) ClearPersisted(ctx context.Context) error {
	return stderrors.Join(
		a.onboardingAdapter.Clear(ctx),
		a.routineAdapter.Clear(ctx),
	)
}

// Close stops persistence and releases storage
func (a *App) Close() error {
	a.onboardingAdapter.Close()
	a.routineAdapter.Close()
	if err := a.Backend.Close(); err != nil {
		return errors.NewStorageError("failed to close storage", err)
	}
	return nil
}
