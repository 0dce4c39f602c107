package app

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/routinely/cli/internal/classify"
	"github.com/routinely/cli/internal/interfaces"
	"github.com/routinely/cli/internal/onboarding"
	"github.com/routinely/cli/internal/project"
	"github.com/routinely/cli/internal/push"
	"github.com/routinely/cli/internal/routine"
	"github.com/routinely/cli/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type staticTokens string

func (s staticTokens) PushToken(context.Context, string) (string, error) {
	return string(s), nil
}

func nativeConfig(driver interfaces.StorageDriver) *interfaces.ProjectConfig {
	cfg := project.DefaultConfig()
	cfg.Storage.Driver = driver
	return cfg
}

func TestStatePersistsAcrossRuns(t *testing.T) {
	for _, driver := range []interfaces.StorageDriver{interfaces.DriverSQLite3, interfaces.DriverSQLite} {
		t.Run(string(driver), func(t *testing.T) {
			ctx := context.Background()
			root := t.TempDir()
			opts := Options{Config: nativeConfig(driver), Root: root}

			first, err := New(ctx, opts)
			require.NoError(t, err)
			first.Onboarding.Next()
			first.Onboarding.SetAIConsent(true)
			first.Onboarding.SetSubmitting(true)
			require.NoError(t, first.Routine.SetRoutineFilter(routine.FilterPersonal))
			require.NoError(t, first.Auth.Login("user-1"))
			require.NoError(t, first.Close())

			_, err = os.Stat(filepath.Join(root, ".routinely", "state.db"))
			require.NoError(t, err, "database lives under the project directory")

			second, err := New(ctx, opts)
			require.NoError(t, err)
			defer second.Close()

			o := second.Onboarding.GetState()
			assert.Equal(t, onboarding.StepTimetableUpload, o.CurrentStep)
			assert.True(t, o.Data.AIConsent)
			assert.False(t, o.IsSubmitting)
			assert.Equal(t, routine.FilterPersonal, second.Routine.GetState().RoutineFilter)
			assert.False(t, second.Auth.GetState().IsAuthenticated, "auth is never persisted")
			assert.Empty(t, second.HydrationErrors())
		})
	}
}

func TestWebPlatformKeepsStateInMemory(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	cfg := project.DefaultConfig()
	cfg.Platform = interfaces.PlatformWeb

	a, err := New(ctx, Options{Config: cfg, Root: root})
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.Caps.Web())
	assert.IsType(t, &state.MemoryBackend{}, a.Backend)

	a.Onboarding.CompleteOnboarding()
	raw, err := a.Backend.Get(ctx, onboarding.StorageName)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"currentStep":"complete"`)

	_, err = os.Stat(filepath.Join(root, ".routinely"))
	assert.True(t, os.IsNotExist(err), "web platform never touches disk")
}

func TestCorruptEntryFallsBack(t *testing.T) {
	ctx := context.Background()
	backend := state.NewMemoryBackend()
	backend.Set(ctx, routine.StorageName, []byte(`{"selectedDate":"not a date"}`))
	now := func() time.Time { return time.Date(2026, 7, 4, 12, 0, 0, 0, time.UTC) }

	a, err := New(ctx, Options{Config: project.DefaultConfig(), Backend: backend, Now: now})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, routine.InitialState(now()), a.Routine.GetState())
	assert.Contains(t, a.HydrationErrors(), routine.StorageName)
}

func TestClassifierIsInstalledAsDefault(t *testing.T) {
	var out bytes.Buffer
	a, err := New(context.Background(), Options{
		Config:   project.DefaultConfig(),
		Backend:  state.NewMemoryBackend(),
		Notifier: classify.NewConsoleNotifier(&out),
	})
	require.NoError(t, err)
	defer a.Close()

	assert.Same(t, a.Classifier, classify.Default())

	c := a.Classifier.HandleAndReport(context.Background(), stderrors.New("boom"))
	assert.Equal(t, classify.MessageUnknown, c.Message)
	assert.Contains(t, out.String(), classify.MessageUnknown)
}

func TestPushUsesStoredPermission(t *testing.T) {
	ctx := context.Background()
	backend := state.NewMemoryBackend()
	asked := 0

	a, err := New(ctx, Options{
		Config:  project.DefaultConfig(),
		Backend: backend,
		Tokens:  staticTokens("ExponentPushToken[1]"),
		Confirm: func(string) (bool, error) { asked++; return true, nil },
	})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "ExponentPushToken[1]", a.Push.Register(ctx))
	assert.Equal(t, "ExponentPushToken[1]", a.Push.Register(ctx))
	assert.Equal(t, 1, asked)

	raw, err := backend.Get(ctx, push.PermissionKey)
	require.NoError(t, err)
	assert.Equal(t, "granted", string(raw))
}

func TestClearPersisted(t *testing.T) {
	ctx := context.Background()
	backend := state.NewMemoryBackend()
	a, err := New(ctx, Options{Config: project.DefaultConfig(), Backend: backend})
	require.NoError(t, err)
	defer a.Close()

	a.Onboarding.Next()
	a.Routine.SetActiveRoutine("r1")
	require.NoError(t, a.ClearPersisted(ctx))

	keys, err := backend.Keys(ctx)
	require.NoError(t, err)
	assert.NotContains(t, keys, onboarding.StorageName)
	assert.NotContains(t, keys, routine.StorageName)
	assert.Equal(t, onboarding.StepTimetableUpload, a.Onboarding.GetState().CurrentStep)
}

func TestNewRejectsBadPlatform(t *testing.T) {
	cfg := project.DefaultConfig()
	cfg.Platform = "desktop"

	_, err := New(context.Background(), Options{Config: cfg})
	assert.Error(t, err)
}
