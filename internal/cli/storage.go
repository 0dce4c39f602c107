package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/routinely/cli/internal/app"
	"github.com/routinely/cli/internal/state"
	"github.com/spf13/cobra"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect and clear saved state",
}

func init() {
	rootCmd.AddCommand(storageCmd)

	addAction(storageCmd, "status", "Show where state is saved and how loading went", cobra.NoArgs, runStorageStatus)
	addAction(storageCmd, "clear", "Delete the saved onboarding and routine entries", cobra.NoArgs, runStorageClear)
}

type keyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

func runStorageStatus(ctx context.Context, a *app.App, out io.Writer, _ []string) error {
	fmt.Fprintf(out, "Platform: %s\n", a.Caps.Platform)

	switch b := a.Backend.(type) {
	case *state.SQLBackend:
		fmt.Fprintf(out, "Backend:  %s (%s)\n", b.Driver(), b.Path())
	case *state.MemoryBackend:
		fmt.Fprintln(out, "Backend:  memory (session only)")
	default:
		fmt.Fprintf(out, "Backend:  %T\n", b)
	}

	if lister, ok := a.Backend.(keyLister); ok {
		keys, err := lister.Keys(ctx)
		if err != nil {
			return err
		}
		entries := "-"
		if len(keys) > 0 {
			entries = strings.Join(keys, ", ")
		}
		fmt.Fprintf(out, "Entries:  %s\n", entries)
	}

	failed := a.HydrationErrors()
	names := make([]string, 0, len(failed))
	for name := range failed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "Restore failed for %s, using defaults: %v\n", name, failed[name])
	}
	if n := a.WriteFailures(); n > 0 {
		fmt.Fprintf(out, "Failed writes: %d\n", n)
	}
	return nil
}

func runStorageClear(ctx context.Context, a *app.App, out io.Writer, _ []string) error {
	if err := a.ClearPersisted(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Saved onboarding and routine state deleted")
	return nil
}
