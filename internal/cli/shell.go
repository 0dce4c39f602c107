package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/routinely/cli/internal/app"
	"github.com/routinely/cli/internal/auth"
	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/onboarding"
	"github.com/routinely/cli/internal/routine"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session against one set of stores",
	Long: `Run onboarding, routine, auth and push commands in one process.

Every state change is printed as it happens. Type 'help' for the command
list and 'exit' to quit.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	return withApp(cmd, appOptions{}, func(ctx context.Context, a *app.App) error {
		out := cmd.OutOrStdout()
		unsubscribe := watchStores(a, out)
		defer unsubscribe()
		return runReadlineMode(ctx, a, out)
	})
}

// runReadlineMode runs the shell with readline support
func runReadlineMode(ctx context.Context, a *app.App, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "routinely> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".routinely_history"),
		AutoComplete:    shellCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return errors.NewGenericError("failed to initialize readline", err)
	}
	defer rl.Close()

	fmt.Fprintln(out, "Type 'help' for commands, 'exit' to quit.")
	printStep(out, a.Onboarding)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return nil
			}
			return errors.NewGenericError("error reading input", err)
		}

		if quit := execLine(ctx, a, out, line); quit {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
	}
}

// execLine runs one shell line and reports whether the shell should exit.
// Command errors are printed, never returned.
func execLine(ctx context.Context, a *app.App, out io.Writer, line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 {
		return false
	}

	switch strings.ToLower(words[0]) {
	case "exit", "quit":
		return true
	case "help":
		printShellHelp(out)
		return false
	}

	fn, args, ok := lookupAction(words)
	if !ok {
		fmt.Fprintf(out, "Unknown command: %s (type 'help')\n", line)
		return false
	}
	if err := fn(ctx, a, out, args); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
	}
	return false
}

func printShellHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	for _, name := range actionNames() {
		fmt.Fprintf(out, "  %s\n", name)
	}
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  exit")
}

func shellCompleter() *readline.PrefixCompleter {
	groups := map[string][]readline.PrefixCompleterInterface{}
	var order []string
	for _, name := range actionNames() {
		parts := strings.SplitN(name, " ", 2)
		if _, ok := groups[parts[0]]; !ok {
			order = append(order, parts[0])
		}
		groups[parts[0]] = append(groups[parts[0]], readline.PcItem(parts[1]))
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(order)+2)
	for _, group := range order {
		items = append(items, readline.PcItem(group, groups[group]...))
	}
	items = append(items, readline.PcItem("help"), readline.PcItem("exit"))
	return readline.NewPrefixCompleter(items...)
}

// watchStores prints a line for every notification of every store
func watchStores(a *app.App, out io.Writer) (unsubscribe func()) {
	unsubs := []func(){
		a.Onboarding.Subscribe(func(s, prev onboarding.State) {
			if s.CurrentStep != prev.CurrentStep {
				fmt.Fprintf(out, "• onboarding: %s → %s\n", prev.CurrentStep, s.CurrentStep)
			}
		}),
		a.Routine.Subscribe(func(s, prev routine.State) {
			if !s.SelectedDate.Equal(prev.SelectedDate) {
				fmt.Fprintf(out, "• routine: date %s\n", s.SelectedDate.Format("2006-01-02"))
			}
			if s.RoutineFilter != prev.RoutineFilter {
				fmt.Fprintf(out, "• routine: filter %s → %s\n", prev.RoutineFilter, s.RoutineFilter)
			}
		}),
		a.Auth.Subscribe(func(s, prev auth.State) {
			if s.IsAuthenticated != prev.IsAuthenticated {
				fmt.Fprintf(out, "• auth: signed in %t\n", s.IsAuthenticated)
			}
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
