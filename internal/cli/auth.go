package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/routinely/cli/internal/app"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in and out",
	Long: `Sign in and out of the current session.

The signed-in user is never saved: every new process starts signed out.
Use 'routinely shell' to keep a session across commands.`,
}

func init() {
	rootCmd.AddCommand(authCmd)

	addAction(authCmd, "status", "Show who is signed in", cobra.NoArgs, runAuthStatus)
	addAction(authCmd, "login <user-id>", "Sign in", cobra.ExactArgs(1), runAuthLogin)
	addAction(authCmd, "logout", "Sign out", cobra.NoArgs, runAuthLogout)
}

func runAuthStatus(_ context.Context, a *app.App, out io.Writer, _ []string) error {
	s := a.Auth.GetState()
	if !s.IsAuthenticated {
		fmt.Fprintln(out, "Not signed in")
		return nil
	}
	fmt.Fprintf(out, "Signed in as %s\n", s.UserID)
	return nil
}

func runAuthLogin(_ context.Context, a *app.App, out io.Writer, args []string) error {
	if err := a.Auth.Login(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "Signed in as %s\n", a.Auth.GetState().UserID)
	return nil
}

func runAuthLogout(_ context.Context, a *app.App, out io.Writer, _ []string) error {
	a.Auth.Logout()
	fmt.Fprintln(out, "Signed out")
	return nil
}
