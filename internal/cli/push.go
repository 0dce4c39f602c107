package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/routinely/cli/internal/app"
	"github.com/spf13/cobra"
)

var assumeYes bool

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Manage push notification registration",
}

var pushRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Request notification permission and fetch a push token",
	Long: `Ask for notification permission (once; the answer is remembered) and
exchange the configured push.project_id for a push token at push.endpoint.

A device id is generated alongside the token. It is never used in place of
a push token.`,
	Args: cobra.NoArgs,
	RunE: runPushRegister,
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.AddCommand(pushRegisterCmd)
	pushRegisterCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "allow notifications without prompting")

	actions["push register"] = runPushRegisterAction
}

func runPushRegister(cmd *cobra.Command, args []string) error {
	opts := appOptions{}
	if assumeYes {
		opts.confirm = func(string) (bool, error) { return true, nil }
	}

	return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
		out := cmd.OutOrStdout()
		result, err := a.Push.Acquire(ctx)
		if err != nil {
			a.Classifier.HandleAndReport(ctx, err)
			return err
		}
		if !result.Granted {
			fmt.Fprintln(out, "Notifications are not allowed; no push token requested")
			return nil
		}
		fmt.Fprintf(out, "Push token: %s\n", result.Token())
		if result.Secondary != nil {
			fmt.Fprintf(out, "Device id:  %s\n", result.Secondary.Value)
		}
		return nil
	})
}

// runPushRegisterAction is the shell variant. Failures are recorded and
// swallowed.
func runPushRegisterAction(ctx context.Context, a *app.App, out io.Writer, _ []string) error {
	token := a.Push.Register(ctx)
	if token == "" {
		fmt.Fprintln(out, "No push token")
		return nil
	}
	fmt.Fprintf(out, "Push token: %s\n", token)
	return nil
}
