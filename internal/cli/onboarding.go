package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/routinely/cli/internal/app"
	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/onboarding"
	"github.com/spf13/cobra"
)

var onboardingCmd = &cobra.Command{
	Use:   "onboarding",
	Short: "Inspect and drive the onboarding flow",
	Long: `Move through the onboarding steps:

  welcome -> timetable-upload -> ai-consent -> ai-recommendation -> loading -> complete

Progress is saved after every change.`,
}

func init() {
	rootCmd.AddCommand(onboardingCmd)

	addAction(onboardingCmd, "status", "Show the current onboarding step and data", cobra.NoArgs, runOnboardingStatus)
	addAction(onboardingCmd, "next", "Advance one step", cobra.NoArgs, runOnboardingNext)
	addAction(onboardingCmd, "prev", "Go back one step", cobra.NoArgs, runOnboardingPrev)
	addAction(onboardingCmd, "step <name>", "Jump to a step", cobra.ExactArgs(1), runOnboardingStep)
	addAction(onboardingCmd, "consent <true|false>", "Record AI recommendation consent", cobra.ExactArgs(1), runOnboardingConsent)
	addAction(onboardingCmd, "upload <file>", "Record the uploaded timetable", cobra.ExactArgs(1), runOnboardingUpload)
	addAction(onboardingCmd, "recommend <routine>...", "Set the recommended routines", cobra.MinimumNArgs(1), runOnboardingRecommend)
	addAction(onboardingCmd, "complete", "Finish onboarding from the current step", cobra.NoArgs, runOnboardingComplete)
	addAction(onboardingCmd, "reset", "Start onboarding over", cobra.NoArgs, runOnboardingReset)
}

func runOnboardingStatus(_ context.Context, a *app.App, out io.Writer, _ []string) error {
	printOnboarding(out, a.Onboarding)
	return nil
}

func runOnboardingNext(_ context.Context, a *app.App, out io.Writer, _ []string) error {
	a.Onboarding.Next()
	printStep(out, a.Onboarding)
	return nil
}

func runOnboardingPrev(_ context.Context, a *app.App, out io.Writer, _ []string) error {
	a.Onboarding.Prev()
	printStep(out, a.Onboarding)
	return nil
}

func runOnboardingStep(_ context.Context, a *app.App, out io.Writer, args []string) error {
	step, err := onboarding.ParseStep(args[0])
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("%v. Must be one of: %s", err, stepList()))
	}
	if err := a.Onboarding.SetCurrentStep(step); err != nil {
		return errors.NewValidationError(err.Error())
	}
	printStep(out, a.Onboarding)
	return nil
}

func runOnboardingConsent(_ context.Context, a *app.App, out io.Writer, args []string) error {
	consent, err := strconv.ParseBool(args[0])
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("invalid consent value: %s. Must be true or false", args[0]))
	}
	a.Onboarding.SetAIConsent(consent)
	fmt.Fprintf(out, "AI consent: %t\n", consent)
	return nil
}

func runOnboardingUpload(_ context.Context, a *app.App, out io.Writer, args []string) error {
	ref := strings.TrimSpace(args[0])
	if ref == "" {
		return errors.NewValidationError("timetable file is required")
	}
	a.Onboarding.SetTimetableFile(ref)
	fmt.Fprintf(out, "Timetable: %s\n", ref)
	return nil
}

func runOnboardingRecommend(_ context.Context, a *app.App, out io.Writer, args []string) error {
	a.Onboarding.SetRecommendedRoutines(args)
	fmt.Fprintf(out, "Recommended routines: %s\n", strings.Join(args, ", "))
	return nil
}

func runOnboardingComplete(_ context.Context, a *app.App, out io.Writer, _ []string) error {
	a.Onboarding.CompleteOnboarding()
	fmt.Fprintln(out, "✅ Onboarding complete")
	return nil
}

func runOnboardingReset(_ context.Context, a *app.App, out io.Writer, _ []string) error {
	a.Onboarding.ResetOnboarding()
	printStep(out, a.Onboarding)
	return nil
}

func stepList() string {
	names := make([]string, 0, len(onboarding.Steps()))
	for _, s := range onboarding.Steps() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func printStep(out io.Writer, m *onboarding.Machine) {
	index, total := m.Progress()
	step := color.New(color.FgCyan, color.Bold).Sprint(m.GetState().CurrentStep)
	fmt.Fprintf(out, "Step %d/%d: %s\n", index+1, total, step)
}

func printOnboarding(out io.Writer, m *onboarding.Machine) {
	s := m.GetState()
	printStep(out, m)

	file := "-"
	if s.Data.TimetableFile != nil {
		file = *s.Data.TimetableFile
	}
	routines := "-"
	if len(s.Data.RecommendedRoutines) > 0 {
		routines = strings.Join(s.Data.RecommendedRoutines, ", ")
	}
	fmt.Fprintf(out, "  timetable:   %s\n", file)
	fmt.Fprintf(out, "  ai consent:  %t\n", s.Data.AIConsent)
	fmt.Fprintf(out, "  recommended: %s\n", routines)
	fmt.Fprintf(out, "  completed:   %t\n", s.Data.IsCompleted)
}
