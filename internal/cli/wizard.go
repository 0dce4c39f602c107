package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/routinely/cli/internal/app"
	apperrors "github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/onboarding"
	"github.com/spf13/cobra"
)

// prompter asks the user questions. The survey implementation is used on a
// terminal; tests script the answers.
type prompter interface {
	Select(message string, options []string, defaultOption string) (string, error)
	Input(message, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	MultiSelect(message string, options, defaults []string) ([]string, error)
}

type surveyPrompter struct{}

var defaultPrompter prompter = surveyPrompter{}

func (surveyPrompter) Select(message string, options []string, defaultOption string) (string, error) {
	defaultExists := false
	for _, opt := range options {
		if opt == defaultOption {
			defaultExists = true
			break
		}
	}
	if !defaultExists && defaultOption != "" {
		return "", fmt.Errorf("default option %q not in option list", defaultOption)
	}

	var selected string
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultOption,
	}
	if err := survey.AskOne(prompt, &selected, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return selected, nil
}

func (surveyPrompter) Input(message, defaultValue string) (string, error) {
	content := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &content); err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (surveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	answer := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}
	return answer, nil
}

func (surveyPrompter) MultiSelect(message string, options, defaults []string) ([]string, error) {
	var selected []string
	prompt := &survey.MultiSelect{
		Message: message,
		Options: options,
		Default: defaults,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return nil, err
	}
	return selected, nil
}

// routineCatalog is offered on the recommendation step
var routineCatalog = []string{
	"morning-stretch",
	"deep-work-block",
	"lecture-review",
	"study-session",
	"lunch-walk",
	"evening-reflection",
	"sleep-wind-down",
}

const (
	navContinue = "Continue"
	navBack     = "Back"
	navQuit     = "Save and quit"
)

var errWalkQuit = errors.New("onboarding paused")

var onboardingWalkCmd = &cobra.Command{
	Use:   "walk",
	Short: "Walk through onboarding interactively",
	Long: `Step through onboarding with prompts, starting at the saved step.
Choose "Back" to return to the previous step or "Save and quit" to stop;
progress is kept either way.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, appOptions{}, func(ctx context.Context, a *app.App) error {
			return walkOnboarding(ctx, defaultPrompter, a.Onboarding, cmd.OutOrStdout())
		})
	},
}

func init() {
	onboardingCmd.AddCommand(onboardingWalkCmd)
}

// walkOnboarding runs the wizard until onboarding completes or the user quits
func walkOnboarding(ctx context.Context, p prompter, m *onboarding.Machine, out io.Writer) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		printStep(out, m)
		err := walkStep(p, m, out)
		switch {
		case errors.Is(err, errWalkQuit), errors.Is(err, terminal.InterruptErr):
			fmt.Fprintln(out, "Progress saved. Run 'routinely onboarding walk' to continue.")
			return nil
		case err != nil:
			return apperrors.NewGenericError("onboarding prompt failed", err)
		}

		if m.GetState().Data.IsCompleted {
			fmt.Fprintln(out, "✅ Onboarding complete")
			return nil
		}
	}
}

// walkStep handles the current step and moves the machine
func walkStep(p prompter, m *onboarding.Machine, out io.Writer) error {
	s := m.GetState()

	switch s.CurrentStep {
	case onboarding.StepWelcome:
		fmt.Fprintln(out, "Welcome to routinely. Let's set up your routines.")
		return navigate(p, m, false)

	case onboarding.StepTimetableUpload:
		current := ""
		if s.Data.TimetableFile != nil {
			current = *s.Data.TimetableFile
		}
		ref, err := p.Input("Path to your timetable (leave empty to skip):", current)
		if err != nil {
			return err
		}
		if ref != "" {
			if _, err := os.Stat(ref); err != nil {
				fmt.Fprintf(out, "Cannot read %s: %v\n", ref, err)
				return nil
			}
			m.SetTimetableFile(ref)
		}
		return navigate(p, m, true)

	case onboarding.StepAIConsent:
		consent, err := p.Confirm("Let routinely suggest routines from your timetable?", s.Data.AIConsent)
		if err != nil {
			return err
		}
		m.SetAIConsent(consent)
		return navigate(p, m, true)

	case onboarding.StepAIRecommendation:
		if !s.Data.AIConsent {
			fmt.Fprintln(out, "Suggestions are off; you can add routines later.")
			return navigate(p, m, true)
		}
		var defaults []string
		for _, id := range s.Data.RecommendedRoutines {
			for _, known := range routineCatalog {
				if id == known {
					defaults = append(defaults, id)
				}
			}
		}
		picked, err := p.MultiSelect("Pick the routines to start with:", routineCatalog, defaults)
		if err != nil {
			return err
		}
		m.SetRecommendedRoutines(picked)
		return navigate(p, m, true)

	case onboarding.StepLoading:
		m.SetSubmitting(true)
		fmt.Fprintln(out, "Preparing your routines...")
		m.SetSubmitting(false)
		m.Next()
		return nil

	default:
		m.CompleteOnboarding()
		return nil
	}
}

func navigate(p prompter, m *onboarding.Machine, canGoBack bool) error {
	options := []string{navContinue}
	if canGoBack {
		options = append(options, navBack)
	}
	options = append(options, navQuit)

	choice, err := p.Select("What next?", options, navContinue)
	if err != nil {
		return err
	}
	switch choice {
	case navBack:
		m.Prev()
	case navQuit:
		return errWalkQuit
	default:
		m.Next()
	}
	return nil
}
