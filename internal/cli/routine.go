package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/routinely/cli/internal/app"
	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/routine"
	"github.com/spf13/cobra"
)

var routineCmd = &cobra.Command{
	Use:   "routine",
	Short: "Inspect and change the routine view",
}

func init() {
	rootCmd.AddCommand(routineCmd)

	addAction(routineCmd, "show", "Show the routine view state", cobra.NoArgs, runRoutineShow)
	addAction(routineCmd, "date <YYYY-MM-DD|today>", "Select a day", cobra.ExactArgs(1), runRoutineDate)
	addAction(routineCmd, "filter <all|personal|group>", "Filter the routine list", cobra.ExactArgs(1), runRoutineFilter)
	addAction(routineCmd, "select <routine-id>", "Focus a routine", cobra.ExactArgs(1), runRoutineSelect)
	addAction(routineCmd, "clear", "Clear the focused routine and leave edit mode", cobra.NoArgs, runRoutineClear)
	addAction(routineCmd, "edit [true|false]", "Set or toggle edit mode", cobra.MaximumNArgs(1), runRoutineEdit)
	addAction(routineCmd, "section <name>", "Expand or collapse a list section", cobra.ExactArgs(1), runRoutineSection)
	addAction(routineCmd, "reset", "Return to today with no filter", cobra.NoArgs, runRoutineReset)
}

func runRoutineShow(_ context.Context, a *app.App, out io.Writer, _ []string) error {
	printRoutine(out, a.Routine.GetState())
	return nil
}

func runRoutineDate(_ context.Context, a *app.App, out io.Writer, args []string) error {
	date, err := parseDay(args[0], time.Now())
	if err != nil {
		return err
	}
	a.Routine.SetSelectedDate(date)
	fmt.Fprintf(out, "Selected %s\n", date.Format(time.DateOnly))
	return nil
}

func runRoutineFilter(_ context.Context, a *app.App, out io.Writer, args []string) error {
	filter, err := routine.ParseFilter(strings.ToLower(args[0]))
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("%v. Must be one of: all, personal, group", err))
	}
	if err := a.Routine.SetRoutineFilter(filter); err != nil {
		return errors.NewValidationError(err.Error())
	}
	fmt.Fprintf(out, "Filter: %s\n", filter)
	return nil
}

func runRoutineSelect(_ context.Context, a *app.App, out io.Writer, args []string) error {
	id := strings.TrimSpace(args[0])
	if id == "" {
		return errors.NewValidationError("routine id is required")
	}
	a.Routine.SetActiveRoutine(id)
	fmt.Fprintf(out, "Active routine: %s\n", id)
	return nil
}

func runRoutineClear(_ context.Context, a *app.App, out io.Writer, _ []string) error {
	a.Routine.ClearActiveRoutine()
	fmt.Fprintln(out, "Active routine cleared")
	return nil
}

func runRoutineEdit(_ context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) == 0 {
		a.Routine.ToggleEditMode()
	} else {
		on, err := strconv.ParseBool(args[0])
		if err != nil {
			return errors.NewValidationError(fmt.Sprintf("invalid edit mode: %s. Must be true or false", args[0]))
		}
		a.Routine.SetEditMode(on)
	}
	fmt.Fprintf(out, "Edit mode: %t\n", a.Routine.GetState().IsEditMode)
	return nil
}

func runRoutineSection(_ context.Context, a *app.App, out io.Writer, args []string) error {
	a.Routine.ToggleSection(args[0])
	state := "collapsed"
	if a.Routine.GetState().ExpandedSections[args[0]] {
		state = "expanded"
	}
	fmt.Fprintf(out, "Section %s %s\n", args[0], state)
	return nil
}

func runRoutineReset(_ context.Context, a *app.App, out io.Writer, _ []string) error {
	a.Routine.Reset()
	printRoutine(out, a.Routine.GetState())
	return nil
}

// parseDay accepts YYYY-MM-DD, today, tomorrow and yesterday
func parseDay(value string, now time.Time) (time.Time, error) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(value), now.Location())
	if err != nil {
		return time.Time{}, errors.NewValidationError(fmt.Sprintf("invalid date: %s. Expected YYYY-MM-DD", value))
	}
	return date, nil
}

func printRoutine(out io.Writer, s routine.State) {
	active := "-"
	if s.ActiveRoutineID != nil {
		active = *s.ActiveRoutineID
	}
	fmt.Fprintf(out, "Date:     %s\n", s.SelectedDate.Format(time.DateOnly))
	fmt.Fprintf(out, "Filter:   %s\n", s.RoutineFilter)
	fmt.Fprintf(out, "Active:   %s\n", active)
	fmt.Fprintf(out, "Editing:  %t\n", s.IsEditMode)

	var expanded []string
	for name, open := range s.ExpandedSections {
		if open {
			expanded = append(expanded, name)
		}
	}
	if len(expanded) > 0 {
		sort.Strings(expanded)
		fmt.Fprintf(out, "Expanded: %s\n", strings.Join(expanded, ", "))
	}
}
