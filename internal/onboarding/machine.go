// Package onboarding implements the onboarding flow as a fixed, ordered
// sequence of steps on top of a reactive store.
package onboarding

import (
	"errors"
	"fmt"

	"github.com/routinely/cli/internal/store"
)

// StorageName is the persisted entry holding onboarding progress
const StorageName = "onboarding-storage"

// Step is one onboarding screen
type Step string

const (
	StepWelcome          Step = "welcome"
	StepTimetableUpload  Step = "timetable-upload"
	StepAIConsent        Step = "ai-consent"
	StepAIRecommendation Step = "ai-recommendation"
	StepLoading          Step = "loading"
	StepComplete         Step = "complete"
)

var steps = []Step{
	StepWelcome,
	StepTimetableUpload,
	StepAIConsent,
	StepAIRecommendation,
	StepLoading,
	StepComplete,
}

// ErrUnknownStep is returned when a step name is not part of the sequence
var ErrUnknownStep = errors.New("unknown onboarding step")

// Steps returns the ordered step sequence
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// ParseStep resolves a step name
func ParseStep(name string) (Step, error) {
	for _, s := range steps {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStep, name)
}

// Index returns the position of s in the sequence, or -1
func (s Step) Index() int {
	for i, candidate := range steps {
		if candidate == s {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether s is the final step
func (s Step) IsTerminal() bool {
	return s == StepComplete
}

// Data is what the user has provided during onboarding
type Data struct {
	TimetableFile       *string  `json:"timetableFile,omitempty"`
	AIConsent           bool     `json:"aiConsent"`
	RecommendedRoutines []string `json:"recommendedRoutines,omitempty"`
	IsCompleted         bool     `json:"isCompleted"`
}

// State is the onboarding store snapshot
type State struct {
	CurrentStep Step
	Data        Data

	// IsSubmitting is screen-local and never persisted.
	IsSubmitting bool
}

// InitialState is the state of a fresh install
func InitialState() State {
	return State{CurrentStep: StepWelcome}
}

// Machine is the onboarding state machine. Every action is one SetState call.
type Machine struct {
	s *store.Store[State]
}

// NewMachine creates a machine at the welcome step
func NewMachine() *Machine {
	return &Machine{s: store.New(InitialState())}
}

// Store exposes the underlying store for persistence wiring
func (m *Machine) Store() *store.Store[State] {
	return m.s
}

// GetState returns the current snapshot
func (m *Machine) GetState() State {
	return m.s.GetState()
}

// Subscribe registers a listener for every state change
func (m *Machine) Subscribe(listener store.Listener[State]) (unsubscribe func()) {
	return m.s.Subscribe(listener)
}

// SetCurrentStep jumps to step. Unknown steps are rejected and leave the
// state untouched.
func (m *Machine) SetCurrentStep(step Step) error {
	if step.Index() < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
	m.s.SetState(func(s *State) { s.CurrentStep = step })
	return nil
}

// Next advances one step, staying on the terminal step
func (m *Machine) Next() {
	m.s.SetState(func(s *State) {
		i := s.CurrentStep.Index() + 1
		if i > len(steps)-1 {
			i = len(steps) - 1
		}
		s.CurrentStep = steps[i]
	})
}

// Prev retreats one step, staying on the first step
func (m *Machine) Prev() {
	m.s.SetState(func(s *State) {
		i := s.CurrentStep.Index() - 1
		if i < 0 {
			i = 0
		}
		s.CurrentStep = steps[i]
	})
}

// SetTimetableFile records the uploaded timetable reference
func (m *Machine) SetTimetableFile(ref string) {
	m.s.SetState(func(s *State) {
		s.Data.TimetableFile = &ref
	})
}

// SetAIConsent records whether the user agreed to AI recommendations
func (m *Machine) SetAIConsent(consent bool) {
	m.s.SetState(func(s *State) { s.Data.AIConsent = consent })
}

// SetRecommendedRoutines replaces the recommended routine list
func (m *Machine) SetRecommendedRoutines(routines []string) {
	list := append([]string(nil), routines...)
	m.s.SetState(func(s *State) { s.Data.RecommendedRoutines = list })
}

// SetSubmitting toggles the transient submitting flag
func (m *Machine) SetSubmitting(submitting bool) {
	m.s.SetState(func(s *State) { s.IsSubmitting = submitting })
}

// CompleteOnboarding finishes onboarding from whatever step is current
func (m *Machine) CompleteOnboarding() {
	m.s.SetState(func(s *State) {
		s.Data.IsCompleted = true
		s.CurrentStep = StepComplete
	})
}

// ResetOnboarding returns to the welcome step and drops everything collected
func (m *Machine) ResetOnboarding() {
	m.s.SetState(func(s *State) {
		s.CurrentStep = StepWelcome
		s.Data = Data{AIConsent: false, IsCompleted: false}
	})
}

// Progress returns the zero-based index of the current step and the step count
func (m *Machine) Progress() (index, total int) {
	return m.GetState().CurrentStep.Index(), len(steps)
}
