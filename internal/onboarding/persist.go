package onboarding

// Persisted is the allow-listed part of State written to storage
type Persisted struct {
	CurrentStep    Step `json:"currentStep"`
	OnboardingData Data `json:"onboardingData"`
}

// Project extracts the persisted fields of s
func Project(s State) Persisted {
	data := s.Data
	if data.RecommendedRoutines != nil {
		data.RecommendedRoutines = append([]string(nil), data.RecommendedRoutines...)
	}
	return Persisted{CurrentStep: s.CurrentStep, OnboardingData: data}
}

// Merge folds a hydrated entry into current. An unknown step from storage
// keeps the current step.
func Merge(current State, p Persisted) State {
	if p.CurrentStep.Index() >= 0 {
		current.CurrentStep = p.CurrentStep
	}
	current.Data = p.OnboardingData
	return current
}
