package cli

import (
	"strings"
	"testing"

	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/interfaces"
)

func TestOnboardingCommands_PersistAcrossRuns(t *testing.T) {
	createTestProject(t, interfaces.InitOptions{})

	out, err := runAction(t, "onboarding next")
	if err != nil {
		t.Fatalf("onboarding next failed: %v", err)
	}
	if !strings.Contains(out, "Step 2/6: timetable-upload") {
		t.Errorf("Unexpected output: %s", out)
	}

	if _, err := runAction(t, "onboarding upload", "timetable.pdf"); err != nil {
		t.Fatalf("onboarding upload failed: %v", err)
	}
	if _, err := runAction(t, "onboarding consent", "true"); err != nil {
		t.Fatalf("onboarding consent failed: %v", err)
	}

	out, err = runAction(t, "onboarding status")
	if err != nil {
		t.Fatalf("onboarding status failed: %v", err)
	}
	for _, want := range []string{
		"Step 2/6: timetable-upload",
		"timetable:   timetable.pdf",
		"ai consent:  true",
		"completed:   false",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in status output:\n%s", want, out)
		}
	}
}

func TestOnboardingCommands_Bounds(t *testing.T) {
	createTestProject(t, interfaces.InitOptions{})

	out, err := runAction(t, "onboarding prev")
	if err != nil {
		t.Fatalf("onboarding prev failed: %v", err)
	}
	if !strings.Contains(out, "Step 1/6: welcome") {
		t.Errorf("prev on the first step should stay put, got: %s", out)
	}

	if _, err := runAction(t, "onboarding step", "complete"); err != nil {
		t.Fatalf("onboarding step failed: %v", err)
	}
	out, err = runAction(t, "onboarding next")
	if err != nil {
		t.Fatalf("onboarding next failed: %v", err)
	}
	if !strings.Contains(out, "Step 6/6: complete") {
		t.Errorf("next on the last step should stay put, got: %s", out)
	}
}

func TestOnboardingCommands_CompleteAndReset(t *testing.T) {
	createTestProject(t, interfaces.InitOptions{})

	if _, err := runAction(t, "onboarding recommend", "study-session", "lunch-walk"); err != nil {
		t.Fatalf("onboarding recommend failed: %v", err)
	}
	if _, err := runAction(t, "onboarding complete"); err != nil {
		t.Fatalf("onboarding complete failed: %v", err)
	}

	out, _ := runAction(t, "onboarding status")
	if !strings.Contains(out, "complete") || !strings.Contains(out, "completed:   true") {
		t.Errorf("Expected completed onboarding, got:\n%s", out)
	}
	if !strings.Contains(out, "recommended: study-session, lunch-walk") {
		t.Errorf("Expected recommendations kept, got:\n%s", out)
	}

	if _, err := runAction(t, "onboarding reset"); err != nil {
		t.Fatalf("onboarding reset failed: %v", err)
	}
	out, _ = runAction(t, "onboarding status")
	if !strings.Contains(out, "Step 1/6: welcome") || !strings.Contains(out, "recommended: -") {
		t.Errorf("Expected initial state after reset, got:\n%s", out)
	}
}

func TestOnboardingCommands_InvalidInput(t *testing.T) {
	createTestProject(t, interfaces.InitOptions{})

	tests := []struct {
		action string
		args   []string
	}{
		{action: "onboarding step", args: []string{"signup"}},
		{action: "onboarding consent", args: []string{"maybe"}},
		{action: "onboarding upload", args: []string{"  "}},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			_, err := runAction(t, tt.action, tt.args...)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if code := errorCode(t, err); code != errors.CodeValidation {
				t.Errorf("Expected error code %d, got %d", errors.CodeValidation, code)
			}
		})
	}
}

func TestOnboardingCommands_WebPlatformForgets(t *testing.T) {
	createTestProject(t, interfaces.InitOptions{Platform: interfaces.PlatformWeb})

	if _, err := runAction(t, "onboarding next"); err != nil {
		t.Fatalf("onboarding next failed: %v", err)
	}
	out, _ := runAction(t, "onboarding status")
	if !strings.Contains(out, "Step 1/6: welcome") {
		t.Errorf("web state should not outlive the process, got:\n%s", out)
	}
}
