package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/routinely/cli/internal/app"
	"github.com/routinely/cli/internal/interfaces"
	"github.com/routinely/cli/internal/project"
	"github.com/routinely/cli/internal/push"
)

func newShellApp(t *testing.T) *app.App {
	t.Helper()

	cfg := project.DefaultConfig()
	cfg.Platform = interfaces.PlatformWeb
	a, err := app.New(context.Background(), app.Options{
		Config:      cfg,
		Root:        t.TempDir(),
		Permissions: push.StaticPermissions(interfaces.PermissionDenied),
	})
	if err != nil {
		t.Fatalf("app.New failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestExecLine(t *testing.T) {
	a := newShellApp(t)
	ctx := context.Background()

	tests := []struct {
		line     string
		wantQuit bool
		want     string
	}{
		{line: "", want: ""},
		{line: "help", want: "routine filter"},
		{line: "onboarding next", want: "Step 2/6: timetable-upload"},
		{line: "ROUTINE Filter group", want: "Filter: group"},
		{line: "routine filter shared", want: "Error: unknown routine filter"},
		{line: "auth login ada", want: "Signed in as ada"},
		{line: "auth status", want: "Signed in as ada"},
		{line: "push register", want: "No push token"},
		{line: "onboarding", want: "Unknown command: onboarding"},
		{line: "weather today", want: "Unknown command"},
		{line: "quit", wantQuit: true},
		{line: "exit", wantQuit: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			var out bytes.Buffer
			quit := execLine(ctx, a, &out, tt.line)
			if quit != tt.wantQuit {
				t.Errorf("Expected quit=%t, got %t", tt.wantQuit, quit)
			}
			if tt.want == "" {
				if out.Len() != 0 && !tt.wantQuit {
					t.Errorf("Expected no output, got %q", out.String())
				}
				return
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("Expected %q in %q", tt.want, out.String())
			}
		})
	}
}

func TestWatchStores(t *testing.T) {
	a := newShellApp(t)
	var out bytes.Buffer

	unsubscribe := watchStores(a, &out)
	a.Onboarding.Next()
	a.Onboarding.SetAIConsent(true)
	if err := a.Auth.Login("ada"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	unsubscribe()
	a.Onboarding.Next()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 notifications, got %d: %q", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "welcome → timetable-upload") {
		t.Errorf("Unexpected onboarding line: %s", lines[0])
	}
	if !strings.Contains(lines[1], "signed in true") {
		t.Errorf("Unexpected auth line: %s", lines[1])
	}
}

func TestShellCompleter(t *testing.T) {
	c := shellCompleter()

	var groups []string
	for _, child := range c.GetChildren() {
		groups = append(groups, strings.TrimSpace(string(child.GetName())))
	}
	for _, want := range []string{"auth", "onboarding", "push", "routine", "help", "exit"} {
		found := false
		for _, g := range groups {
			if g == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected completion for %q in %v", want, groups)
		}
	}
}
