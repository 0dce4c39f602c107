package push

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/AlecAivazis/survey/v2"
	"github.com/routinely/cli/internal/interfaces"
	"github.com/routinely/cli/internal/state"
)

// PermissionKey is the storage entry holding the user's notification decision
const PermissionKey = "push-permission"

// Confirmer asks the user a yes/no question
type Confirmer func(message string) (bool, error)

// SurveyConfirm asks on the terminal
func SurveyConfirm(message string) (bool, error) {
	allow := true
	prompt := &survey.Confirm{
		Message: message,
		Default: true,
	}
	if err := survey.AskOne(prompt, &allow); err != nil {
		return false, err
	}
	return allow, nil
}

// PromptPermissions asks the user once and remembers the answer in storage.
// Once a decision is stored, Request returns it without asking again.
type PromptPermissions struct {
	backend interfaces.StorageBackend
	ask     Confirmer

	mu sync.Mutex
}

var _ interfaces.PermissionProvider = (*PromptPermissions)(nil)

// NewPromptPermissions creates a provider. A nil ask uses SurveyConfirm.
func NewPromptPermissions(backend interfaces.StorageBackend, ask Confirmer) *PromptPermissions {
	if ask == nil {
		ask = SurveyConfirm
	}
	return &PromptPermissions{backend: backend, ask: ask}
}

func (p *PromptPermissions) Status(ctx context.Context) (interfaces.PermissionStatus, error) {
	raw, err := p.backend.Get(ctx, PermissionKey)
	if stderrors.Is(err, state.ErrNotFound) {
		return interfaces.PermissionUndetermined, nil
	}
	if err != nil {
		return "", err
	}

	switch status := interfaces.PermissionStatus(raw); status {
	case interfaces.PermissionGranted, interfaces.PermissionDenied:
		return status, nil
	default:
		return interfaces.PermissionUndetermined, nil
	}
}

func (p *PromptPermissions) Request(ctx context.Context) (interfaces.PermissionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, err := p.Status(ctx)
	if err != nil {
		return "", err
	}
	if status != interfaces.PermissionUndetermined {
		return status, nil
	}

	allow, err := p.ask("Allow routinely to send routine reminders?")
	if err != nil {
		return "", fmt.Errorf("failed to ask for notification permission: %w", err)
	}

	status = interfaces.PermissionDenied
	if allow {
		status = interfaces.PermissionGranted
	}
	if err := p.backend.Set(ctx, PermissionKey, []byte(status)); err != nil {
		return "", err
	}
	return status, nil
}

// Reset forgets the stored decision
func (p *PromptPermissions) Reset(ctx context.Context) error {
	return p.backend.Delete(ctx, PermissionKey)
}

// StaticPermissions always reports the same status. It backs non-interactive
// runs where nobody can answer a prompt.
type StaticPermissions interfaces.PermissionStatus

func (s StaticPermissions) Status(context.Context) (interfaces.PermissionStatus, error) {
	return interfaces.PermissionStatus(s), nil
}

func (s StaticPermissions) Request(context.Context) (interfaces.PermissionStatus, error) {
	return interfaces.PermissionStatus(s), nil
}
