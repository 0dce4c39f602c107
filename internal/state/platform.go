// Package state holds the durable storage backends used to persist store
// snapshots and the platform check that picks one of them at startup.
package state

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/interfaces"
)

// ErrNotFound is returned by backends when a key has never been written
var ErrNotFound = stderrors.New("storage entry not found")

// Capabilities describes what the hosting runtime offers. It is resolved once
// at startup and passed to every component that branches on platform.
type Capabilities struct {
	Platform interfaces.Platform
}

// ResolveCapabilities parses a configured platform name; empty means native
func ResolveCapabilities(platform string) (Capabilities, error) {
	switch interfaces.Platform(strings.ToLower(strings.TrimSpace(platform))) {
	case "", interfaces.PlatformNative:
		return Capabilities{Platform: interfaces.PlatformNative}, nil
	case interfaces.PlatformWeb:
		return Capabilities{Platform: interfaces.PlatformWeb}, nil
	default:
		return Capabilities{}, errors.NewValidationError(
			fmt.Sprintf("invalid platform: %s. Must be one of: native, web", platform),
		)
	}
}

// Web reports whether the runtime is a web context
func (c Capabilities) Web() bool {
	return c.Platform == interfaces.PlatformWeb
}

// DurableStorage reports whether the runtime has a device-local database
func (c Capabilities) DurableStorage() bool {
	return !c.Web()
}

// Opener opens the durable backend for native platforms
type Opener func(ctx context.Context) (interfaces.StorageBackend, error)

// SelectBackend picks the storage strategy for caps. Web contexts get a
// session-scoped memory backend and never touch the native opener.
func SelectBackend(ctx context.Context, caps Capabilities, open Opener) (interfaces.StorageBackend, error) {
	if !caps.DurableStorage() {
		return NewMemoryBackend(), nil
	}
	if open == nil {
		return nil, errors.NewStorageError("no durable storage opener configured", nil)
	}
	return open(ctx)
}

// SQLOpener returns an Opener for an SQLite database file
func SQLOpener(driver interfaces.StorageDriver, path string) Opener {
	return func(ctx context.Context) (interfaces.StorageBackend, error) {
		b, err := OpenSQL(ctx, driver, path)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}
