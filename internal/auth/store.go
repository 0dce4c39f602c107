// Package auth holds the in-memory authentication flag. It is never
// persisted; a fresh process always starts signed out.
package auth

import (
	"strings"

	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/store"
)

// State is the authentication snapshot
type State struct {
	IsAuthenticated bool
	UserID          string
}

// Store is the authentication store
type Store struct {
	s *store.Store[State]
}

func NewStore() *Store {
	return &Store{s: store.New(State{})}
}

func (a *Store) GetState() State {
	return a.s.GetState()
}

func (a *Store) Subscribe(listener store.Listener[State]) (unsubscribe func()) {
	return a.s.Subscribe(listener)
}

// Login marks userID as signed in
func (a *Store) Login(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.NewValidationError("user id is required")
	}
	a.s.SetState(func(s *State) {
		s.IsAuthenticated = true
		s.UserID = userID
	})
	return nil
}

// Logout clears the session
func (a *Store) Logout() {
	a.s.SetState(func(s *State) { *s = State{} })
}
