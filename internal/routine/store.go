// Package routine holds the view state of the routine screens: the selected
// day, the list filter, the routine being edited and whether edit mode is on.
package routine

import (
	"errors"
	"fmt"
	"time"

	"github.com/routinely/cli/internal/store"
)

// StorageName is the persisted entry holding routine view state
const StorageName = "routine-storage"

// Filter narrows the routine list
type Filter string

const (
	FilterAll      Filter = "all"
	FilterPersonal Filter = "personal"
	FilterGroup    Filter = "group"
)

// ErrUnknownFilter is returned for filters other than all, personal and group
var ErrUnknownFilter = errors.New("unknown routine filter")

// ParseFilter resolves a filter name
func ParseFilter(name string) (Filter, error) {
	switch f := Filter(name); f {
	case FilterAll, FilterPersonal, FilterGroup:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
}

// State is the routine view snapshot
type State struct {
	SelectedDate    time.Time
	RoutineFilter   Filter
	ActiveRoutineID *string
	IsEditMode      bool

	// ExpandedSections tracks collapsed list sections and is not persisted.
	ExpandedSections map[string]bool
}

// InitialState selects today with no filter applied
func InitialState(now time.Time) State {
	y, m, d := now.Date()
	return State{
		SelectedDate:  time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		RoutineFilter: FilterAll,
	}
}

// Store is the routine view store
type Store struct {
	s   *store.Store[State]
	now func() time.Time
}

// NewStore creates a store selecting the current day
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{s: store.New(InitialState(now())), now: now}
}

// Store exposes the underlying store for persistence wiring
func (r *Store) Store() *store.Store[State] {
	return r.s
}

func (r *Store) GetState() State {
	return r.s.GetState()
}

func (r *Store) Subscribe(listener store.Listener[State]) (unsubscribe func()) {
	return r.s.Subscribe(listener)
}

// SetSelectedDate selects a day
func (r *Store) SetSelectedDate(date time.Time) {
	r.s.SetState(func(s *State) { s.SelectedDate = date })
}

// SetRoutineFilter changes the list filter
func (r *Store) SetRoutineFilter(filter Filter) error {
	if _, err := ParseFilter(string(filter)); err != nil {
		return err
	}
	r.s.SetState(func(s *State) { s.RoutineFilter = filter })
	return nil
}

// SetActiveRoutine marks id as the routine in focus
func (r *Store) SetActiveRoutine(id string) {
	r.s.SetState(func(s *State) { s.ActiveRoutineID = &id })
}

// ClearActiveRoutine removes the focus and leaves edit mode
func (r *Store) ClearActiveRoutine() {
	r.s.SetState(func(s *State) {
		s.ActiveRoutineID = nil
		s.IsEditMode = false
	})
}

func (r *Store) SetEditMode(on bool) {
	r.s.SetState(func(s *State) { s.IsEditMode = on })
}

func (r *Store) ToggleEditMode() {
	r.s.SetState(func(s *State) { s.IsEditMode = !s.IsEditMode })
}

// ToggleSection flips the expanded flag of a list section
func (r *Store) ToggleSection(name string) {
	r.s.Update(func(s State) State {
		sections := make(map[string]bool, len(s.ExpandedSections)+1)
		for k, v := range s.ExpandedSections {
			sections[k] = v
		}
		sections[name] = !sections[name]
		s.ExpandedSections = sections
		return s
	})
}

// Reset returns to today with default filters
func (r *Store) Reset() {
	initial := InitialState(r.now())
	r.s.Update(func(State) State { return initial })
}
