package routine

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 14, 15, 30, 0, 0, time.UTC)

func newTestStore() *Store {
	return NewStore(func() time.Time { return fixedNow })
}

func TestInitialState(t *testing.T) {
	s := newTestStore().GetState()

	assert.Equal(t, time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC), s.SelectedDate)
	assert.Equal(t, FilterAll, s.RoutineFilter)
	assert.Nil(t, s.ActiveRoutineID)
	assert.False(t, s.IsEditMode)
}

func TestActions(t *testing.T) {
	t.Run("filter accepts known values only", func(t *testing.T) {
		r := newTestStore()

		require.NoError(t, r.SetRoutineFilter(FilterGroup))
		assert.Equal(t, FilterGroup, r.GetState().RoutineFilter)

		err := r.SetRoutineFilter("weekly")
		assert.True(t, errors.Is(err, ErrUnknownFilter))
		assert.Equal(t, FilterGroup, r.GetState().RoutineFilter)
	})

	t.Run("active routine and edit mode", func(t *testing.T) {
		r := newTestStore()

		r.SetActiveRoutine("routine-42")
		r.ToggleEditMode()
		s := r.GetState()
		require.NotNil(t, s.ActiveRoutineID)
		assert.Equal(t, "routine-42", *s.ActiveRoutineID)
		assert.True(t, s.IsEditMode)

		r.ClearActiveRoutine()
		s = r.GetState()
		assert.Nil(t, s.ActiveRoutineID)
		assert.False(t, s.IsEditMode)

		r.SetEditMode(true)
		assert.True(t, r.GetState().IsEditMode)
	})

	t.Run("toggle section does not mutate previous snapshot", func(t *testing.T) {
		r := newTestStore()
		r.ToggleSection("morning")
		before := r.GetState()

		r.ToggleSection("morning")

		assert.True(t, before.ExpandedSections["morning"])
		assert.False(t, r.GetState().ExpandedSections["morning"])
	})

	t.Run("reset restores initial state", func(t *testing.T) {
		r := newTestStore()
		r.SetSelectedDate(fixedNow.AddDate(0, 0, 3))
		r.SetActiveRoutine("x")
		r.SetRoutineFilter(FilterPersonal)

		r.Reset()

		assert.Equal(t, InitialState(fixedNow), r.GetState())
	})

	t.Run("each action notifies once", func(t *testing.T) {
		r := newTestStore()
		count := 0
		r.Subscribe(func(State, State) { count++ })

		r.SetSelectedDate(fixedNow)
		r.SetActiveRoutine("a")
		r.ToggleEditMode()

		assert.Equal(t, 3, count)
	})
}

func TestDateJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", `"2026-03-14T00:00:00Z"`, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"rfc3339 with millis", `"2026-03-14T09:15:00.250Z"`, time.Date(2026, 3, 14, 9, 15, 0, 250e6, time.UTC)},
		{"date only", `"2026-03-14"`, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"epoch millis", `1773446400000`, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &d))
			assert.True(t, tt.want.Equal(d.Time), "want %v got %v", tt.want, d.Time)
		})
	}

	t.Run("rejects garbage", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
		assert.Error(t, json.Unmarshal([]byte(`true`), &d))
	})

	t.Run("null leaves zero value", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`null`), &d))
		assert.True(t, d.IsZero())
	})
}

func TestProjectAndMerge(t *testing.T) {
	id := "routine-7"
	s := State{
		SelectedDate:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		RoutineFilter:    FilterPersonal,
		ActiveRoutineID:  &id,
		IsEditMode:       true,
		ExpandedSections: map[string]bool{"evening": true},
	}

	raw, err := json.Marshal(Project(s))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"selectedDate": "2026-03-14T00:00:00Z",
		"routineFilter": "personal",
		"activeRoutineId": "routine-7",
		"isEditMode": true
	}`, string(raw))

	var p Persisted
	require.NoError(t, json.Unmarshal(raw, &p))
	merged := Merge(InitialState(fixedNow), p)
	assert.True(t, s.SelectedDate.Equal(merged.SelectedDate))
	assert.Equal(t, FilterPersonal, merged.RoutineFilter)
	assert.Equal(t, "routine-7", *merged.ActiveRoutineID)
	assert.True(t, merged.IsEditMode)
	assert.Nil(t, merged.ExpandedSections)

	raw, err = json.Marshal(Project(InitialState(fixedNow)))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"activeRoutineId":null`)

	kept := Merge(InitialState(fixedNow), Persisted{RoutineFilter: "weekly"})
	assert.Equal(t, FilterAll, kept.RoutineFilter)
	assert.Equal(t, InitialState(fixedNow).SelectedDate, kept.SelectedDate)
}
