package routine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Date is a selected day. It is written as RFC 3339 and read from either an
// ISO-8601 string or epoch milliseconds.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(time.RFC3339))
}

func (d *Date) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
			if t, err := time.Parse(layout, s); err == nil {
				d.Time = t
				return nil
			}
		}
		return fmt.Errorf("invalid selected date %q", s)
	}

	ms, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid selected date %s", raw)
	}
	d.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}

// Persisted is the allow-listed part of State written to storage
type Persisted struct {
	SelectedDate    Date    `json:"selectedDate"`
	RoutineFilter   Filter  `json:"routineFilter"`
	ActiveRoutineID *string `json:"activeRoutineId"`
	IsEditMode      bool    `json:"isEditMode"`
}

// Project extracts the persisted fields of s
func Project(s State) Persisted {
	var active *string
	if s.ActiveRoutineID != nil {
		id := *s.ActiveRoutineID
		active = &id
	}
	return Persisted{
		SelectedDate:    Date{s.SelectedDate},
		RoutineFilter:   s.RoutineFilter,
		ActiveRoutineID: active,
		IsEditMode:      s.IsEditMode,
	}
}

// Merge folds a hydrated entry into current. Unknown filters and missing
// dates keep the current values.
func Merge(current State, p Persisted) State {
	if !p.SelectedDate.IsZero() {
		current.SelectedDate = p.SelectedDate.Time
	}
	if _, err := ParseFilter(string(p.RoutineFilter)); err == nil {
		current.RoutineFilter = p.RoutineFilter
	}
	current.ActiveRoutineID = p.ActiveRoutineID
	current.IsEditMode = p.IsEditMode
	return current
}
