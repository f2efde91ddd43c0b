package types

import "fmt"

// Status is the single loading/error slot shared by every store action.
type Status int

// Store statuses. StatusIdle is both the initial and the resting state.
const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// MarshalText renders the status by name in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = StatusIdle
	case "loading":
		*s = StatusLoading
	case "error":
		*s = StatusError
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// State is the complete observable state of an entity store. Values handed
// out by the store are copies; mutating them does not affect the store.
type State struct {
	Collection   []Contact      `json:"collection"`
	Filter       FilterCriteria `json:"filter"`
	Detail       *Contact       `json:"detail,omitempty"`
	Status       Status         `json:"status"`
	ErrorMessage string         `json:"errorMessage,omitempty"`

	// Revision increases by one on every transition.
	Revision uint64 `json:"revision"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Collection = make([]Contact, len(s.Collection))
	copy(out.Collection, s.Collection)
	if s.Detail != nil {
		d := *s.Detail
		out.Detail = &d
	}
	return out
}
