package reveal

import "fmt"

// State is the reveal lifecycle of one session.
type State int

const (
	StateCreated State = iota
	StateBuilding
	StateRevealing
	StateFullyRevealed
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateBuilding:
		return "building"
	case StateRevealing:
		return "revealing"
	case StateFullyRevealed:
		return "fully_revealed"
	case StateDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
