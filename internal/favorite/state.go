package favorite

// State is where a tracked item is in its favorite round trip.
type State int

const (
	Idle State = iota
	Pending
	Confirmed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

var transitions = map[State][]State{
	Idle:      {Pending},
	Pending:   {Confirmed, Failed},
	Confirmed: {Pending},
	Failed:    {Pending},
}

// CanTransition reports whether from -> to is an allowed step.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
