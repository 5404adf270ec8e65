package checkout

// State is the position of a checkout invocation in its lifecycle.
type State string

const (
	StateIdle         State = "IDLE"
	StateValidating   State = "VALIDATING"
	StateBalanceCheck State = "BALANCE_CHECK"
	StateSettling     State = "SETTLING"
	StateSucceeded    State = "SUCCEEDED"
	StateFailed       State = "FAILED"
)

var transitions = map[State][]State{
	StateIdle:         {StateValidating},
	StateValidating:   {StateBalanceCheck, StateFailed},
	StateBalanceCheck: {StateSettling, StateFailed},
	StateSettling:     {StateSucceeded, StateFailed},
}

// CanTransitionTo reports whether moving from s to next is legal.
// Terminal states have no outgoing transitions; a new purchase starts
// again from Idle.
func CanTransitionTo(s, next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

func (s State) String() string {
	return string(s)
}
