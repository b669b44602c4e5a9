package compmanager

// transitions enumerates the FSM edges from spec section 4.4's diagram.
// Disabled is entered explicitly and, once entered, blocks every other
// transition until an explicit re-enable (handled separately in manager.go,
// since re-enable is not itself an edge originating from Disabled).
var transitions = map[State]map[State]bool{
	StateCreated:      {StateInitialized: true, StateError: true, StateDisabled: true},
	StateInitialized:  {StateRunning: true, StateError: true, StateDisabled: true},
	StateRunning:      {StatePaused: true, StateStopped: true, StateError: true, StateDisabled: true},
	StatePaused:       {StateRunning: true, StateStopped: true, StateError: true, StateDisabled: true},
	StateStopped:      {StateRunning: true, StateError: true, StateDisabled: true},
	StateError:        {StateDisabled: true},
	StateDisabled:     {},
	StateUnloading:    {},
}

func canTransition(from, to State) bool {
	if from == StateDisabled {
		return false
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}
