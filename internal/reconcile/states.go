package reconcile

import "strings"

// State represents where an add attempt sits in its lifecycle.
type State string

const (
	StateCollectingInput      State = "collecting_input"
	StateIdentifierResolved   State = "identifier_resolved"
	StateManualIdentifier     State = "manual_identifier"
	StateMetadataFetched      State = "metadata_fetched"
	StateDuplicateChecked     State = "duplicate_checked"
	StateAwaitingUserDecision State = "awaiting_user_decision"
	StateCommitted            State = "committed"
	StateCancelled            State = "cancelled"
)

var allStates = []State{
	StateCollectingInput,
	StateIdentifierResolved,
	StateManualIdentifier,
	StateMetadataFetched,
	StateDuplicateChecked,
	StateAwaitingUserDecision,
	StateCommitted,
	StateCancelled,
}

var stateSet = func() map[State]struct{} {
	set := make(map[State]struct{}, len(allStates))
	for _, state := range allStates {
		set[state] = struct{}{}
	}
	return set
}()

// AllStates returns every attempt state in flow order.
func AllStates() []State {
	states := make([]State, len(allStates))
	copy(states, allStates)
	return states
}

// ParseState converts raw text into a State.
func ParseState(value string) (State, bool) {
	normalized := State(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stateSet[normalized]
	return normalized, ok
}

// Terminal reports whether the attempt has finished, successfully or not.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateCancelled
}

// Display returns a human-friendly state name for CLI and API output.
func (s State) Display() string {
	switch s {
	case StateCollectingInput:
		return "Collecting Input"
	case StateIdentifierResolved:
		return "Identifier Resolved"
	case StateManualIdentifier:
		return "Manual Identifier"
	case StateMetadataFetched:
		return "Metadata Fetched"
	case StateDuplicateChecked:
		return "Duplicate Checked"
	case StateAwaitingUserDecision:
		return "Awaiting User Decision"
	case StateCommitted:
		return "Committed"
	case StateCancelled:
		return "Cancelled"
	default:
		return strings.TrimSpace(string(s))
	}
}

// Decision resolves an attempt that matched an existing record.
type Decision string

const (
	DecisionCancel         Decision = "cancel"
	DecisionForceAdd       Decision = "force_add"
	DecisionUpdateExisting Decision = "update_existing"
)

// ParseDecision accepts the decision spellings produced by the CLI and HTTP
// layers.
func ParseDecision(value string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "cancel":
		return DecisionCancel, true
	case "force_add", "force-add", "forceadd":
		return DecisionForceAdd, true
	case "update_existing", "update-existing", "updateexisting", "update":
		return DecisionUpdateExisting, true
	default:
		return "", false
	}
}

// Display returns a human-friendly decision name.
func (d Decision) Display() string {
	switch d {
	case DecisionCancel:
		return "Cancel"
	case DecisionForceAdd:
		return "Force Add"
	case DecisionUpdateExisting:
		return "Update Existing"
	default:
		return strings.TrimSpace(string(d))
	}
}
