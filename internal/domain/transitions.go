package domain

// statusTransitions is the full transition table. No state is terminal:
// closed tickets may be reopened.
var statusTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusOpen, TicketStatusClosed, TicketStatusBlocked},
	TicketStatusBlocked:    {TicketStatusInProgress, TicketStatusOpen},
	TicketStatusClosed:     {TicketStatusOpen, TicketStatusInProgress},
}

// CanTransition reports whether the table permits from -> to.
func CanTransition(from, to TicketStatus) bool {
	for _, candidate := range statusTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the permitted targets from a given state.
func AllowedTransitions(from TicketStatus) []TicketStatus {
	targets := statusTransitions[from]
	out := make([]TicketStatus, len(targets))
	copy(out, targets)
	return out
}
