package domain

import "time"

// History action labels. Field updates use "updated_<field>".
const (
	HistoryActionCreated = "created"
)

// TicketHistory is an immutable audit trail entry. Entries are never updated
// or deleted except by cascade when the owning ticket is removed. Seq breaks
// ordering ties between entries sharing a timestamp.
type TicketHistory struct {
	ID        string
	TicketID  string
	UserID    string
	Action    string
	OldValue  *string
	NewValue  *string
	Seq       int64
	CreatedAt time.Time
}
