package domain

import "time"

// Project is a named grouping of tickets with a unique short key. Purely
// administrative, no lifecycle of its own.
type Project struct {
	ID          string
	Name        string
	Description string
	Key         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
