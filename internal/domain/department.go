package domain

import "time"

// Department represents an organizational unit tickets can be routed to.
type Department struct {
	ID          string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
