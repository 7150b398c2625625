package domain

import "time"

// Attachment stores metadata for a file attached to a ticket. The blob itself
// lives in external storage addressed by FileKey.
type Attachment struct {
	ID          string
	TicketID    string
	Filename    string
	ContentType string
	Size        int64
	FileKey     string
	UploadedBy  string
	CreatedAt   time.Time
}
