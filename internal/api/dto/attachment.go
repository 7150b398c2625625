package dto

import (
	"time"

	"github.com/ticketflow/backend/internal/domain"
)

// AttachmentRequest records metadata for a blob already placed in external
// storage.
type AttachmentRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	FileKey     string `json:"file_key"`
}

// AttachmentResponse is the public shape of attachment metadata.
type AttachmentResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	FileKey     string    `json:"file_key"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromAttachment converts domain attachment metadata.
func FromAttachment(attachment *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          attachment.ID,
		TicketID:    attachment.TicketID,
		Filename:    attachment.Filename,
		ContentType: attachment.ContentType,
		Size:        attachment.Size,
		FileKey:     attachment.FileKey,
		UploadedBy:  attachment.UploadedBy,
		CreatedAt:   attachment.CreatedAt,
	}
}

// FromAttachments converts a slice of attachment metadata.
func FromAttachments(attachments []domain.Attachment) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		out = append(out, FromAttachment(&attachments[i]))
	}
	return out
}
